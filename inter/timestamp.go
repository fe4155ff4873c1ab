package inter

import (
	"fmt"
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is a consensus timestamp in nanoseconds since the Unix epoch.
// The zero value means "not set": a transaction without a parent carries a
// zero ParentConsensusTimestamp.
type Timestamp uint64

// FromUnix builds a Timestamp from seconds and nanoseconds.
func FromUnix(seconds int64, nanos int32) Timestamp {
	return Timestamp(uint64(seconds)*uint64(time.Second) + uint64(nanos))
}

// FromTime converts a time.Time.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the Timestamp to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// Unix returns the seconds and nanoseconds parts.
func (t Timestamp) Unix() (seconds int64, nanos int32) {
	return int64(uint64(t) / uint64(time.Second)), int32(uint64(t) % uint64(time.Second))
}

// IsZero reports whether the Timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

// Bytes returns the big-endian encoding, suitable as a sorted database key.
func (t Timestamp) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(t))
}

// String formats the Timestamp as seconds.nanoseconds.
func (t Timestamp) String() string {
	s, n := t.Unix()
	return fmt.Sprintf("%d.%09d", s, n)
}

// MaxTimestamp returns the greater of two timestamps.
func MaxTimestamp(x, y Timestamp) Timestamp {
	if x > y {
		return x
	}
	return y
}

// MinTimestamp returns the lesser of two timestamps.
func MinTimestamp(x, y Timestamp) Timestamp {
	if x < y {
		return x
	}
	return y
}
