package inter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// ErrInvalidEntityID is returned by ParseEntityID for malformed input.
var ErrInvalidEntityID = errors.New("invalid entity id: expected shard.realm.num")

// EntityID identifies any ledger entity: accounts, contracts, files, topics,
// tokens and schedules share one id space.
type EntityID struct {
	Shard int64
	Realm int64
	Num   int64
}

// NewEntityID is a shortcut for shard 0, realm 0 entities.
func NewEntityID(num int64) EntityID {
	return EntityID{Num: num}
}

// ParseEntityID parses the "shard.realm.num" form.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return EntityID{}, ErrInvalidEntityID
	}
	var vals [3]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return EntityID{}, ErrInvalidEntityID
		}
		vals[i] = v
	}
	return EntityID{Shard: vals[0], Realm: vals[1], Num: vals[2]}, nil
}

// IsZero reports whether the id is unset.
func (id EntityID) IsZero() bool {
	return id == EntityID{}
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// MarshalCSER writes the three components.
func (id EntityID) MarshalCSER(w *cser.Writer) {
	w.U64(uint64(id.Shard))
	w.U64(uint64(id.Realm))
	w.U64(uint64(id.Num))
}

// UnmarshalCSER reads a value written by MarshalCSER.
func (id *EntityID) UnmarshalCSER(r *cser.Reader) {
	id.Shard = int64(r.U64())
	id.Realm = int64(r.U64())
	id.Num = int64(r.U64())
}

// TransactionID identifies a transaction by its payer and valid start.
// Child transactions share the payer and valid start of the user transaction
// and are told apart by Nonce.
type TransactionID struct {
	Payer      EntityID
	ValidStart Timestamp
	Nonce      int32
	Scheduled  bool
}

func (id TransactionID) String() string {
	s, n := id.ValidStart.Unix()
	res := fmt.Sprintf("%s-%d-%09d", id.Payer, s, n)
	if id.Nonce != 0 {
		res += fmt.Sprintf("/%d", id.Nonce)
	}
	if id.Scheduled {
		res += "?scheduled"
	}
	return res
}

// MarshalCSER writes the transaction id.
func (id TransactionID) MarshalCSER(w *cser.Writer) {
	id.Payer.MarshalCSER(w)
	w.U64(uint64(id.ValidStart))
	w.I32(id.Nonce)
	w.Bool(id.Scheduled)
}

// UnmarshalCSER reads a value written by MarshalCSER.
func (id *TransactionID) UnmarshalCSER(r *cser.Reader) {
	id.Payer.UnmarshalCSER(r)
	id.ValidStart = Timestamp(r.U64())
	id.Nonce = r.I32()
	id.Scheduled = r.Bool()
}
