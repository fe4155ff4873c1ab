package cser

import (
	"github.com/rony4d/go-ledger-mirror/utils/bits"
	"github.com/rony4d/go-ledger-mirror/utils/fast"
)

// Wire layout of a cser blob:
//
//	[ body bytes ][ bit stream bytes ][ reversed compact varint: len(bit stream) ]
//
// The length suffix is stored reversed so a reader can decode it from the end.

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and packs the two
// streams into one byte slice.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return binaryFromCSER(w.BitsW.Array, w.BytesW.Bytes())
}

func binaryFromCSER(bbits *bits.Array, bbytes []byte) (raw []byte, err error) {
	body := fast.NewWriter(bbytes)
	body.Write(bbits.Bytes)

	sizeWriter := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(sizeWriter, uint64(len(bbits.Bytes)))
	body.Write(reversed(sizeWriter.Bytes()))

	return body.Bytes(), nil
}

func binaryToCSER(raw []byte) (bbits *bits.Array, bbytes []byte, err error) {
	bitsSizeBuf := reversed(tail(raw, 9))
	bitsSizeReader := fast.NewReader(bitsSizeBuf)
	bitsSize := readUint64Compact(bitsSizeReader)

	raw = raw[:len(raw)-bitsSizeReader.Position()]
	if uint64(len(raw)) < bitsSize {
		return nil, nil, ErrMalformedEncoding
	}

	split := uint64(len(raw)) - bitsSize
	return &bits.Array{Bytes: raw[split:]}, raw[:split:split], nil
}

// UnmarshalBinaryAdapter splits raw into its streams and runs unmarshalCser.
// Reads past the end and non-canonical values surface as errors rather than
// panics, and the whole input must be consumed.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	bbits, bbytes, err := binaryToCSER(raw)
	if err != nil {
		return err
	}

	reader := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}
	if err = unmarshalCser(reader); err != nil {
		return err
	}

	if reader.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if reader.BitsR.Read(reader.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !reader.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func recoveredError(r interface{}) error {
	if e, ok := r.(error); ok {
		switch e {
		case ErrNonCanonicalEncoding, ErrTooLargeAlloc, ErrMalformedEncoding:
			return e
		}
	}
	return ErrMalformedEncoding
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
