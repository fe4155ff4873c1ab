// Package cser is a compact canonical serialization. Integers are split: the
// number of significant bytes goes to a bit stream and the bytes themselves to
// a byte stream. Decoding rejects anything not packed minimally, so every value
// has exactly one encoding and encoded bytes are safe to hash.
package cser

import (
	"errors"
	"math/big"

	"github.com/rony4d/go-ledger-mirror/utils/bits"
	"github.com/rony4d/go-ledger-mirror/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc is the default limit for length-prefixed byte slices.
const MaxAlloc = 100 * 1024

// Writer writes to the bit stream and the byte stream of a cser blob.
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader reads from the bit stream and the byte stream of a cser blob.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	bbits := &bits.Array{Bytes: make([]byte, 0, 32)}
	bbytes := make([]byte, 0, 200)
	return &Writer{
		BitsW:  bits.NewWriter(bbits),
		BytesW: fast.NewWriter(bbytes),
	}
}

// writeUint64Compact is a base-128 varint where a set high bit marks the last
// byte. Only used for the blob suffix.
func writeUint64Compact(bytesW *fast.Writer, v uint64) {
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			bytesW.WriteByte(chunk | 0x80)
			return
		}
		bytesW.WriteByte(chunk)
	}
}

func readUint64Compact(bytesR *fast.Reader) uint64 {
	v := uint64(0)
	for i := 0; ; i++ {
		chunk := bytesR.ReadByte()
		word := uint64(chunk & 0x7f)
		v |= word << uint(i*7)
		if chunk&0x80 != 0 {
			if i > 0 && word == 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

func writeUint64BitCompact(bytesW *fast.Writer, v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		bytesW.WriteByte(byte(v))
		size++
		v >>= 8
	}
	return size
}

func readUint64BitCompact(bytesR *fast.Reader, size int) uint64 {
	var v uint64
	buf := bytesR.Read(size)
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (r *Reader) readU64Bits(minSize int, bitsForSize int) uint64 {
	size := int(r.BitsR.Read(bitsForSize)) + minSize
	return readUint64BitCompact(r.BytesR, size)
}

func (w *Writer) writeU64Bits(minSize int, bitsForSize int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(bitsForSize, uint(size-minSize))
}

// U8 writes one byte to the byte stream.
func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

// U16 writes 1-2 bytes with a 1-bit size prefix.
func (w *Writer) U16(v uint16) {
	w.writeU64Bits(1, 1, uint64(v))
}

// U16 reads a value written by Writer.U16.
func (r *Reader) U16() uint16 {
	return uint16(r.readU64Bits(1, 1))
}

// U32 writes 1-4 bytes with a 2-bit size prefix.
func (w *Writer) U32(v uint32) {
	w.writeU64Bits(1, 2, uint64(v))
}

// U32 reads a value written by Writer.U32.
func (r *Reader) U32() uint32 {
	return uint32(r.readU64Bits(1, 2))
}

// U64 writes 1-8 bytes with a 3-bit size prefix.
func (w *Writer) U64(v uint64) {
	w.writeU64Bits(1, 3, v)
}

// U64 reads a value written by Writer.U64.
func (r *Reader) U64() uint64 {
	return r.readU64Bits(1, 3)
}

// I64 writes a sign bit followed by the magnitude.
func (w *Writer) I64(v int64) {
	w.Bool(v < 0)
	if v < 0 {
		w.U64(uint64(-v))
	} else {
		w.U64(uint64(v))
	}
}

// I64 reads a value written by Writer.I64. Negative zero is rejected.
func (r *Reader) I64() int64 {
	neg := r.Bool()
	abs := r.U64()
	if neg && abs == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	if neg {
		return -int64(abs)
	}
	return int64(abs)
}

// I32 writes a sign bit followed by the magnitude.
func (w *Writer) I32(v int32) {
	w.I64(int64(v))
}

// I32 reads a value written by Writer.I32.
func (r *Reader) I32() int32 {
	v := r.I64()
	if v > 1<<31-1 || v < -1<<31 {
		panic(ErrMalformedEncoding)
	}
	return int32(v)
}

// U56 writes 0-7 bytes with a 3-bit size prefix. Used for lengths.
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic("cser: value too big for U56")
	}
	w.writeU64Bits(0, 3, v)
}

// U56 reads a value written by Writer.U56.
func (r *Reader) U56() uint64 {
	return r.readU64Bits(0, 3)
}

// Bool writes a single bit.
func (w *Writer) Bool(v bool) {
	u := uint(0)
	if v {
		u = 1
	}
	w.BitsW.Write(1, u)
}

// Bool reads a single bit.
func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

// FixedBytes writes v without a length prefix.
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

// FixedBytes fills v from the byte stream.
func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.BytesR.Read(len(v)))
}

// SliceBytes writes a U56 length followed by v.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed slice of at most maxLen bytes. The
// result is a copy.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	if size > uint64(r.BytesR.Remaining()) {
		panic(ErrMalformedEncoding)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

// OptionalBytes writes a presence bit and, when v is non-nil, the slice.
func (w *Writer) OptionalBytes(v []byte) {
	w.Bool(v != nil)
	if v != nil {
		w.SliceBytes(v)
	}
}

// OptionalBytes reads a value written by Writer.OptionalBytes.
func (r *Reader) OptionalBytes(maxLen int) []byte {
	if !r.Bool() {
		return nil
	}
	return r.SliceBytes(maxLen)
}

// String writes a length-prefixed UTF-8 string.
func (w *Writer) String(v string) {
	w.SliceBytes([]byte(v))
}

// String reads a string of at most maxLen bytes.
func (r *Reader) String(maxLen int) string {
	return string(r.SliceBytes(maxLen))
}

// Len writes a collection length.
func (w *Writer) Len(n int) {
	w.U32(uint32(n))
}

// Len reads a collection length and rejects values above max.
func (r *Reader) Len(max int) int {
	n := r.U32()
	if uint64(n) > uint64(max) {
		panic(ErrTooLargeAlloc)
	}
	return int(n)
}

// PaddedBytes left-pads b with zeros to n bytes.
func PaddedBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	padding := make([]byte, n-len(b))
	return append(padding, b...)
}

// BigInt writes the magnitude of v. The sign is not encoded.
func (w *Writer) BigInt(v *big.Int) {
	var b []byte
	if v != nil && v.Sign() != 0 {
		b = v.Bytes()
	}
	w.SliceBytes(b)
}

// BigInt reads a value written by Writer.BigInt.
func (r *Reader) BigInt() *big.Int {
	buf := r.SliceBytes(512)
	if len(buf) == 0 {
		return new(big.Int)
	}
	if buf[0] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return new(big.Int).SetBytes(buf)
}
