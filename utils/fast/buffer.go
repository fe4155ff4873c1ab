// Package fast provides append-only byte writers and cursor readers used by the
// cser codec. Readers do no bounds checking: reading past the end panics, and
// callers (cser.UnmarshalBinaryAdapter) convert that panic into a decode error.
package fast

// Reader walks a byte slice with a cursor.
type Reader struct {
	buf    []byte
	offset int
}

// Writer appends to a byte slice.
type Writer struct {
	buf []byte
}

// NewReader creates a Reader over bb.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// NewWriter creates a Writer appending to bb, usually make([]byte, 0, capacity).
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

// WriteByte appends a single byte.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends v.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Len returns the number of bytes written so far.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Bytes returns the accumulated content of the Writer.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Read consumes the next n bytes. The result shares memory with the
// underlying buffer.
func (b *Reader) Read(n int) []byte {
	if n > len(b.buf)-b.offset {
		panic("fast: read out of range")
	}
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

// ReadByte consumes a single byte.
func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Position returns the number of consumed bytes.
func (b *Reader) Position() int {
	return b.offset
}

// Remaining returns the number of bytes not consumed yet.
func (b *Reader) Remaining() int {
	return len(b.buf) - b.offset
}

// Bytes returns the entire underlying buffer.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Empty reports whether every byte has been consumed.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}
