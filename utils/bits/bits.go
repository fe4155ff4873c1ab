// Package bits implements an LSB-first bit stream used by the cser codec for
// flags and integer length prefixes.
package bits

type (
	// Array is the backing storage shared by a Writer and Reader pair.
	Array struct {
		Bytes []byte
	}

	// Writer appends bit groups to an Array.
	Writer struct {
		*Array
		bitOffset int // next free bit in the last byte, 0 means a new byte is needed
	}

	// Reader consumes bit groups from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter creates a Writer appending to arr.
func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

// NewReader creates a Reader consuming arr from the start.
func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

// Write appends the lowest n bits of v.
func (a *Writer) Write(n int, v uint) {
	for n > 0 {
		if a.bitOffset == 0 {
			a.Bytes = append(a.Bytes, 0)
		}
		free := 8 - a.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		a.Bytes[len(a.Bytes)-1] |= byte((v & lowMask(chunk)) << a.bitOffset)
		a.bitOffset = (a.bitOffset + chunk) % 8
		v >>= uint(chunk)
		n -= chunk
	}
}

// Read consumes n bits and returns them as an integer. It panics when the
// stream is exhausted.
func (a *Reader) Read(n int) (v uint) {
	shift := 0
	for n > 0 {
		free := 8 - a.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		word := (uint(a.Bytes[a.byteOffset]) >> a.bitOffset) & lowMask(chunk)
		v |= word << uint(shift)
		a.bitOffset += chunk
		if a.bitOffset == 8 {
			a.bitOffset = 0
			a.byteOffset++
		}
		shift += chunk
		n -= chunk
	}
	return v
}

// View returns the next n bits without advancing the reader.
func (a *Reader) View(n int) uint {
	cp := *a
	return cp.Read(n)
}

// NonReadBytes returns the number of bytes not fully consumed.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits returns the number of bits not consumed.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}

func lowMask(n int) uint {
	return (uint(1) << uint(n)) - 1
}
