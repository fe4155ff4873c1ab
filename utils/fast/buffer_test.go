package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferRoundTrip(t *testing.T) {
	const N = 100
	extra := []byte{0, 0, 0xFF, 9, 0}

	w := NewWriter(make([]byte, 0, N/2))
	for i := byte(0); i < N; i++ {
		w.WriteByte(i)
	}
	w.Write(extra)
	require.Equal(t, N+len(extra), w.Len())

	r := NewReader(w.Bytes())
	require.False(t, r.Empty())
	require.Equal(t, N+len(extra), r.Remaining())
	for exp := byte(0); exp < N; exp++ {
		require.Equal(t, exp, r.ReadByte())
	}
	require.Equal(t, N, r.Position())
	require.Equal(t, extra, r.Read(len(extra)))
	require.True(t, r.Empty())
	require.Equal(t, 0, r.Remaining())
}

func TestReaderBoundaries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r := NewReader(nil)
		require.True(t, r.Empty())
		require.Panics(t, func() { r.ReadByte() })
	})

	t.Run("overread", func(t *testing.T) {
		r := NewReader([]byte{1, 2, 3})
		require.Equal(t, []byte{1, 2}, r.Read(2))
		require.Panics(t, func() { r.Read(2) })
	})

	t.Run("zero length read", func(t *testing.T) {
		r := NewReader([]byte{1})
		require.Empty(t, r.Read(0))
		require.Equal(t, 0, r.Position())
	})

	t.Run("shared memory", func(t *testing.T) {
		buf := []byte{1, 2, 3}
		r := NewReader(buf)
		got := r.Read(1)
		got[0] = 9
		require.Equal(t, byte(9), buf[0])
	})
}
