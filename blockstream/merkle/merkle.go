// Package merkle computes SHA-384 Merkle roots over fixed-size leaves.
//
// Adjacent nodes of a level are hashed pairwise, left to right, as
// SHA-384(left || right). An odd trailing node is carried to the next level
// unchanged; it is never paired with itself or with a padding hash.
package merkle

import (
	"crypto/sha512"
	"encoding/hex"
)

// HashSize is the length of a SHA-384 digest.
const HashSize = sha512.Size384

// Hash is a SHA-384 digest.
type Hash [HashSize]byte

// EmptyHash is the root of a tree without leaves: SHA-384 of no input.
var EmptyHash = Hash(sha512.Sum384(nil))

// Hex returns the lowercase hex form.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a slice.
func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

// BytesToHash converts b, which must be HashSize bytes long.
func BytesToHash(b []byte) (h Hash, ok bool) {
	if len(b) != HashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// Leaf hashes arbitrary data into a leaf.
func Leaf(data []byte) Hash {
	return sha512.Sum384(data)
}

// Pair hashes two nodes into their parent.
func Pair(left, right Hash) Hash {
	var buf [2 * HashSize]byte
	copy(buf[:HashSize], left[:])
	copy(buf[HashSize:], right[:])
	return sha512.Sum384(buf[:])
}

type node struct {
	hash   Hash
	height int
}

// Hasher builds one tree incrementally. Only complete subtrees are kept, so
// memory is logarithmic in the number of leaves.
type Hasher struct {
	stack []node
	count int
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{}
}

// AddLeaf appends a leaf.
func (t *Hasher) AddLeaf(leaf Hash) {
	t.stack = append(t.stack, node{hash: leaf})
	t.count++
	for n := len(t.stack); n >= 2 && t.stack[n-1].height == t.stack[n-2].height; n = len(t.stack) {
		left, right := t.stack[n-2], t.stack[n-1]
		t.stack = append(t.stack[:n-2], node{hash: Pair(left.hash, right.hash), height: left.height + 1})
	}
}

// Len returns the number of leaves added.
func (t *Hasher) Len() int {
	return t.count
}

// Digest returns the root. The remaining subtrees have strictly decreasing
// heights; folding them from the right is the same as carrying odd nodes up.
func (t *Hasher) Digest() Hash {
	if len(t.stack) == 0 {
		return EmptyHash
	}
	acc := t.stack[len(t.stack)-1].hash
	for i := len(t.stack) - 2; i >= 0; i-- {
		acc = Pair(t.stack[i].hash, acc)
	}
	return acc
}

// Root is a shortcut building a tree over leaves.
func Root(leaves ...Hash) Hash {
	t := New()
	for _, l := range leaves {
		t.AddLeaf(l)
	}
	return t.Digest()
}
