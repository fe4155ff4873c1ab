package blockstream

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// HashCategory is the hash tree a block item contributes to.
type HashCategory uint8

const (
	HashNone HashCategory = iota
	HashInput
	HashOutput
	HashStateChanges
)

// ItemHashCategory routes an item kind to its hash tree. Block headers and
// proofs are not hashed.
func ItemHashCategory(kind inter.ItemKind) HashCategory {
	switch kind {
	case inter.KindRoundHeader, inter.KindEventHeader, inter.KindSignedTransaction:
		return HashInput
	case inter.KindTransactionResult, inter.KindTransactionOutput, inter.KindRecordFile:
		return HashOutput
	case inter.KindStateChanges:
		return HashStateChanges
	}
	return HashNone
}

// RootHashDigest accumulates the items of one block and produces its hash.
// It is single use: after Digest it rejects any further call.
//
// The block hash is the Merkle root over, in this order:
//
//	previous block hash, start of block state hash,
//	input tree root, output tree root, state change tree root
//
// where each tree hashes SHA-384 of the raw item bytes as leaves.
type RootHashDigest struct {
	previousHash          *merkle.Hash
	startOfBlockStateHash *merkle.Hash

	inputs       *merkle.Hasher
	outputs      *merkle.Hasher
	stateChanges *merkle.Hasher

	finalized bool
}

// NewRootHashDigest returns an accumulating digest.
func NewRootHashDigest() *RootHashDigest {
	return &RootHashDigest{
		inputs:       merkle.New(),
		outputs:      merkle.New(),
		stateChanges: merkle.New(),
	}
}

func toHash(name string, b []byte) (*merkle.Hash, error) {
	h, ok := merkle.BytesToHash(b)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHashLength, "%s: got %d bytes, want %d", name, len(b), merkle.HashSize)
	}
	return &h, nil
}

// SetPreviousHash sets the hash of the preceding block.
func (d *RootHashDigest) SetPreviousHash(b []byte) error {
	if d.finalized {
		return ErrDigestFinalized
	}
	h, err := toHash("previous hash", b)
	if err != nil {
		return err
	}
	d.previousHash = h
	return nil
}

// SetStartOfBlockStateHash sets the state root hash at the start of the block.
func (d *RootHashDigest) SetStartOfBlockStateHash(b []byte) error {
	if d.finalized {
		return ErrDigestFinalized
	}
	h, err := toHash("start of block state hash", b)
	if err != nil {
		return err
	}
	d.startOfBlockStateHash = h
	return nil
}

// AddBlockItem hashes item into the tree of its category.
func (d *RootHashDigest) AddBlockItem(item *inter.BlockItem) error {
	if d.finalized {
		return ErrDigestFinalized
	}
	switch ItemHashCategory(item.Kind) {
	case HashInput:
		d.inputs.AddLeaf(merkle.Leaf(item.Raw))
	case HashOutput:
		d.outputs.AddLeaf(merkle.Leaf(item.Raw))
	case HashStateChanges:
		d.stateChanges.AddLeaf(merkle.Leaf(item.Raw))
	}
	return nil
}

// Digest computes the block hash. It can be called once.
func (d *RootHashDigest) Digest() (merkle.Hash, error) {
	if d.finalized {
		return merkle.Hash{}, ErrDigestFinalized
	}
	if d.previousHash == nil {
		return merkle.Hash{}, errors.WithMessage(ErrMissingPrecondition, "previous hash")
	}
	if d.startOfBlockStateHash == nil {
		return merkle.Hash{}, errors.WithMessage(ErrMissingPrecondition, "start of block state hash")
	}
	d.finalized = true

	return merkle.Root(
		*d.previousHash,
		*d.startOfBlockStateHash,
		d.inputs.Digest(),
		d.outputs.Digest(),
		d.stateChanges.Digest(),
	), nil
}
