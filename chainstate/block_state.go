// Package chainstate keeps the verified tip of the block hash chain between
// importer runs, plus per-block summaries handed to sinks.
//
// It contains two levels of data:
//  1. BlockState: what the next block must link to (number, hash, end time).
//  2. BlockSummary: a compact fingerprint of an imported block and its records.
package chainstate

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// BlockState is the chain position after a verified block.
type BlockState struct {
	Number       idx.Block
	Hash         merkle.Hash
	PreviousHash merkle.Hash
	ConsensusEnd inter.Timestamp
	// Records is the number of transaction records emitted for the block.
	Records uint32
}

// Next reports whether number directly follows the state.
func (bs BlockState) Next(number idx.Block) bool {
	return number == bs.Number+1
}

// Fingerprint calculates the SHA256 hash of the RLP-encoded state.
func (bs BlockState) Fingerprint() hash.Hash {
	hasher := sha256.New()
	if err := rlp.Encode(hasher, &bs); err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

// MarshalBinary encodes the state with RLP.
func (bs BlockState) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(&bs)
}

// UnmarshalBinary decodes an RLP-encoded state.
func (bs *BlockState) UnmarshalBinary(raw []byte) error {
	return rlp.DecodeBytes(raw, bs)
}
