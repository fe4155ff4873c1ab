package blockstream

import (
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// BlockFileBuilder assembles block stream files item by item. It is used by
// tests and by tooling producing sample files. The first error sticks and is
// returned by Build.
type BlockFileBuilder struct {
	items []*inter.BlockItem
	err   error
}

// NewBlockFileBuilder starts a block with its header.
func NewBlockFileBuilder(number uint64, blockTime inter.Timestamp) *BlockFileBuilder {
	b := &BlockFileBuilder{}
	return b.Item(&inter.BlockItem{Kind: inter.KindBlockHeader, Header: &inter.BlockHeader{
		HapiVersion:    inter.SemanticVersion{Minor: 62},
		Number:         number,
		BlockTimestamp: blockTime,
		HashAlgorithm:  inter.HashAlgorithmSHA384,
	}})
}

// Item appends an item, encoding it unless it already has Raw bytes.
func (b *BlockFileBuilder) Item(item *inter.BlockItem) *BlockFileBuilder {
	if b.err != nil {
		return b
	}
	if item.Raw == nil {
		if _, err := item.MarshalBinary(); err != nil {
			b.err = err
			return b
		}
	}
	b.items = append(b.items, item)
	return b
}

// Round appends a round header.
func (b *BlockFileBuilder) Round(round uint64) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindRoundHeader, RoundHeader: &inter.RoundHeader{Round: round}})
}

// Event appends an event header.
func (b *BlockFileBuilder) Event(creator uint64) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindEventHeader, EventHeader: &inter.EventHeader{Creator: creator}})
}

// SignedTransaction appends raw signed transaction bytes.
func (b *BlockFileBuilder) SignedTransaction(signed []byte) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindSignedTransaction, SignedTransaction: signed})
}

// Result appends a transaction result.
func (b *BlockFileBuilder) Result(res *inter.TransactionResult) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindTransactionResult, Result: res})
}

// Output appends a transaction output.
func (b *BlockFileBuilder) Output(out *inter.TransactionOutput) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindTransactionOutput, Output: out})
}

// StateChanges appends a state changes batch.
func (b *BlockFileBuilder) StateChanges(ts inter.Timestamp, changes ...inter.StateChange) *BlockFileBuilder {
	return b.Item(&inter.BlockItem{Kind: inter.KindStateChanges, StateChanges: &inter.StateChanges{
		ConsensusTimestamp: ts,
		Changes:            changes,
	}})
}

// Transaction encodes body and appends it with its result and outputs. It
// returns the builder so calls chain; use SignedTransaction for exact bytes.
func (b *BlockFileBuilder) Transaction(body *inter.TransactionBody, res *inter.TransactionResult, outputs ...*inter.TransactionOutput) *BlockFileBuilder {
	if b.err != nil {
		return b
	}
	signed, err := inter.EncodeTransaction(body)
	if err != nil {
		b.err = err
		return b
	}
	b.SignedTransaction(signed).Result(res)
	for _, out := range outputs {
		b.Output(out)
	}
	return b
}

// Proof appends the block proof.
func (b *BlockFileBuilder) Proof(previous, startOfState merkle.Hash) *BlockFileBuilder {
	var number uint64
	if len(b.items) > 0 && b.items[0].Header != nil {
		number = b.items[0].Header.Number
	}
	return b.Item(&inter.BlockItem{Kind: inter.KindBlockProof, Proof: &inter.BlockProof{
		Block:                     number,
		PreviousBlockRootHash:     previous.Bytes(),
		StartOfBlockStateRootHash: startOfState.Bytes(),
	}})
}

// Items returns the items appended so far.
func (b *BlockFileBuilder) Items() ([]*inter.BlockItem, error) {
	return b.items, b.err
}

// Build encodes the block stream file.
func (b *BlockFileBuilder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return inter.EncodeBlockItems(b.items)
}
