package blockstream

import (
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// NoIndex marks an absent link between transactions.
const NoIndex = -1

// BlockFile is one decoded and verified block.
type BlockFile struct {
	Name   string
	Header *inter.BlockHeader
	Proof  *inter.BlockProof
	Size   int
	Items  int

	ConsensusStart inter.Timestamp
	ConsensusEnd   inter.Timestamp
	RoundStart     uint64
	RoundEnd       uint64
	NodeID         uint64

	DigestAlgorithm       inter.HashAlgorithm
	PreviousHash          merkle.Hash
	StartOfBlockStateHash merkle.Hash
	Hash                  merkle.Hash

	// Transactions is the arena every BlockTransaction link points into.
	Transactions []*BlockTransaction
	// StandaloneStateChanges are batches no transaction claimed.
	StandaloneStateChanges []*inter.StateChanges
	RecordFiles            []*inter.RecordFile
	StateChangeContext     *StateChangeContext
}

// Number returns the block number from the header.
func (f *BlockFile) Number() uint64 {
	if f.Header == nil {
		return 0
	}
	return f.Header.Number
}

// Transaction returns the transaction at index i, or nil for NoIndex.
func (f *BlockFile) Transaction(i int) *BlockTransaction {
	if f == nil || i < 0 || i >= len(f.Transactions) {
		return nil
	}
	return f.Transactions[i]
}

// BlockTransaction groups the items of one ledger transaction.
type BlockTransaction struct {
	Index              int
	ConsensusTimestamp inter.Timestamp

	SignedTransactionBytes []byte
	SignedTransaction      *inter.SignedTransaction
	Body                   *inter.TransactionBody
	Result                 *inter.TransactionResult
	Outputs                []*inter.TransactionOutput
	StateChanges           []*inter.StateChanges
	Context                *StateChangeContext

	// Links are indexes into the owning BlockFile.Transactions.
	Previous    int
	Parent      int
	NextInBatch int
	// BatchInner is set on the inner transactions of an atomic batch.
	BatchInner bool

	file *BlockFile
}

// Type returns the body's transaction type.
func (t *BlockTransaction) Type() inter.TransactionType {
	return t.Body.Type()
}

// Status returns the result status.
func (t *BlockTransaction) Status() inter.ResponseCode {
	return t.Result.Status
}

// IsSuccessful reports whether the result status is a success.
func (t *BlockTransaction) IsSuccessful() bool {
	return t.Result.Status.IsSuccessful()
}

// PreviousTransaction returns the transaction finalized just before this one.
func (t *BlockTransaction) PreviousTransaction() *BlockTransaction {
	return t.file.Transaction(t.Previous)
}

// ParentTransaction returns the parent, nil for top-level transactions.
func (t *BlockTransaction) ParentTransaction() *BlockTransaction {
	return t.file.Transaction(t.Parent)
}

// NextInBatchTransaction returns the next inner transaction of the batch.
func (t *BlockTransaction) NextInBatchTransaction() *BlockTransaction {
	return t.file.Transaction(t.NextInBatch)
}

// Output returns the first output of the given kind.
func (t *BlockTransaction) Output(kind inter.OutputKind) *inter.TransactionOutput {
	for _, o := range t.Outputs {
		if o.Kind == kind {
			return o
		}
	}
	return nil
}

// StateChangesOf returns the attached changes to the given state, in order.
func (t *BlockTransaction) StateChangesOf(id inter.StateID) []inter.StateChange {
	var res []inter.StateChange
	for _, batch := range t.StateChanges {
		for _, c := range batch.Changes {
			if c.StateID == id {
				res = append(res, c)
			}
		}
	}
	return res
}
