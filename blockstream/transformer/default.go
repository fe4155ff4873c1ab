package transformer

import (
	"crypto/sha512"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

// defaultTransformer fills the fields shared by every transaction type.
type defaultTransformer struct{}

func (defaultTransformer) Type() inter.TransactionType { return inter.TxUnknown }

func (defaultTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	body, res := tx.Body, tx.Result
	rec := item.Record

	item.Parent = tx.Parent
	item.SignedTransactionBytes = tx.SignedTransactionBytes
	item.Body = body
	item.Sidecars = nil
	for _, out := range tx.Outputs {
		item.Sidecars = append(item.Sidecars, out.Sidecars...)
	}

	hash := sha512.Sum384(tx.SignedTransactionBytes)
	rec.TransactionHash = hash[:]
	rec.ConsensusTimestamp = tx.ConsensusTimestamp
	rec.TransactionID = body.TransactionID
	rec.Memo = body.Memo

	rec.Receipt.Status = res.Status
	rec.TransactionFee = res.TransactionFeeCharged
	rec.TransferList = res.TransferList
	rec.TokenTransferLists = res.TokenTransferLists
	rec.AssessedCustomFees = res.AssessedCustomFees
	rec.AutomaticTokenAssociations = res.AutomaticTokenAssociations
	rec.PaidStakingRewards = res.PaidStakingRewards
	rec.ParentConsensusTimestamp = res.ParentConsensusTimestamp
	rec.ScheduleRef = res.ScheduleRef
	return nil
}
