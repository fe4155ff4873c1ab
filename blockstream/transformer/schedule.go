package transformer

import (
	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type scheduleCreateTransformer struct{}

func (scheduleCreateTransformer) Type() inter.TransactionType { return inter.TxScheduleCreate }

func (scheduleCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	// an identical schedule still reports the existing schedule's ids
	switch tx.Status() {
	case inter.StatusSuccess, inter.StatusIdenticalScheduleAlreadyCreated:
	default:
		return nil
	}
	receipt := &item.Record.Receipt
	if out := tx.Output(inter.OutputCreateSchedule); out != nil {
		receipt.ScheduleID = out.ScheduleID
		receipt.ScheduledTransactionID = out.ScheduledTransactionID
	}
	if receipt.ScheduleID.IsZero() {
		if fact, ok := tx.Context.Lookup(blockstream.CategorySchedule, blockstream.Key{Timestamp: tx.ConsensusTimestamp}); ok {
			receipt.ScheduleID = fact.Entity
		}
	}
	if receipt.ScheduledTransactionID == nil {
		id := tx.Body.TransactionID
		id.Scheduled = true
		receipt.ScheduledTransactionID = &id
	}
	return nil
}

// scheduleOutputTransformer serves sign and delete, which only report the
// scheduled transaction id.
type scheduleOutputTransformer struct {
	txType inter.TransactionType
	kind   inter.OutputKind
}

func (t scheduleOutputTransformer) Type() inter.TransactionType { return t.txType }

func (t scheduleOutputTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	if out := tx.Output(t.kind); out != nil {
		item.Record.Receipt.ScheduledTransactionID = out.ScheduledTransactionID
	}
	return nil
}
