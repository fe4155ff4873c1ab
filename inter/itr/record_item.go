package itr

import (
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// RecordItem is what listeners receive: the record plus the transaction it
// was built from.
type RecordItem struct {
	BlockNumber            uint64
	Index                  int
	Parent                 int
	TransactionType        inter.TransactionType
	SignedTransactionBytes []byte
	Body                   *inter.TransactionBody
	Record                 *TransactionRecord
	Sidecars               []inter.SidecarRecord
}

// NewRecordItem wraps an empty record.
func NewRecordItem(blockNumber uint64, index int, txType inter.TransactionType) *RecordItem {
	return &RecordItem{
		BlockNumber:     blockNumber,
		Index:           index,
		Parent:          -1,
		TransactionType: txType,
		Record:          &TransactionRecord{},
	}
}

// ConsensusTimestamp is a shortcut for the record's timestamp.
func (it *RecordItem) ConsensusTimestamp() inter.Timestamp {
	return it.Record.ConsensusTimestamp
}

// Successful reports whether the receipt status is a success.
func (it *RecordItem) Successful() bool {
	return it.Record.Receipt.Status.IsSuccessful()
}

// MarshalCSER writes everything but Body, which SignedTransactionBytes
// already carries.
func (it *RecordItem) MarshalCSER(w *cser.Writer) error {
	w.U64(it.BlockNumber)
	w.U32(uint32(it.Index))
	w.I32(int32(it.Parent))
	w.U8(uint8(it.TransactionType))
	w.SliceBytes(it.SignedTransactionBytes)
	if err := it.Record.MarshalCSER(w); err != nil {
		return err
	}
	inter.WriteSidecars(w, it.Sidecars)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (it *RecordItem) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(it.MarshalCSER)
}
