package transformer

import (
	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type utilPrngTransformer struct{}

func (utilPrngTransformer) Type() inter.TransactionType { return inter.TxUtilPrng }

func (utilPrngTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	out := tx.Output(inter.OutputUtilPrng)
	if out == nil {
		return nil
	}
	data, _ := tx.Body.Data.(*inter.UtilPrngData)
	if data != nil && data.Range > 0 {
		n := out.PrngNumber
		item.Record.PrngNumber = &n
		return nil
	}
	item.Record.PrngBytes = out.PrngBytes
	return nil
}
