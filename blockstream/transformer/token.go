package transformer

import (
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type tokenCreateTransformer struct{}

func (tokenCreateTransformer) Type() inter.TransactionType { return inter.TxTokenCreate }

func (tokenCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryToken, blockstream.Key{Timestamp: tx.ConsensusTimestamp})
	if !ok {
		return missingStateChange(tx, "created token")
	}
	supply := fact.Value.TotalSupply
	item.Record.Receipt.TokenID = fact.Entity
	item.Record.Receipt.NewTotalSupply = &supply
	return nil
}

// newTotalSupply sets the supply of token as changed by tx. A token missing
// from the context leaves the receipt without a supply.
func newTotalSupply(tx *blockstream.BlockTransaction, token inter.EntityID, receipt *itr.TransactionReceipt) {
	fact, ok := tx.Context.Lookup(blockstream.CategoryToken, blockstream.Key{
		Timestamp: tx.ConsensusTimestamp,
		Entity:    token,
	})
	if !ok {
		return
	}
	supply := fact.Value.TotalSupply
	receipt.NewTotalSupply = &supply
}

type tokenMintTransformer struct {
	log logrus.FieldLogger
}

func (tokenMintTransformer) Type() inter.TransactionType { return inter.TxTokenMint }

func (t tokenMintTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	data, _ := tx.Body.Data.(*inter.TokenMintData)
	if data == nil {
		return nil
	}
	receipt := &item.Record.Receipt
	newTotalSupply(tx, data.Token, receipt)

	if len(data.Metadata) == 0 {
		return nil
	}
	var serials []int64
	for _, c := range tx.StateChangesOf(inter.StateNfts) {
		if c.Op == inter.OpMapUpdate && c.Key.Entity == data.Token {
			serials = append(serials, c.Key.Serial)
		}
	}
	if len(serials) != len(data.Metadata) {
		t.log.WithFields(logrus.Fields{
			"timestamp": tx.ConsensusTimestamp,
			"token":     data.Token,
			"metadata":  len(data.Metadata),
			"serials":   len(serials),
		}).Warn("Minted NFT count differs from metadata count")
		recoverableErrors.WithLabelValues(tx.Type().String()).Inc()
		if len(serials) > len(data.Metadata) {
			serials = serials[:len(data.Metadata)]
		}
	}
	receipt.SerialNumbers = serials
	return nil
}

// supplyTransformer serves burn and wipe, which only report the new supply.
type supplyTransformer struct {
	txType inter.TransactionType
}

func (t supplyTransformer) Type() inter.TransactionType { return t.txType }

func (t supplyTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	var token inter.EntityID
	switch data := tx.Body.Data.(type) {
	case *inter.TokenBurnData:
		token = data.Token
	case *inter.TokenWipeData:
		token = data.Token
	default:
		return nil
	}
	newTotalSupply(tx, token, &item.Record.Receipt)
	return nil
}

type tokenAirdropTransformer struct{}

func (tokenAirdropTransformer) Type() inter.TransactionType { return inter.TxTokenAirdrop }

func (tokenAirdropTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if out := tx.Output(inter.OutputTokenAirdrop); out != nil {
		item.Record.NewPendingAirdrops = out.PendingAirdrops
	}
	return nil
}
