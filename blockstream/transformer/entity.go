package transformer

import (
	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type fileCreateTransformer struct{}

func (fileCreateTransformer) Type() inter.TransactionType { return inter.TxFileCreate }

func (fileCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	// the first file change at this timestamp may carry no entity; any other
	// attached change with one still names the file
	if fact, ok := tx.Context.Lookup(blockstream.CategoryFile, blockstream.Key{Timestamp: tx.ConsensusTimestamp}); ok && !fact.Entity.IsZero() {
		item.Record.Receipt.FileID = fact.Entity
		return nil
	}
	for _, c := range tx.StateChangesOf(inter.StateFiles) {
		id := c.Key.Entity
		if id.IsZero() {
			id = c.Value.Entity
		}
		if !id.IsZero() {
			item.Record.Receipt.FileID = id
			return nil
		}
	}
	return missingStateChange(tx, "created file")
}

type accountCreateTransformer struct{}

func (accountCreateTransformer) Type() inter.TransactionType { return inter.TxCryptoCreateAccount }

func (accountCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryAccount, blockstream.Key{Timestamp: tx.ConsensusTimestamp})
	if !ok {
		return missingStateChange(tx, "created account")
	}
	rec := item.Record
	rec.Receipt.AccountID = fact.Entity
	rec.EvmAddress = fact.Value.EvmAddress
	if data, _ := tx.Body.Data.(*inter.CryptoCreateAccountData); data != nil {
		rec.Alias = data.Alias
	}
	return nil
}

type nodeCreateTransformer struct{}

func (nodeCreateTransformer) Type() inter.TransactionType { return inter.TxNodeCreate }

func (nodeCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryNode, blockstream.Key{Timestamp: tx.ConsensusTimestamp})
	if !ok {
		return missingStateChange(tx, "created node")
	}
	nodeID := fact.Value.NodeID
	item.Record.Receipt.NodeID = &nodeID
	return nil
}
