package transformer

import (
	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type topicCreateTransformer struct{}

func (topicCreateTransformer) Type() inter.TransactionType { return inter.TxConsensusCreateTopic }

func (topicCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryTopic, blockstream.Key{Timestamp: tx.ConsensusTimestamp})
	if !ok {
		return missingStateChange(tx, "created topic")
	}
	item.Record.Receipt.TopicID = fact.Entity
	return nil
}

type submitMessageTransformer struct{}

func (submitMessageTransformer) Type() inter.TransactionType { return inter.TxConsensusSubmitMessage }

func (submitMessageTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	if !tx.IsSuccessful() {
		return nil
	}
	data, _ := tx.Body.Data.(*inter.ConsensusSubmitMessageData)
	if data == nil {
		return missingStateChange(tx, "topic of message")
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryTopic, blockstream.Key{
		Timestamp: tx.ConsensusTimestamp,
		Entity:    data.Topic,
	})
	if !ok {
		return missingStateChange(tx, "running hash of topic "+data.Topic.String())
	}
	receipt := &item.Record.Receipt
	receipt.TopicRunningHash = fact.Value.RunningHash
	receipt.TopicRunningHashVersion = fact.Value.RunningHashVersion
	receipt.TopicSequenceNumber = fact.Value.SequenceNumber
	return nil
}
