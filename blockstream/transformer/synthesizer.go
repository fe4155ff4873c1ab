// Package transformer turns sequenced block transactions into canonical
// transaction records.
//
// A default transformer fills the fields every transaction has, then the
// transformer registered for the transaction type adds its specific fields.
// Transformers only write to the record they are given and read the block's
// frozen StateChangeContext, so running one twice yields the same record.
package transformer

import (
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

// Transformer adds type specific fields to a record.
type Transformer interface {
	Type() inter.TransactionType
	Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error
}

// Synthesizer dispatches transactions to their transformers.
type Synthesizer struct {
	defaults     Transformer
	transformers map[inter.TransactionType]Transformer
	log          logrus.FieldLogger
}

// NewSynthesizer returns a Synthesizer with every built-in transformer
// registered. Ethereum transactions must be signed for chain; a nil chain
// accepts any. A nil logger means the standard logrus logger.
func NewSynthesizer(log logrus.FieldLogger, chain *ethparams.ChainConfig) *Synthesizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Synthesizer{
		defaults:     defaultTransformer{},
		transformers: make(map[inter.TransactionType]Transformer),
		log:          log,
	}
	for _, t := range []Transformer{
		contractCallTransformer{},
		contractCreateTransformer{},
		ethereumTransformer{chain: chain, log: log},
		topicCreateTransformer{},
		submitMessageTransformer{},
		fileCreateTransformer{},
		accountCreateTransformer{},
		nodeCreateTransformer{},
		tokenCreateTransformer{},
		tokenMintTransformer{log: log},
		supplyTransformer{txType: inter.TxTokenBurn},
		supplyTransformer{txType: inter.TxTokenWipe},
		tokenAirdropTransformer{},
		scheduleCreateTransformer{},
		scheduleOutputTransformer{txType: inter.TxScheduleSign, kind: inter.OutputSignSchedule},
		scheduleOutputTransformer{txType: inter.TxScheduleDelete, kind: inter.OutputDeleteSchedule},
		utilPrngTransformer{},
	} {
		s.Register(t)
	}
	return s
}

// Register sets the transformer for its type, replacing any previous one.
func (s *Synthesizer) Register(t Transformer) {
	s.transformers[t.Type()] = t
}

// Transformer returns the transformer registered for t.
func (s *Synthesizer) Transformer(t inter.TransactionType) (Transformer, bool) {
	tr, ok := s.transformers[t]
	return tr, ok
}

// Transform builds the record of one transaction.
func (s *Synthesizer) Transform(blockNumber uint64, tx *blockstream.BlockTransaction) (*itr.RecordItem, error) {
	item := itr.NewRecordItem(blockNumber, tx.Index, tx.Type())
	if err := s.defaults.Transform(tx, item); err != nil {
		return nil, err
	}
	if t, ok := s.transformers[tx.Type()]; ok {
		if err := t.Transform(tx, item); err != nil {
			return nil, errors.WithMessagef(err, "%s at %s", tx.Type(), tx.ConsensusTimestamp)
		}
	}
	return item, nil
}

// TransformFile builds the records of a whole file, in file order. On error
// no record is returned.
func (s *Synthesizer) TransformFile(file *blockstream.BlockFile) ([]*itr.RecordItem, error) {
	items := make([]*itr.RecordItem, 0, len(file.Transactions))
	for _, tx := range file.Transactions {
		item, err := s.Transform(file.Number(), tx)
		if err != nil {
			return nil, &blockstream.InvalidStreamFileError{Filename: file.Name, Err: err}
		}
		items = append(items, item)
	}
	return items, nil
}

// missingStateChange builds the error for a fact a successful transaction
// must have produced.
func missingStateChange(tx *blockstream.BlockTransaction, what string) error {
	return errors.Wrapf(blockstream.ErrMissingStateChange, "%s for transaction at %s", what, tx.ConsensusTimestamp)
}
