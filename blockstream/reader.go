package blockstream

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// ReadOptions are the per-file inputs owned by the caller.
type ReadOptions struct {
	Filename string
	// PreviousHash overrides the previous block hash carried by the proof.
	// When both are present they must agree.
	PreviousHash []byte
	// StartOfBlockStateHash overrides the value carried by the proof.
	StartOfBlockStateHash []byte
	// ExpectedHash, when set, is compared with the computed block hash.
	ExpectedHash []byte
}

// Reader turns block stream files into BlockFiles. It keeps no state between
// files and is safe for concurrent use.
type Reader struct {
	log logrus.FieldLogger
}

// NewReader creates a Reader. A nil logger means the standard logrus logger.
func NewReader(log logrus.FieldLogger) *Reader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reader{log: log}
}

// Read decodes raw and sequences its items.
func (r *Reader) Read(raw []byte, opts ReadOptions) (*BlockFile, error) {
	items, err := inter.DecodeBlockItems(raw)
	if err != nil {
		return nil, invalidFile(opts.Filename, errors.Wrap(ErrMalformedFile, err.Error()))
	}
	file, err := r.ReadItems(items, opts)
	if err != nil {
		return nil, err
	}
	file.Size = len(raw)
	return file, nil
}

// ReadItems sequences already decoded items. Every item must carry its Raw
// bytes.
func (r *Reader) ReadItems(items []*inter.BlockItem, opts ReadOptions) (*BlockFile, error) {
	s := newSequencer(opts.Filename, len(items))
	if err := s.run(items); err != nil {
		return nil, invalidFile(opts.Filename, err)
	}
	if err := s.verify(opts); err != nil {
		return nil, err
	}

	file := s.file
	r.log.WithFields(logrus.Fields{
		"file":         opts.Filename,
		"block":        file.Number(),
		"items":        file.Items,
		"transactions": len(file.Transactions),
		"hash":         file.Hash.Hex(),
	}).Debug("Read block stream file")
	return file, nil
}

type openBatch struct {
	parent   int
	expected [][]byte
	matched  int
	last     int
}

// sequencer holds the state of reading one file.
type sequencer struct {
	file   *BlockFile
	ctx    *StateChangeContext
	digest *RootHashDigest

	// pending was opened by a signed transaction and awaits its result.
	pending *BlockTransaction
	// current is the last finalized transaction; outputs attach to it.
	current     *BlockTransaction
	byTimestamp map[inter.Timestamp]int
	batch       *openBatch

	unclaimed      map[inter.Timestamp][]*inter.StateChanges
	unclaimedOrder []inter.Timestamp
}

func newSequencer(filename string, items int) *sequencer {
	ctx := newStateChangeContext()
	return &sequencer{
		file: &BlockFile{
			Name:               filename,
			Items:              items,
			StateChangeContext: ctx,
		},
		ctx:         ctx,
		digest:      NewRootHashDigest(),
		byTimestamp: make(map[inter.Timestamp]int),
		unclaimed:   make(map[inter.Timestamp][]*inter.StateChanges),
	}
}

func (s *sequencer) run(items []*inter.BlockItem) error {
	if len(items) == 0 || items[0].Kind != inter.KindBlockHeader {
		return ErrMissingBlockHeader
	}
	last := len(items) - 1
	if last == 0 || items[last].Kind != inter.KindBlockProof {
		return ErrMissingBlockProof
	}

	for i, item := range items {
		if err := s.digest.AddBlockItem(item); err != nil {
			return err
		}
		if err := s.process(i, last, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *sequencer) process(i, last int, item *inter.BlockItem) error {
	switch item.Kind {
	case inter.KindBlockHeader:
		if i != 0 {
			return errors.Wrapf(ErrUnexpectedItem, "block header at item %d", i)
		}
		s.file.Header = item.Header
		s.file.DigestAlgorithm = item.Header.HashAlgorithm

	case inter.KindRoundHeader:
		if err := s.requireClosed(i); err != nil {
			return err
		}
		if s.file.RoundStart == 0 {
			s.file.RoundStart = item.RoundHeader.Round
		}
		s.file.RoundEnd = item.RoundHeader.Round

	case inter.KindEventHeader:
		if err := s.requireClosed(i); err != nil {
			return err
		}
		if s.file.NodeID == 0 {
			s.file.NodeID = item.EventHeader.Creator
		}

	case inter.KindSignedTransaction:
		if err := s.requireClosed(i); err != nil {
			return err
		}
		signed, body, err := inter.DecodeTransaction(item.SignedTransaction)
		if err != nil {
			return errors.Wrapf(ErrDeserializeTransaction, "item %d: %v", i, err)
		}
		s.pending = &BlockTransaction{
			SignedTransactionBytes: item.SignedTransaction,
			SignedTransaction:      signed,
			Body:                   body,
			Context:                s.ctx,
			Previous:               NoIndex,
			Parent:                 NoIndex,
			NextInBatch:            NoIndex,
			file:                   s.file,
		}

	case inter.KindTransactionResult:
		if s.pending == nil {
			return errors.Wrapf(ErrUnexpectedItem, "transaction result without transaction at item %d", i)
		}
		return s.finalize(item.Result)

	case inter.KindTransactionOutput:
		if s.pending != nil || s.current == nil {
			return errors.Wrapf(ErrUnexpectedItem, "transaction output at item %d", i)
		}
		s.current.Outputs = append(s.current.Outputs, item.Output)

	case inter.KindStateChanges:
		s.addStateChanges(item.StateChanges)

	case inter.KindRecordFile:
		s.file.RecordFiles = append(s.file.RecordFiles, item.RecordFile)

	case inter.KindBlockProof:
		if i != last {
			return errors.Wrapf(ErrUnexpectedItem, "block proof at item %d", i)
		}
		s.file.Proof = item.Proof
		return s.finish(i)

	default:
		return errors.Wrapf(ErrUnexpectedItem, "item %d of kind %s", i, item.Kind)
	}
	return nil
}

func (s *sequencer) requireClosed(i int) error {
	if s.pending != nil {
		return errors.Wrapf(ErrMissingTransactionResult, "transaction %s, before item %d",
			s.pending.Body.TransactionID, i)
	}
	return nil
}

func (s *sequencer) finalize(result *inter.TransactionResult) error {
	tx := s.pending
	ts := result.ConsensusTimestamp
	if _, dup := s.byTimestamp[ts]; dup {
		return errors.Wrapf(ErrUnexpectedItem, "duplicate consensus timestamp %s", ts)
	}

	tx.Result = result
	tx.ConsensusTimestamp = ts
	tx.Index = len(s.file.Transactions)
	if s.current != nil {
		tx.Previous = s.current.Index
	}

	if pts := result.ParentConsensusTimestamp; !pts.IsZero() {
		parent, ok := s.byTimestamp[pts]
		if !ok {
			return errors.Wrapf(ErrUnresolvedParent, "transaction at %s references parent %s", ts, pts)
		}
		tx.Parent = parent
		s.linkBatchInner(tx)
	} else {
		if err := s.closeBatch(); err != nil {
			return err
		}
		if data, ok := tx.Body.Data.(*inter.AtomicBatchData); ok {
			s.batch = &openBatch{parent: tx.Index, expected: data.Transactions, last: NoIndex}
		}
	}

	if claimed, ok := s.unclaimed[ts]; ok {
		tx.StateChanges = append(tx.StateChanges, claimed...)
		delete(s.unclaimed, ts)
	}

	s.byTimestamp[ts] = tx.Index
	s.file.Transactions = append(s.file.Transactions, tx)
	s.current = tx
	s.pending = nil
	return nil
}

// linkBatchInner chains tx into the open batch when its signed bytes are the
// next inner transaction the batch declared.
func (s *sequencer) linkBatchInner(tx *BlockTransaction) {
	b := s.batch
	if b == nil || tx.Parent != b.parent || b.matched >= len(b.expected) {
		return
	}
	if !bytes.Equal(tx.SignedTransactionBytes, b.expected[b.matched]) {
		return
	}
	if b.last != NoIndex {
		s.file.Transactions[b.last].NextInBatch = tx.Index
	}
	tx.BatchInner = true
	b.last = tx.Index
	b.matched++
}

func (s *sequencer) closeBatch() error {
	b := s.batch
	s.batch = nil
	if b == nil || b.matched == len(b.expected) {
		return nil
	}
	parent := s.file.Transactions[b.parent]
	return errors.Wrapf(ErrMissingTransactionResult, "atomic batch %s declares %d inner transactions, found %d",
		parent.Body.TransactionID, len(b.expected), b.matched)
}

func (s *sequencer) addStateChanges(sc *inter.StateChanges) {
	s.ctx.add(sc)

	ts := sc.ConsensusTimestamp
	if idx, ok := s.byTimestamp[ts]; ok {
		tx := s.file.Transactions[idx]
		tx.StateChanges = append(tx.StateChanges, sc)
		return
	}
	if _, ok := s.unclaimed[ts]; !ok {
		s.unclaimedOrder = append(s.unclaimedOrder, ts)
	}
	s.unclaimed[ts] = append(s.unclaimed[ts], sc)
}

func (s *sequencer) finish(i int) error {
	if err := s.requireClosed(i); err != nil {
		return err
	}
	if err := s.closeBatch(); err != nil {
		return err
	}
	s.ctx.freeze()

	for _, ts := range s.unclaimedOrder {
		s.file.StandaloneStateChanges = append(s.file.StandaloneStateChanges, s.unclaimed[ts]...)
	}

	f := s.file
	switch {
	case len(f.Transactions) > 0:
		f.ConsensusStart, f.ConsensusEnd = f.Transactions[0].ConsensusTimestamp, f.Transactions[0].ConsensusTimestamp
		for _, tx := range f.Transactions[1:] {
			f.ConsensusStart = inter.MinTimestamp(f.ConsensusStart, tx.ConsensusTimestamp)
			f.ConsensusEnd = inter.MaxTimestamp(f.ConsensusEnd, tx.ConsensusTimestamp)
		}
	case len(f.StandaloneStateChanges) > 0:
		f.ConsensusStart, f.ConsensusEnd = f.StandaloneStateChanges[0].ConsensusTimestamp, f.StandaloneStateChanges[0].ConsensusTimestamp
		for _, sc := range f.StandaloneStateChanges[1:] {
			f.ConsensusStart = inter.MinTimestamp(f.ConsensusStart, sc.ConsensusTimestamp)
			f.ConsensusEnd = inter.MaxTimestamp(f.ConsensusEnd, sc.ConsensusTimestamp)
		}
	default:
		f.ConsensusStart, f.ConsensusEnd = f.Header.BlockTimestamp, f.Header.BlockTimestamp
	}
	return nil
}

// verify computes the block hash. Its errors are hash errors, not wrapped as
// invalid file errors.
func (s *sequencer) verify(opts ReadOptions) error {
	proof := s.file.Proof
	if err := checkHashLength("proof previous hash", proof.PreviousBlockRootHash); err != nil {
		return err
	}
	if err := checkHashLength("proof start of block state hash", proof.StartOfBlockStateRootHash); err != nil {
		return err
	}

	previous := opts.PreviousHash
	if previous == nil {
		previous = proof.PreviousBlockRootHash
	} else if proof.PreviousBlockRootHash != nil && !bytes.Equal(previous, proof.PreviousBlockRootHash) {
		expected, err := toHash("previous hash", previous)
		if err != nil {
			return err
		}
		actual, _ := merkle.BytesToHash(proof.PreviousBlockRootHash)
		block := s.file.Number()
		if block > 0 {
			block--
		}
		return &HashMismatchError{Block: block, Expected: *expected, Actual: actual}
	}
	start := opts.StartOfBlockStateHash
	if start == nil {
		start = proof.StartOfBlockStateRootHash
	}

	if previous != nil {
		if err := s.digest.SetPreviousHash(previous); err != nil {
			return err
		}
	}
	if start != nil {
		if err := s.digest.SetStartOfBlockStateHash(start); err != nil {
			return err
		}
	}
	hash, err := s.digest.Digest()
	if err != nil {
		return err
	}

	s.file.Hash = hash
	s.file.PreviousHash, _ = merkle.BytesToHash(previous)
	s.file.StartOfBlockStateHash, _ = merkle.BytesToHash(start)

	if opts.ExpectedHash != nil {
		expected, ok := merkle.BytesToHash(opts.ExpectedHash)
		if !ok {
			return errors.Wrap(ErrInvalidHashLength, "expected hash")
		}
		if expected != hash {
			return &HashMismatchError{Block: s.file.Number(), Expected: expected, Actual: hash}
		}
	}
	return nil
}

// checkHashLength accepts an absent hash; a present one must be a full hash.
func checkHashLength(name string, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := toHash(name, b)
	return err
}
