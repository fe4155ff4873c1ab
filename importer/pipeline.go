// Package importer turns block stream files into records for listeners,
// verifying the hash chain across files.
package importer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/blockstream/transformer"
	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
	"github.com/rony4d/go-ledger-mirror/network"
	"github.com/rony4d/go-ledger-mirror/sink"
)

// Block is a decoded, verified and synthesized block file.
type Block struct {
	File    *blockstream.BlockFile
	Items   []*itr.RecordItem
	Summary *chainstate.BlockSummary
}

// Pipeline processes one file at a time. It holds no per-file state, so
// Decode may run concurrently.
type Pipeline struct {
	rules    network.Rules
	reader   *blockstream.Reader
	synth    *transformer.Synthesizer
	listener sink.Listener
	log      logrus.FieldLogger
}

// NewPipeline wires a reader and a synthesizer for the given network. A nil
// listener drops the records.
func NewPipeline(rules network.Rules, listener sink.Listener, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		rules:    rules,
		reader:   blockstream.NewReader(log),
		synth:    transformer.NewSynthesizer(log, rules.EvmChainConfig()),
		listener: listener,
		log:      log,
	}
}

// Decode reads, verifies and synthesizes a file without emitting it.
func (p *Pipeline) Decode(name string, raw []byte, opts blockstream.ReadOptions) (*Block, error) {
	if err := p.rules.CheckFileSize(len(raw)); err != nil {
		return nil, &blockstream.InvalidStreamFileError{Filename: name, Err: err}
	}
	opts.Filename = name
	file, err := p.reader.Read(raw, opts)
	if err != nil {
		return nil, err
	}
	if err := p.rules.CheckHeader(file.Header); err != nil {
		return nil, &blockstream.InvalidStreamFileError{Filename: name, Err: err}
	}
	items, err := p.synth.TransformFile(file)
	if err != nil {
		return nil, err
	}
	summary, err := chainstate.NewBlockSummary(file, items)
	if err != nil {
		return nil, errors.Wrapf(err, "summarize %s", name)
	}
	return &Block{File: file, Items: items, Summary: summary}, nil
}

// Process decodes a file chained to prev and hands its records to the
// listener. A nil prev trusts the hash carried by the proof. On error nothing
// is emitted.
func (p *Pipeline) Process(ctx context.Context, name string, raw []byte, prev []byte) (*Block, error) {
	b, err := p.Decode(name, raw, blockstream.ReadOptions{PreviousHash: prev})
	if err != nil {
		return nil, err
	}
	if err := p.Emit(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Emit hands a decoded block to the listener.
func (p *Pipeline) Emit(ctx context.Context, b *Block) error {
	if p.listener == nil {
		return nil
	}
	for _, item := range b.Items {
		if err := p.listener.OnRecord(ctx, item); err != nil {
			return errors.Wrapf(err, "record %s of block %d", item.ConsensusTimestamp(), b.Summary.Number)
		}
	}
	if err := p.listener.OnBlock(ctx, b.Summary); err != nil {
		return errors.Wrapf(err, "block %d", b.Summary.Number)
	}
	recordsEmitted.Add(float64(len(b.Items)))
	return nil
}
