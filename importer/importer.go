package importer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/chainstate"
)

var (
	// ErrBlockGap is returned when a file does not follow the chain tip.
	ErrBlockGap = errors.New("block number gap")
	// ErrAlreadyImported is returned for a file at or below the tip unless
	// Config.SkipImported is set.
	ErrAlreadyImported = errors.New("block already imported")
)

// Config tunes an Importer.
type Config struct {
	// Workers bounds how many files are decoded at once.
	Workers int
	// BatchSize is how many files are decoded before the chain is verified
	// and the batch emitted.
	BatchSize int
	// SkipImported drops files at or below the chain tip.
	SkipImported bool
	// PreviousHash, when set, is the hash the first file must link to while
	// no chain tip is stored.
	PreviousHash *merkle.Hash
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		BatchSize: 64,
	}
}

// Importer decodes files in parallel and links, emits and commits them in
// order.
type Importer struct {
	cfg      Config
	pipeline *Pipeline
	store    chainstate.Store
	log      logrus.FieldLogger

	// Progress, when set, is called after each file, emitted or skipped.
	Progress func(name string)
}

// New returns an Importer. A nil store keeps the chain tip in memory only.
func New(cfg Config, pipeline *Pipeline, store chainstate.Store, log logrus.FieldLogger) *Importer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if store == nil {
		store = chainstate.NewMemoryStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Importer{cfg: cfg, pipeline: pipeline, store: store, log: log}
}

// Run imports sources in order and returns the resulting chain tip, nil when
// nothing was ever imported. Blocks emitted before an error stay committed.
func (im *Importer) Run(ctx context.Context, sources []Source) (*chainstate.BlockState, error) {
	tip, err := im.store.Tip()
	if err == chainstate.ErrNoState {
		tip, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(sources); start += im.cfg.BatchSize {
		end := start + im.cfg.BatchSize
		if end > len(sources) {
			end = len(sources)
		}
		blocks, err := im.decodeBatch(ctx, sources[start:end])
		if err != nil {
			return tip, err
		}
		for i, b := range blocks {
			if err := ctx.Err(); err != nil {
				return tip, err
			}
			skip, err := im.link(tip, b)
			if err != nil {
				filesProcessed.WithLabelValues("unlinked").Inc()
				return tip, err
			}
			if !skip {
				state, err := im.commit(ctx, b)
				if err != nil {
					return tip, err
				}
				tip = state
			}
			if im.Progress != nil {
				im.Progress(sources[start+i].Name())
			}
		}
	}
	return tip, nil
}

func (im *Importer) decodeBatch(ctx context.Context, batch []Source) ([]*Block, error) {
	blocks := make([]*Block, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, im.cfg.Workers)

	for i, src := range batch {
		i, src := i, src
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			raw, err := src.ReadAll()
			if err != nil {
				return err
			}
			b, err := im.pipeline.Decode(src.Name(), raw, blockstream.ReadOptions{})
			if err != nil {
				filesProcessed.WithLabelValues("invalid").Inc()
				var mismatch *blockstream.HashMismatchError
				if errors.As(err, &mismatch) {
					hashMismatches.Inc()
				}
				return err
			}
			blocks[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// link checks that b extends tip. It reports skip for a block already
// imported when the config allows it.
func (im *Importer) link(tip *chainstate.BlockState, b *Block) (skip bool, err error) {
	if tip == nil {
		if anchor := im.cfg.PreviousHash; anchor != nil && b.File.PreviousHash != *anchor {
			hashMismatches.Inc()
			prev := uint64(b.Summary.Number)
			if prev > 0 {
				prev--
			}
			return false, &blockstream.HashMismatchError{
				Block:    prev,
				Expected: *anchor,
				Actual:   b.File.PreviousHash,
			}
		}
		return false, nil
	}
	number := b.Summary.Number
	if number <= tip.Number {
		if im.cfg.SkipImported {
			im.log.WithFields(logrus.Fields{"file": b.File.Name, "block": number, "tip": tip.Number}).Debug("Skipping imported block")
			return true, nil
		}
		return false, errors.Wrapf(ErrAlreadyImported, "block %d, tip %d", number, tip.Number)
	}
	if !tip.Next(number) {
		return false, errors.Wrapf(ErrBlockGap, "block %d after %d", number, tip.Number)
	}
	if b.File.PreviousHash != tip.Hash {
		hashMismatches.Inc()
		return false, &blockstream.HashMismatchError{
			Block:    uint64(tip.Number),
			Expected: tip.Hash,
			Actual:   b.File.PreviousHash,
		}
	}
	return false, nil
}

func (im *Importer) commit(ctx context.Context, b *Block) (*chainstate.BlockState, error) {
	if err := im.pipeline.Emit(ctx, b); err != nil {
		return nil, err
	}
	state := b.Summary.State()
	if err := im.store.Commit(state); err != nil {
		return nil, errors.Wrapf(err, "commit block %d", state.Number)
	}
	filesProcessed.WithLabelValues("ok").Inc()
	latestBlock.Set(float64(state.Number))
	im.log.WithFields(logrus.Fields{
		"file":    b.File.Name,
		"block":   state.Number,
		"records": len(b.Items),
	}).Debug("Imported block stream file")
	return &state, nil
}
