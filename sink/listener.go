// Package sink receives the records of imported blocks.
package sink

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

// Listener consumes imported blocks. For each block, OnRecord is called for
// every record in file order, then OnBlock once. Calls for one block never
// interleave with calls for another.
type Listener interface {
	OnRecord(ctx context.Context, item *itr.RecordItem) error
	OnBlock(ctx context.Context, summary *chainstate.BlockSummary) error
	Close() error
}

// Multi fans calls out to every listener in order, stopping at the first
// error.
type Multi []Listener

func (m Multi) OnRecord(ctx context.Context, item *itr.RecordItem) error {
	for _, l := range m {
		if err := l.OnRecord(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) OnBlock(ctx context.Context, summary *chainstate.BlockSummary) error {
	for _, l := range m {
		if err := l.OnBlock(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every listener and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, l := range m {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LogListener logs every block and, at debug level, every record.
type LogListener struct {
	Log logrus.FieldLogger
}

func (l LogListener) OnRecord(_ context.Context, item *itr.RecordItem) error {
	l.Log.WithFields(logrus.Fields{
		"block":     item.BlockNumber,
		"index":     item.Index,
		"type":      item.TransactionType,
		"status":    item.Record.Receipt.Status,
		"timestamp": item.ConsensusTimestamp(),
	}).Debug("Record")
	return nil
}

func (l LogListener) OnBlock(_ context.Context, s *chainstate.BlockSummary) error {
	l.Log.WithFields(logrus.Fields{
		"block":       s.Number,
		"hash":        s.Hash.Hex(),
		"records":     s.Count,
		"start":       s.ConsensusStart,
		"end":         s.ConsensusEnd,
		"fingerprint": s.Fingerprint().Hex(),
	}).Info("Imported block")
	return nil
}

func (LogListener) Close() error { return nil }

// Collector keeps everything it receives in memory.
type Collector struct {
	mu      sync.Mutex
	Records []*itr.RecordItem
	Blocks  []*chainstate.BlockSummary
}

func (c *Collector) OnRecord(_ context.Context, item *itr.RecordItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, item)
	return nil
}

func (c *Collector) OnBlock(_ context.Context, s *chainstate.BlockSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Blocks = append(c.Blocks, s)
	return nil
}

func (c *Collector) Close() error { return nil }
