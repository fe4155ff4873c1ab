package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/network"
	"github.com/rony4d/go-ledger-mirror/sink"
)

func fileName(n uint64) string {
	return fmt.Sprintf("%036d.blk", n)
}

// buildChain returns n linked block files starting at block first.
func buildChain(t *testing.T, first uint64, n int, prev merkle.Hash) ([]Source, []merkle.Hash) {
	var (
		sources []Source
		hashes  []merkle.Hash
	)
	for i := 0; i < n; i++ {
		number := first + uint64(i)
		ts := inter.Timestamp(1000 * (number + 1))
		body := &inter.TransactionBody{
			TransactionID: inter.TransactionID{Payer: inter.NewEntityID(1001), ValidStart: ts - 1},
			Memo:          fmt.Sprintf("block %d", number),
			Data:          &inter.CryptoTransferData{},
		}
		raw, err := blockstream.NewBlockFileBuilder(number, ts).Round(number).Event(3).
			Transaction(body, &inter.TransactionResult{Status: inter.StatusSuccess, ConsensusTimestamp: ts}).
			Proof(prev, merkle.EmptyHash).
			Build()
		require.NoError(t, err)

		file, err := blockstream.NewReader(nil).Read(raw, blockstream.ReadOptions{})
		require.NoError(t, err)
		prev = file.Hash

		sources = append(sources, Bytes(fileName(number), raw))
		hashes = append(hashes, file.Hash)
	}
	return sources, hashes
}

func newImporter(cfg Config, store chainstate.Store, l sink.Listener) *Importer {
	return New(cfg, NewPipeline(network.FakeNetRules(), l, nil), store, nil)
}

func TestPipeline_Process(t *testing.T) {
	require := require.New(t)

	sources, hashes := buildChain(t, 0, 1, merkle.EmptyHash)
	raw, err := sources[0].ReadAll()
	require.NoError(err)

	c := &sink.Collector{}
	p := NewPipeline(network.FakeNetRules(), c, nil)
	b, err := p.Process(context.Background(), sources[0].Name(), raw, merkle.EmptyHash.Bytes())
	require.NoError(err)
	require.Equal(hashes[0], b.Summary.Hash)
	require.Len(c.Records, 1)
	require.Len(c.Blocks, 1)

	// wrong previous hash emits nothing
	c = &sink.Collector{}
	p = NewPipeline(network.FakeNetRules(), c, nil)
	_, err = p.Process(context.Background(), sources[0].Name(), raw, merkle.Leaf([]byte{1}).Bytes())
	var mismatch *blockstream.HashMismatchError
	require.True(errors.As(err, &mismatch))
	require.Empty(c.Records)
	require.Empty(c.Blocks)
}

func TestPipeline_Rules(t *testing.T) {
	sources, _ := buildChain(t, 0, 1, merkle.EmptyHash)
	raw, err := sources[0].ReadAll()
	require.NoError(t, err)

	rules := network.FakeNetRules()
	rules.Blocks.MaxFileSize = len(raw) - 1
	_, err = NewPipeline(rules, nil, nil).Decode("big.blk", raw, blockstream.ReadOptions{})
	require.True(t, errors.Is(err, network.ErrFileTooLarge))

	rules = network.FakeNetRules()
	rules.MinHapiVersion = inter.SemanticVersion{Major: 9}
	_, err = NewPipeline(rules, nil, nil).Decode("old.blk", raw, blockstream.ReadOptions{})
	require.True(t, errors.Is(err, network.ErrUnsupportedVersion))
	var invalid *blockstream.InvalidStreamFileError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "old.blk", invalid.Filename)
}

func TestImporter_Run(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	sources, hashes := buildChain(t, 0, 10, merkle.EmptyHash)
	store := chainstate.NewMemoryStore()
	c := &sink.Collector{}
	var progressed []string

	im := newImporter(Config{Workers: 3, BatchSize: 4}, store, c)
	im.Progress = func(name string) { progressed = append(progressed, name) }
	tip, err := im.Run(ctx, sources)
	require.NoError(err)
	require.Equal(uint64(9), uint64(tip.Number))
	require.Equal(hashes[9], tip.Hash)

	require.Len(c.Blocks, 10)
	require.Len(c.Records, 10)
	for i, b := range c.Blocks {
		require.Equal(uint64(i), uint64(b.Number))
		require.Equal(hashes[i], b.Hash)
		require.Equal(uint64(i), c.Records[i].BlockNumber)
	}
	require.Len(progressed, 10)
	require.Equal(fileName(0), progressed[0])

	stored, err := store.Tip()
	require.NoError(err)
	require.Equal(*tip, *stored)

	// continuing from the stored tip
	more, moreHashes := buildChain(t, 10, 2, hashes[9])
	tip, err = newImporter(DefaultConfig(), store, c).Run(ctx, more)
	require.NoError(err)
	require.Equal(moreHashes[1], tip.Hash)
	require.Len(c.Blocks, 12)
}

func TestImporter_ChainErrors(t *testing.T) {
	ctx := context.Background()
	sources, hashes := buildChain(t, 0, 3, merkle.EmptyHash)

	t.Run("gap", func(t *testing.T) {
		c := &sink.Collector{}
		tip, err := newImporter(DefaultConfig(), nil, c).Run(ctx, []Source{sources[0], sources[2]})
		require.True(t, errors.Is(err, ErrBlockGap), err)
		require.Equal(t, hashes[0], tip.Hash)
		require.Len(t, c.Blocks, 1)
	})

	t.Run("broken link", func(t *testing.T) {
		forked, _ := buildChain(t, 1, 1, merkle.Leaf([]byte{0xff}))
		c := &sink.Collector{}
		_, err := newImporter(DefaultConfig(), nil, c).Run(ctx, []Source{sources[0], forked[0]})
		var mismatch *blockstream.HashMismatchError
		require.True(t, errors.As(err, &mismatch), err)
		require.Equal(t, uint64(0), mismatch.Block)
		require.Equal(t, hashes[0], mismatch.Expected)
		require.Len(t, c.Blocks, 1)
	})

	t.Run("anchor", func(t *testing.T) {
		cfg := DefaultConfig()
		anchor := merkle.EmptyHash
		cfg.PreviousHash = &anchor
		tip, err := newImporter(cfg, nil, nil).Run(ctx, sources[:1])
		require.NoError(t, err)
		require.Equal(t, hashes[0], tip.Hash)

		other := merkle.Leaf([]byte{0x01})
		cfg.PreviousHash = &other
		_, err = newImporter(cfg, nil, nil).Run(ctx, sources[:1])
		var mismatch *blockstream.HashMismatchError
		require.True(t, errors.As(err, &mismatch), err)
		require.Equal(t, other, mismatch.Expected)
		require.Equal(t, merkle.EmptyHash, mismatch.Actual)
	})

	t.Run("already imported", func(t *testing.T) {
		store := chainstate.NewMemoryStore()
		_, err := newImporter(DefaultConfig(), store, nil).Run(ctx, sources)
		require.NoError(t, err)

		_, err = newImporter(DefaultConfig(), store, nil).Run(ctx, sources[:1])
		require.True(t, errors.Is(err, ErrAlreadyImported))

		cfg := DefaultConfig()
		cfg.SkipImported = true
		tip, err := newImporter(cfg, store, nil).Run(ctx, sources)
		require.NoError(t, err)
		require.Equal(t, hashes[2], tip.Hash)
	})

	t.Run("invalid file", func(t *testing.T) {
		c := &sink.Collector{}
		_, err := newImporter(DefaultConfig(), nil, c).Run(ctx, []Source{sources[0], Bytes("bad.blk", []byte{0x01})})
		var invalid *blockstream.InvalidStreamFileError
		require.True(t, errors.As(err, &invalid), err)
		require.Empty(t, c.Blocks)
	})
}

func TestFiles(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	sources, _ := buildChain(t, 0, 3, merkle.EmptyHash)
	for i := len(sources) - 1; i >= 0; i-- {
		raw, err := sources[i].ReadAll()
		require.NoError(err)
		require.NoError(os.WriteFile(filepath.Join(dir, sources[i].Name()), raw, 0o644))
	}
	require.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	found, err := Files(".blk", dir)
	require.NoError(err)
	require.Len(found, 3)
	for i, src := range found {
		require.Equal(fileName(uint64(i)), src.Name())
	}

	tip, err := newImporter(DefaultConfig(), nil, nil).Run(context.Background(), found)
	require.NoError(err)
	require.Equal(uint64(2), uint64(tip.Number))

	_, err = Files(".blk", filepath.Join(dir, "missing"))
	require.Error(err)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.Error(t, RegisterMetrics(reg))
}
