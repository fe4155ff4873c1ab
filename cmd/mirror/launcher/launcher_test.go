package launcher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// writeChain writes n linked block files into dir and returns their hashes.
func writeChain(t *testing.T, dir string, n int) []merkle.Hash {
	t.Helper()

	prev := merkle.EmptyHash
	var hashes []merkle.Hash
	for i := 0; i < n; i++ {
		number := uint64(i)
		ts := inter.Timestamp(1000 * (number + 1))
		body := &inter.TransactionBody{
			TransactionID: inter.TransactionID{Payer: inter.NewEntityID(1001), ValidStart: ts - 1},
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
		hashes = append(hashes, file.Hash)

		name := filepath.Join(dir, fmt.Sprintf("%036d.blk", number))
		require.NoError(t, os.WriteFile(name, raw, 0o644))
	}
	return hashes
}

func TestLaunch_Verify(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	hashes := writeChain(t, dir, 3)

	app := newApp()
	out := new(bytes.Buffer)
	app.Writer = out
	require.NoError(app.Run([]string{"mirror", "verify", "--network", "fakenet", "--log.verbosity", "2", dir}))
	require.Contains(out.String(), "verified 3 files, last block 2 hash "+hashes[2].Hex())

	require.Error(app.Run([]string{"mirror", "verify", "--network", "fakenet"}))
	require.Error(app.Run([]string{"mirror", "verify", "--network", "nonet", dir}))
}

func TestLaunch_Import(t *testing.T) {
	require := require.New(t)

	files := t.TempDir()
	data := t.TempDir()
	hashes := writeChain(t, files, 4)

	args := []string{"mirror", "import", "--network", "fakenet", "--datadir", data, "--log.verbosity", "2", files}
	require.NoError(newApp().Run(args))

	store, err := chainstate.OpenLevelStore(filepath.Join(data, "fakenet", "chainstate"))
	require.NoError(err)
	tip, err := store.Tip()
	require.NoError(err)
	require.Equal(hashes[3], tip.Hash)
	require.NoError(store.Close())

	// A second run over the same files is a replay.
	require.Error(newApp().Run(args))

	skip := append(append([]string{}, args[:len(args)-1]...), "--skip-imported", files)
	require.NoError(newApp().Run(skip))
}

func TestNewLogger(t *testing.T) {
	require := require.New(t)
	out := new(bytes.Buffer)

	log, err := newLogger(LoggingConfig{Verbosity: 3, Format: "json"}, out)
	require.NoError(err)
	require.Equal(logrus.WarnLevel, log.Level)
	log.Info("dropped")
	log.Warn("kept")
	require.NotContains(out.String(), "dropped")
	require.Contains(out.String(), `"msg":"kept"`)

	log, err = newLogger(LoggingConfig{Verbosity: 4, SentryDSN: "https://key@sentry.example.com/1"}, out)
	require.NoError(err)
	require.Len(log.Hooks[logrus.ErrorLevel], 1)
	require.Empty(log.Hooks[logrus.InfoLevel])

	_, err = newLogger(LoggingConfig{Verbosity: 9}, out)
	require.Error(err)
	_, err = newLogger(LoggingConfig{Verbosity: 4, Format: "xml"}, out)
	require.Error(err)
}

type fakeDB struct {
	latest *chainstate.BlockState
}

func (f fakeDB) LatestBlock(context.Context) (*chainstate.BlockState, error) {
	if f.latest == nil {
		return nil, chainstate.ErrNoState
	}
	return f.latest, nil
}

func TestSeedTip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	log := logrus.New()
	log.Out = new(bytes.Buffer)

	store := chainstate.NewMemoryStore()
	require.NoError(seedTip(ctx, store, fakeDB{}, log))
	_, err := store.Tip()
	require.Equal(chainstate.ErrNoState, err)

	latest := &chainstate.BlockState{Number: 7, Hash: merkle.Leaf([]byte{7})}
	require.NoError(seedTip(ctx, store, fakeDB{latest: latest}, log))
	tip, err := store.Tip()
	require.NoError(err)
	require.Equal(*latest, *tip)

	// An existing checkpoint wins.
	require.NoError(seedTip(ctx, store, fakeDB{latest: &chainstate.BlockState{Number: 9}}, log))
	tip, err = store.Tip()
	require.NoError(err)
	require.Equal(*latest, *tip)
}

func TestMetricsRegistry(t *testing.T) {
	reg, err := metricsRegistry()
	require.NoError(t, err)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
