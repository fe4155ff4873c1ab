package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/flags"
	"github.com/rony4d/go-ledger-mirror/importer"
	"github.com/rony4d/go-ledger-mirror/network"
	"github.com/rony4d/go-ledger-mirror/sink"
	"github.com/rony4d/go-ledger-mirror/sink/postgres"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp()
	app.Commands = []cli.Command{
		{
			Name:      "import",
			Usage:     "Verify block files, synthesize their records and hand them to the sinks",
			ArgsUsage: "<file or dir>...",
			Flags:     flags.AllFlags(),
			Action:    importAction,
		},
		{
			Name:      "verify",
			Usage:     "Verify block files and the hash chain between them without writing anything",
			ArgsUsage: "<file or dir>...",
			Flags:     flags.AllFlags(),
			Action:    verifyAction,
		},
	}
	return app
}

// Launch runs the mirror command line.
func Launch(args []string) error {
	return app.Run(args)
}

// session is what both commands share once flags are parsed.
type session struct {
	cfg     Config
	log     *logrus.Logger
	rules   network.Rules
	sources []importer.Source
}

func newSession(ctx *cli.Context, stderr io.Writer) (*session, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, err
	}
	rules, err := network.RulesByName(cfg.Network)
	if err != nil {
		return nil, err
	}
	if ctx.NArg() == 0 {
		return nil, errors.New("no block files given")
	}
	sources, err := importer.Files(cfg.Importer.Ext, ctx.Args()...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, rules: rules, sources: sources}, nil
}

func importAction(ctx *cli.Context) error {
	s, err := newSession(ctx, os.Stderr)
	if err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := filepath.Join(s.cfg.DataDir, s.rules.Name, "chainstate")
	if err := ensureDir(dir); err != nil {
		return err
	}
	store, err := chainstate.OpenLevelStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	listeners := sink.Multi{sink.LogListener{Log: s.log}}
	if s.cfg.Sink.DSN != "" {
		db, err := openDatabase(runCtx, s.cfg.Sink, store, s.log)
		if err != nil {
			return err
		}
		listeners = append(listeners, db)
	}
	defer listeners.Close()

	if s.cfg.Metrics.Enabled {
		stopMetrics, err := startMetrics(s.cfg.Metrics.Addr, s.log)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	tip, err := s.run(runCtx, store, listeners)
	if err != nil {
		s.log.WithError(err).Error("Import failed")
		return err
	}
	if tip != nil {
		s.log.WithFields(logrus.Fields{"block": tip.Number, "hash": tip.Hash.Hex()}).Info("Import finished")
	}
	return nil
}

func verifyAction(ctx *cli.Context) error {
	s, err := newSession(ctx, os.Stderr)
	if err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tip, err := s.run(runCtx, nil, nil)
	if err != nil {
		return err
	}
	if tip != nil {
		fmt.Fprintf(ctx.App.Writer, "verified %d files, last block %d hash %s\n", len(s.sources), tip.Number, tip.Hash.Hex())
	}
	return nil
}

// run imports every source. A nil store keeps the chain tip in memory.
func (s *session) run(ctx context.Context, store chainstate.Store, listener sink.Listener) (*chainstate.BlockState, error) {
	icfg, err := s.cfg.ImporterConfig()
	if err != nil {
		return nil, err
	}
	im := importer.New(icfg, importer.NewPipeline(s.rules, listener, s.log), store, s.log)

	var bar *progressbar.ProgressBar
	if s.cfg.Importer.Progress && len(s.sources) > 1 {
		bar = progressbar.NewOptions64(
			int64(len(s.sources)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Processing block files..."),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		if err := bar.RenderBlank(); err != nil {
			return nil, errors.Wrap(err, "failed to render progress bar")
		}
		im.Progress = func(string) { _ = bar.Add(1) }
	}

	tip, err := im.Run(ctx, s.sources)
	if err != nil {
		return tip, err
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			return tip, errors.Wrap(err, "failed to finish progress bar")
		}
	}
	return tip, nil
}

// openDatabase connects the postgres sink. An empty checkpoint is seeded
// from the newest block already in the database.
func openDatabase(ctx context.Context, cfg SinkConfig, store chainstate.Store, log logrus.FieldLogger) (*postgres.Listener, error) {
	db, err := postgres.Open(cfg.DSN, log)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := seedTip(ctx, store, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type latestBlocker interface {
	LatestBlock(ctx context.Context) (*chainstate.BlockState, error)
}

func seedTip(ctx context.Context, store chainstate.Store, db latestBlocker, log logrus.FieldLogger) error {
	_, err := store.Tip()
	if err != chainstate.ErrNoState {
		return err
	}
	latest, err := db.LatestBlock(ctx)
	if err == chainstate.ErrNoState {
		return nil
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"block": latest.Number, "hash": latest.Hash.Hex()}).Info("Seeding checkpoint from database")
	return store.Commit(*latest)
}
