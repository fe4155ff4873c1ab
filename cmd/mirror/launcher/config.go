// This file maps the TOML file and the CLI context onto Config.

package launcher

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/importer"
	"github.com/rony4d/go-ledger-mirror/integration"
)

// TOML keys use the Go field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// MakeAllConfigs merges defaults, the optional config file, the preset and
// CLI overrides into a single config.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := DefaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("preset") {
		cfg.Importer.Preset = ctx.String("preset")
	}
	if err := applyPreset(&cfg); err != nil {
		return cfg, err
	}

	applyCLIOverrides(ctx, &cfg)
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config file")
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// applyPreset overwrites the importer settings with the named preset unless
// it is the default one, whose values are already the baseline.
func applyPreset(cfg *Config) error {
	preset, err := integration.GetPresetByName(cfg.Importer.Preset)
	if err != nil {
		return err
	}
	if preset.Name == integration.DefaultPreset().Name {
		return nil
	}
	target := integration.PresetConfig{
		Name:          cfg.Importer.Preset,
		Workers:       cfg.Importer.Workers,
		BatchSize:     cfg.Importer.BatchSize,
		SkipImported:  cfg.Importer.SkipImported,
		EnableMetrics: cfg.Metrics.Enabled,
	}
	integration.ApplyPreset(&target, preset)
	cfg.Importer.Workers = target.Workers
	cfg.Importer.BatchSize = target.BatchSize
	cfg.Importer.SkipImported = target.SkipImported
	cfg.Metrics.Enabled = cfg.Metrics.Enabled || target.EnableMetrics
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("network") {
		cfg.Network = ctx.String("network")
	}
	if ctx.IsSet("prevhash") {
		cfg.PreviousHash = ctx.String("prevhash")
	}

	if ctx.IsSet("workers") {
		cfg.Importer.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("batch") {
		cfg.Importer.BatchSize = ctx.Int("batch")
	}
	if ctx.IsSet("skip-imported") {
		cfg.Importer.SkipImported = ctx.Bool("skip-imported")
	}
	if ctx.IsSet("ext") {
		cfg.Importer.Ext = ctx.String("ext")
	}
	if ctx.IsSet("progress") {
		cfg.Importer.Progress = ctx.Bool("progress")
	}

	if ctx.IsSet("db.dsn") {
		cfg.Sink.DSN = ctx.String("db.dsn")
	}
	if ctx.IsSet("db.migrate") {
		cfg.Sink.Migrate = ctx.Bool("db.migrate")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.IsSet("metrics") {
		cfg.Metrics.Enabled = ctx.Bool("metrics")
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Metrics.Addr = ctx.String("metrics.addr")
	}
}

// ImporterConfig converts the launcher settings for importer.New.
func (c Config) ImporterConfig() (importer.Config, error) {
	cfg := importer.Config{
		Workers:      c.Importer.Workers,
		BatchSize:    c.Importer.BatchSize,
		SkipImported: c.Importer.SkipImported,
	}
	if c.PreviousHash != "" {
		raw, err := hex.DecodeString(strings.TrimPrefix(c.PreviousHash, "0x"))
		if err != nil {
			return cfg, errors.Wrap(err, "decode previous hash")
		}
		h, ok := merkle.BytesToHash(raw)
		if !ok {
			return cfg, errors.Errorf("previous hash must be %d bytes, got %d", merkle.HashSize, len(raw))
		}
		cfg.PreviousHash = &h
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create datadir %s", dir)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
