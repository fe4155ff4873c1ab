package launcher

import (
	"path/filepath"

	"github.com/rony4d/go-ledger-mirror/integration"
)

// Config is everything the launcher needs, layered as defaults, then the
// TOML file given by --config, then the chosen preset, then CLI flags.
type Config struct {
	DataDir      string //	Where the chain tip checkpoint lives. One directory per mirrored network.
	Network      string //	Ledger network the files belong to; picks ledger id, version floor and size limits.
	PreviousHash string //	Hex hash the first file must link to when the checkpoint is empty.

	Importer ImporterConfig
	Sink     SinkConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ImporterConfig tunes the file worker pool.
type ImporterConfig struct {
	Preset       string //	Named profile from the integration package.
	Workers      int    //	Files decoded concurrently.
	BatchSize    int    //	Files decoded before the batch is linked and emitted in order.
	SkipImported bool   //	Skip files at or below the checkpoint instead of failing.
	Ext          string //	Extension matched when a directory is given.
	Progress     bool   //	Draw a progress bar on stderr.
}

// SinkConfig selects where records go.
type SinkConfig struct {
	DSN     string //	Postgres connection string. Empty means records are only logged.
	Migrate bool   //	Create the tables before importing.
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	SentryDSN string
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	preset := integration.DefaultPreset()
	return Config{
		DataDir: filepath.Join(GuessHomeDir(), ".ledger-mirror"),
		Network: "mainnet",
		Importer: ImporterConfig{
			Preset:       preset.Name,
			Workers:      preset.Workers,
			BatchSize:    preset.BatchSize,
			SkipImported: preset.SkipImported,
			Ext:          ".blk",
		},
		Logging: LoggingConfig{
			Verbosity: 4,
			Format:    "text",
		},
		Metrics: MetricsConfig{
			Enabled: preset.EnableMetrics,
			Addr:    "127.0.0.1:6060",
		},
	}
}
