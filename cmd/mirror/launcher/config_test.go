package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/flags"
	"github.com/rony4d/go-ledger-mirror/integration"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.AllFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"mirror"}, args...)))
	return got, cfgErr
}

func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	workDir := GuessWorkDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "datadir and network",
			args: []string{"--datadir", "mirror-data", "--network", "testnet"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(workDir, "mirror-data"), cfg.DataDir)
				require.Equal(t, "testnet", cfg.Network)
			},
		},
		{
			name: "importer",
			args: []string{"--workers", "7", "--batch", "9", "--skip-imported", "--ext", ".rcd", "--progress"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, ImporterConfig{
					Preset:       "default",
					Workers:      7,
					BatchSize:    9,
					SkipImported: true,
					Ext:          ".rcd",
					Progress:     true,
				}, cfg.Importer)
			},
		},
		{
			name: "preset then flags",
			args: []string{"--preset", "fast", "--workers", "2"},
			want: func(t *testing.T, cfg Config) {
				fast := integration.FastPreset()
				require.Equal(t, "fast", cfg.Importer.Preset)
				require.Equal(t, 2, cfg.Importer.Workers)
				require.Equal(t, fast.BatchSize, cfg.Importer.BatchSize)
				require.True(t, cfg.Importer.SkipImported)
				require.True(t, cfg.Metrics.Enabled)
			},
		},
		{
			name: "sink logging metrics",
			args: []string{
				"--db.dsn", "postgres://mirror@localhost/mirror", "--db.migrate",
				"--log.format", "json", "--log.verbosity", "5", "--sentry.dsn", "https://key@sentry.example.com/1",
				"--metrics", "--metrics.addr", ":9100",
			},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, SinkConfig{DSN: "postgres://mirror@localhost/mirror", Migrate: true}, cfg.Sink)
				require.Equal(t, LoggingConfig{Verbosity: 5, Format: "json", SentryDSN: "https://key@sentry.example.com/1"}, cfg.Logging)
				require.Equal(t, MetricsConfig{Enabled: true, Addr: ":9100"}, cfg.Metrics)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, test.args)
			require.NoError(t, err)
			test.want(t, cfg)
		})
	}

	t.Run("unknown preset", func(t *testing.T) {
		_, err := runConfigFromArgs(t, []string{"--preset", "turbo"})
		require.Error(t, err)
	})
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	require := require.New(t)

	file := filepath.Join(t.TempDir(), "mirror.toml")
	require.NoError(os.WriteFile(file, []byte(`
Network = "previewnet"

[Importer]
Preset = "strict"
Ext = ".rcd"

[Sink]
DSN = "postgres://file"
`), 0o644))

	cfg, err := runConfigFromArgs(t, []string{"--config", file, "--db.dsn", "postgres://flag"})
	require.NoError(err)
	require.Equal("previewnet", cfg.Network)
	require.Equal("strict", cfg.Importer.Preset)
	require.Equal(1, cfg.Importer.Workers)
	require.Equal(".rcd", cfg.Importer.Ext)
	require.Equal("postgres://flag", cfg.Sink.DSN)

	t.Run("unknown field", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(os.WriteFile(bad, []byte("Colour = \"red\"\n"), 0o644))
		_, err := runConfigFromArgs(t, []string{"--config", bad})
		require.Error(err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runConfigFromArgs(t, []string{"--config", filepath.Join(t.TempDir(), "none.toml")})
		require.Error(err)
	})
}

func TestConfig_ImporterConfig(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	icfg, err := cfg.ImporterConfig()
	require.NoError(err)
	require.Nil(icfg.PreviousHash)
	require.Equal(cfg.Importer.Workers, icfg.Workers)

	cfg.PreviousHash = "0x" + merkle.EmptyHash.Hex()
	icfg, err = cfg.ImporterConfig()
	require.NoError(err)
	require.Equal(merkle.EmptyHash, *icfg.PreviousHash)

	cfg.PreviousHash = "abcd"
	_, err = cfg.ImporterConfig()
	require.Error(err)

	cfg.PreviousHash = "zz"
	_, err = cfg.ImporterConfig()
	require.Error(err)
}

func TestResolvePath(t *testing.T) {
	require.Equal(t, filepath.Join(GuessHomeDir(), "data"), resolvePath("~/data"))
	require.Equal(t, "/var/lib/mirror", resolvePath("/var/lib/mirror"))
	require.Equal(t, filepath.Join(GuessWorkDir(), "data"), resolvePath("data"))
}
