// Package integration provides importer presets. Presets bundle the worker
// pool size, batch size and replay policy into named profiles so operators
// can pick a trade-off with one flag instead of several.
//
// Usage:
//
//	cfg := integration.FastPreset()   // catching up on a backlog
//	cfg := integration.StrictPreset() // auditing a range file by file
//
// Each preset returns a PresetConfig that the launcher merges into its
// config before CLI overrides are applied.
package integration

import (
	"fmt"

	"github.com/rony4d/go-ledger-mirror/importer"
)

// PresetConfig captures the importer parameters that vary across profiles.
type PresetConfig struct {
	Name          string // identifier used by --preset
	Workers       int    // files decoded concurrently
	BatchSize     int    // files decoded before the chain is verified and emitted
	SkipImported  bool   // silently skip files at or below the chain tip
	EnableMetrics bool   // expose Prometheus metrics
}

// DefaultPreset balances throughput and memory for steady-state imports.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:          "default",
		Workers:       4,     // enough to keep up with one file every two seconds
		BatchSize:     64,    // bounded memory: at most 64 decoded files
		SkipImported:  false, // replays are reported
		EnableMetrics: false,
	}
}

// FastPreset catches up on a backlog. Restarts over already imported ranges
// are expected, so those files are skipped.
func FastPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "fast"
	cfg.Workers = 16
	cfg.BatchSize = 256
	cfg.SkipImported = true
	cfg.EnableMetrics = true
	return cfg
}

// StrictPreset processes one file at a time so the first bad file stops the
// run before anything after it is decoded.
func StrictPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "strict"
	cfg.Workers = 1
	cfg.BatchSize = 1
	cfg.EnableMetrics = true
	return cfg
}

// GetPresetByName looks up a preset by its identifier.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "default":
		return DefaultPreset(), nil
	case "fast":
		return FastPreset(), nil
	case "strict":
		return StrictPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: default, fast, strict)", name)
	}
}

// ApplyPreset merges preset into target. Zero sizes in the preset leave the
// target's values alone; booleans always apply.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Workers > 0 {
		target.Workers = preset.Workers
	}
	if preset.BatchSize > 0 {
		target.BatchSize = preset.BatchSize
	}
	target.SkipImported = preset.SkipImported
	target.EnableMetrics = preset.EnableMetrics
	if preset.Name != "" {
		target.Name = preset.Name
	}
}

// ImporterConfig converts the preset into an importer.Config.
func (p PresetConfig) ImporterConfig() importer.Config {
	return importer.Config{
		Workers:      p.Workers,
		BatchSize:    p.BatchSize,
		SkipImported: p.SkipImported,
	}
}
