// Package config loads the engine's tunables from a YAML file and supplies
// the documented defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts both "150ms" strings and
// plain millisecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var ms int64
	if err := value.Decode(&ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %w", err)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Engine holds every tunable the layout engine exposes. The zero value is
// not usable; start from Default.
type Engine struct {
	// MinBoardSize is the hard floor for the board side, in pixels.
	MinBoardSize float64 `yaml:"min_board_size"`
	// MinSpacing is the smallest allowed gap between placed elements.
	MinSpacing float64 `yaml:"min_spacing"`
	// RowTolerance is the vertical band treated as "same row".
	RowTolerance float64 `yaml:"row_tolerance"`
	// Debounce is the settle window for resize and orientation bursts.
	Debounce Duration `yaml:"debounce"`
	// CacheTTL is the rolling expiry for cached element geometry.
	CacheTTL Duration `yaml:"cache_ttl"`
	// HistoryDepth bounds the layout state history.
	HistoryDepth int `yaml:"history_depth"`
	// PerfBudget is the timing budget for one full analysis pass.
	PerfBudget Duration `yaml:"perf_budget"`
	// Transition is how long one batched position change animates.
	Transition Duration `yaml:"transition"`
	// SmoothScrolling re-enables snap behavior after touch release.
	SmoothScrolling bool `yaml:"smooth_scrolling"`
	// ErrorLogSize bounds the error ring buffer.
	ErrorLogSize int `yaml:"error_log_size"`
}

// Default returns the documented engine defaults.
func Default() Engine {
	return Engine{
		MinBoardSize:    280,
		MinSpacing:      16,
		RowTolerance:    10,
		Debounce:        Duration(150 * time.Millisecond),
		CacheTTL:        Duration(1000 * time.Millisecond),
		HistoryDepth:    10,
		PerfBudget:      Duration(100 * time.Millisecond),
		Transition:      Duration(300 * time.Millisecond),
		SmoothScrolling: true,
		ErrorLogSize:    100,
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults without error; a malformed file is an error.
func Load(path string) (Engine, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg.sanitized(), nil
}

// sanitized clamps nonsensical values back to the defaults.
func (e Engine) sanitized() Engine {
	d := Default()
	if e.MinBoardSize <= 0 {
		e.MinBoardSize = d.MinBoardSize
	}
	if e.MinSpacing <= 0 {
		e.MinSpacing = d.MinSpacing
	}
	if e.RowTolerance <= 0 {
		e.RowTolerance = d.RowTolerance
	}
	if e.Debounce <= 0 {
		e.Debounce = d.Debounce
	}
	if e.CacheTTL <= 0 {
		e.CacheTTL = d.CacheTTL
	}
	if e.HistoryDepth <= 0 {
		e.HistoryDepth = d.HistoryDepth
	}
	if e.PerfBudget <= 0 {
		e.PerfBudget = d.PerfBudget
	}
	if e.Transition <= 0 {
		e.Transition = d.Transition
	}
	if e.ErrorLogSize <= 0 {
		e.ErrorLogSize = d.ErrorLogSize
	}
	return e
}
