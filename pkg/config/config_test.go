package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MinBoardSize != 280 {
		t.Errorf("MinBoardSize = %g, want 280", cfg.MinBoardSize)
	}
	if cfg.MinSpacing != 16 {
		t.Errorf("MinSpacing = %g, want 16", cfg.MinSpacing)
	}
	if cfg.Debounce.Std() != 150*time.Millisecond {
		t.Errorf("Debounce = %v, want 150ms", cfg.Debounce)
	}
	if cfg.HistoryDepth != 10 {
		t.Errorf("HistoryDepth = %d, want 10", cfg.HistoryDepth)
	}
	if cfg.ErrorLogSize != 100 {
		t.Errorf("ErrorLogSize = %d, want 100", cfg.ErrorLogSize)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_OverridesAndSanitizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := "min_board_size: 320\nmin_spacing: -4\ndebounce: 200ms\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinBoardSize != 320 {
		t.Errorf("MinBoardSize = %g, want 320", cfg.MinBoardSize)
	}
	if cfg.MinSpacing != 16 {
		t.Errorf("negative MinSpacing = %g, want default 16", cfg.MinSpacing)
	}
	if cfg.Debounce.Std() != 200*time.Millisecond {
		t.Errorf("Debounce = %v, want 200ms", cfg.Debounce)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("min_board_size: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed yaml")
	}
}
