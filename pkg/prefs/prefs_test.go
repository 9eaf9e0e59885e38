package prefs

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_MissingKeyReturnsFallback(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(KeyTheme, ThemeDark)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ThemeDark {
		t.Errorf("Get = %q, want fallback %q", got, ThemeDark)
	}
}

func TestSet_Upserts(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeyTheme, ThemeLight); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyTheme, ThemeDark); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}

	got, err := s.Get(KeyTheme, "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ThemeDark {
		t.Errorf("Get = %q, want %q", got, ThemeDark)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if got, _ := s.GetBool(KeyDebugOverlay, false); got {
		t.Error("unset bool should return fallback false")
	}
	if err := s.SetBool(KeyDebugOverlay, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	got, err := s.GetBool(KeyDebugOverlay, false)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if !got {
		t.Error("GetBool = false after SetBool(true)")
	}
}

func TestBool_MalformedValueFallsBack(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeySmoothScroll, "not-a-bool"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.GetBool(KeySmoothScroll, true)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if !got {
		t.Error("malformed value should yield fallback true")
	}
}

func TestWindowSize(t *testing.T) {
	s := openTestStore(t)

	if _, _, ok, err := s.LastWindowSize(); err != nil || ok {
		t.Fatalf("LastWindowSize before save: ok=%v err=%v", ok, err)
	}

	if err := s.SaveWindowSize(1280, 800); err != nil {
		t.Fatalf("SaveWindowSize: %v", err)
	}

	w, h, ok, err := s.LastWindowSize()
	if err != nil {
		t.Fatalf("LastWindowSize: %v", err)
	}
	if !ok || w != 1280 || h != 800 {
		t.Errorf("LastWindowSize = %v x %v ok=%v, want 1280 x 800 true", w, h, ok)
	}
}

func TestAll(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeyTheme, ThemeLight); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.SetBool(KeyDebugOverlay, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all[KeyTheme] != ThemeLight || all[KeyDebugOverlay] != "true" {
		t.Errorf("All = %v", all)
	}
}
