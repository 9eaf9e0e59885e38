package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGame_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.jsonl")
	in := []MoveRecord{
		{Move: "b2b3"},
		{Move: "c5c4", Comment: "counter"},
		{Move: "c2c3"},
	}

	if err := SaveGame(path, in); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	out, err := LoadGame(path)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("loaded %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("record %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestLoadGame_MissingFile(t *testing.T) {
	if _, err := LoadGame(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("LoadGame succeeded on a missing file")
	}
}

func TestLoadGame_SkipsMalformedAndEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.jsonl")
	raw := `{"move":"b2b3"}

not json at all
{"move":""}
{"move":"c5c4"`
	if err := os.WriteFile(path, []byte(raw+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := LoadGame(path)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if len(out) != 1 || out[0].Move != "b2b3" {
		t.Errorf("records = %+v, want only the complete move", out)
	}
}
