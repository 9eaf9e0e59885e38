// Package loader reads saved games from disk. Games are JSONL: one move
// record per line, so a file being written move-by-move by another
// process stays loadable at every point.
package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MoveRecord is one half-move in a saved game.
type MoveRecord struct {
	Move    string `json:"move"`
	Comment string `json:"comment,omitempty"`
}

// LoadGame reads move records from a JSONL file.
func LoadGame(path string) ([]MoveRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no saved game at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open game file: %w", err)
	}
	defer file.Close()

	var records []MoveRecord
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec MoveRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// Skip malformed lines but keep loading the rest; a
			// mid-write line from the watcher race is expected.
			continue
		}
		if rec.Move == "" {
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading game file: %w", err)
	}

	return records, nil
}

// SaveGame writes move records as JSONL, replacing any existing file.
func SaveGame(path string, records []MoveRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write move %q: %w", rec.Move, err)
		}
	}
	return w.Flush()
}
