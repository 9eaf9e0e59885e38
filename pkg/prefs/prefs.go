// Package prefs persists user preferences across sessions in a small
// sqlite database: theme choice, debug overlay state, and the last
// window geometry the layout engine settled on.
package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Well-known preference keys.
const (
	KeyTheme        = "theme"
	KeyBackendMode  = "backend_mode"
	KeyDebugOverlay = "debug_overlay"
	KeySmoothScroll = "smooth_scroll"
	KeyLastWidth    = "last_width"
	KeyLastHeight   = "last_height"
)

// Theme values accepted under KeyTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Store handles preference persistence.
type Store struct {
	db *sql.DB
}

// Open opens or creates the preferences database at the given path.
func Open(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Set upserts one preference.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// Get returns the stored value, or fallback when the key is absent.
func (s *Store) Get(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetBool reads a boolean preference.
func (s *Store) GetBool(key string, fallback bool) (bool, error) {
	raw, err := s.Get(key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// SetBool writes a boolean preference.
func (s *Store) SetBool(key string, value bool) error {
	return s.Set(key, strconv.FormatBool(value))
}

// GetFloat reads a numeric preference.
func (s *Store) GetFloat(key string, fallback float64) (float64, error) {
	raw, err := s.Get(key, "")
	if err != nil {
		return fallback, err
	}
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// SetFloat writes a numeric preference.
func (s *Store) SetFloat(key string, value float64) error {
	return s.Set(key, strconv.FormatFloat(value, 'g', -1, 64))
}

// SaveWindowSize records the last settled viewport.
func (s *Store) SaveWindowSize(width, height float64) error {
	if err := s.SetFloat(KeyLastWidth, width); err != nil {
		return err
	}
	return s.SetFloat(KeyLastHeight, height)
}

// LastWindowSize returns the recorded viewport, or ok=false if none was
// ever saved.
func (s *Store) LastWindowSize() (width, height float64, ok bool, err error) {
	width, err = s.GetFloat(KeyLastWidth, 0)
	if err != nil {
		return 0, 0, false, err
	}
	height, err = s.GetFloat(KeyLastHeight, 0)
	if err != nil {
		return 0, 0, false, err
	}
	return width, height, width > 0 && height > 0, nil
}

// All returns every stored preference, for the debug overlay.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
