package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

// Preference keys
const (
	PrefRadius    = "editor.radius"
	PrefStrength  = "editor.strength"
	PrefThreshold = "editor.threshold"
)

// GetPreference retrieves a preference value by key.
// Returns empty string if key doesn't exist.
func (s *Store) GetPreference(key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(), `
		SELECT value FROM preferences WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetPreference sets a preference value
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetFloatPreference parses a numeric preference. ok is false when the key is
// missing or not a number.
func (s *Store) GetFloatPreference(key string) (v float64, ok bool, err error) {
	raw, err := s.GetPreference(key)
	if err != nil || raw == "" {
		return 0, false, err
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, false, nil
	}
	return v, true, nil
}

// SetFloatPreference stores a numeric preference
func (s *Store) SetFloatPreference(key string, v float64) error {
	return s.SetPreference(key, strconv.FormatFloat(v, 'g', -1, 64))
}
