package store

import (
	"database/sql"
	"errors"
)

const (
	importKeyPrefix = "import:"
	seededKey       = "seeded"
)

func setMetadata(ex execer, key, value string) error {
	_, err := ex.Exec(
		`INSERT INTO quiz_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM quiz_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// GetImportedFileHash returns the sha256 recorded for an imported questions
// file, or "" if the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	return s.GetMetadata(importKeyPrefix + path)
}

// Seeded reports whether the bank still holds only the built-in table.
func (s *Store) Seeded() (bool, error) {
	v, err := s.GetMetadata(seededKey)
	return v != "", err
}
