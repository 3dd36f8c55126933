package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Item is one stored key with its metadata.
type Item struct {
	Key        string    `json:"key"`
	SizeBytes  int64     `json:"size_bytes"`
	UpdatedUTC time.Time `json:"updated_utc"`
}

func (s *Store) SetItem(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(`
		INSERT INTO storage (key, value, updated_utc, size_bytes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_utc=excluded.updated_utc, size_bytes=excluded.size_bytes
	`, key, value, now, len(value)); err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(key string) (string, bool, error) {
	var value string
	row := s.db.QueryRow(`SELECT value FROM storage WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get item: %w", err)
	}
	return value, true, nil
}

func (s *Store) RemoveItem(key string) error {
	if _, err := s.db.Exec(`DELETE FROM storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// ListItems returns the stored keys starting with prefix, ordered by key.
func (s *Store) ListItems(prefix string) ([]Item, error) {
	rows, err := s.db.Query(`
		SELECT key, size_bytes, updated_utc FROM storage
		WHERE substr(key, 1, length(?)) = ?
		ORDER BY key
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var (
			it      Item
			updated string
		)
		if err := rows.Scan(&it.Key, &it.SizeBytes, &updated); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.UpdatedUTC, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}
