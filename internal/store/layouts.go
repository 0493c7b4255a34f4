package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/export"
)

// ErrNotFound is returned when no layout is stored under a key.
//
// A key is a generator profile plus the seed and map size. The profile
// fingerprints whatever else shapes a layout, so changing the generator
// constants or entity tables never serves a stale map.
var ErrNotFound = errors.New("layout not found")

// Summary describes a stored layout without its document.
type Summary struct {
	ID         int64
	Profile    string
	Seed       int64
	Width      int
	Height     int
	Attempts   int
	Rooms      int
	MainLength int
	CreatedAt  time.Time
}

// SaveLayout stores l under profile, replacing any layout already stored for
// the same profile, seed and size. It returns the row id.
func (s *Store) SaveLayout(profile string, l *dungeon.Layout) (int64, error) {
	doc, err := export.Encode(l)
	if err != nil {
		return 0, err
	}

	query := s.qb.BuildWithReturning(
		"INSERT INTO layouts (profile, seed, width, height, attempts, rooms, main_length, document) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		"id",
	)
	args := []any{profile, l.Seed, l.Width, l.Height, l.Attempts, len(l.Rooms), l.MainLength, string(doc)}

	var id int64
	if s.dialect.SupportsLastInsertID() {
		var result sql.Result
		result, err = s.db.Exec(query, args...)
		if err == nil {
			id, err = result.LastInsertId()
		}
	} else {
		err = s.db.QueryRow(query, args...).Scan(&id)
	}

	if s.dialect.IsDuplicateKeyError(err) {
		return s.replaceLayout(profile, l, doc)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save layout: %w", err)
	}
	return id, nil
}

func (s *Store) replaceLayout(profile string, l *dungeon.Layout, doc []byte) (int64, error) {
	_, err := s.db.Exec(
		s.qb.Build("UPDATE layouts SET attempts = ?, rooms = ?, main_length = ?, document = ?, created_at = CURRENT_TIMESTAMP WHERE profile = ? AND seed = ? AND width = ? AND height = ?"),
		l.Attempts, len(l.Rooms), l.MainLength, string(doc), profile, l.Seed, l.Width, l.Height,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update layout: %w", err)
	}

	var id int64
	err = s.db.QueryRow(
		s.qb.Build("SELECT id FROM layouts WHERE profile = ? AND seed = ? AND width = ? AND height = ?"),
		profile, l.Seed, l.Width, l.Height,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read layout id: %w", err)
	}
	return id, nil
}

// GetLayout loads the layout stored for a profile, seed and size.
func (s *Store) GetLayout(profile string, seed int64, width, height int) (*dungeon.Layout, error) {
	var doc string
	err := s.db.QueryRow(
		s.qb.Build("SELECT document FROM layouts WHERE profile = ? AND seed = ? AND width = ? AND height = ?"),
		profile, seed, width, height,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: seed %d at %dx%d (profile %q)", ErrNotFound, seed, width, height, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	return export.Decode([]byte(doc))
}

// ListLayouts returns summaries of all stored layouts, oldest first.
func (s *Store) ListLayouts() ([]Summary, error) {
	rows, err := s.db.Query(
		"SELECT id, profile, seed, width, height, attempts, rooms, main_length, created_at FROM layouts ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Profile, &sum.Seed, &sum.Width, &sum.Height, &sum.Attempts, &sum.Rooms, &sum.MainLength, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteLayout removes the layout stored for a profile, seed and size.
func (s *Store) DeleteLayout(profile string, seed int64, width, height int) error {
	result, err := s.db.Exec(
		s.qb.Build("DELETE FROM layouts WHERE profile = ? AND seed = ? AND width = ? AND height = ?"),
		profile, seed, width, height,
	)
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: seed %d at %dx%d (profile %q)", ErrNotFound, seed, width, height, profile)
	}
	return nil
}
