// Package sqlite keeps every league snapshot version in a SQLite database.
// Saving appends a new row; history is never rewritten.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/omarshaarawi/golfbot/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS league_snapshot (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    version TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_league_snapshot_version ON league_snapshot(version);

CREATE TABLE IF NOT EXISTS summary (
    week INTEGER PRIMARY KEY CHECK (week >= 1),
    title TEXT NOT NULL,
    content TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open connects to the database at path (":memory:" works for tests) and
// creates the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection: SQLite has a single writer and :memory: databases
	// are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadLeague returns the newest snapshot, or an empty league when none has
// been saved yet.
func (s *Store) LoadLeague(ctx context.Context) (*models.League, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM league_snapshot
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.League{Players: []models.Player{}, Courses: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying snapshot: %w", err)
	}

	var league models.League
	if err := json.Unmarshal([]byte(payload), &league); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}
	if league.Players == nil {
		league.Players = []models.Player{}
	}
	if league.Courses == nil {
		league.Courses = []string{}
	}
	return &league, nil
}

func (s *Store) SaveLeague(ctx context.Context, league *models.League) error {
	payload, err := json.Marshal(league)
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	created := league.UpdatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO league_snapshot (version, payload, created_at)
		VALUES (?, ?, ?)
	`, league.Version, string(payload), created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}
	return nil
}

// History lists stored versions, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]models.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM league_snapshot
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	defer rows.Close()

	var out []models.SnapshotInfo
	for rows.Next() {
		var info models.SnapshotInfo
		var created string
		if err := rows.Scan(&info.ID, &info.Version, &created); err != nil {
			return nil, fmt.Errorf("error scanning history: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("error parsing snapshot time: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) LoadSummaries(ctx context.Context) ([]models.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT week, title, content FROM summary ORDER BY week`)
	if err != nil {
		return nil, fmt.Errorf("error querying summaries: %w", err)
	}
	defer rows.Close()

	out := []models.Summary{}
	for rows.Next() {
		var sm models.Summary
		if err := rows.Scan(&sm.Week, &sm.Title, &sm.Content); err != nil {
			return nil, fmt.Errorf("error scanning summary: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// SaveSummaries replaces the stored summaries with the given list.
func (s *Store) SaveSummaries(ctx context.Context, summaries []models.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM summary`); err != nil {
		return fmt.Errorf("error clearing summaries: %w", err)
	}
	for _, sm := range summaries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO summary (week, title, content) VALUES (?, ?, ?)
		`, sm.Week, sm.Title, sm.Content)
		if err != nil {
			return fmt.Errorf("error saving summary for week %d: %w", sm.Week, err)
		}
	}
	return tx.Commit()
}
