// Package jsonfile keeps the league in the players.json and summaries.json
// files the public leaderboard page reads.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omarshaarawi/golfbot/internal/models"
)

const (
	PlayersFile   = "players.json"
	SummariesFile = "summaries.json"
)

type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

// LoadLeague reads players.json. A missing file is an empty league.
func (s *Store) LoadLeague(_ context.Context) (*models.League, error) {
	league := &models.League{Players: []models.Player{}, Courses: []string{}}
	if err := s.read(PlayersFile, league); err != nil {
		return nil, err
	}
	if league.Courses == nil {
		league.Courses = []string{}
	}
	if league.Players == nil {
		league.Players = []models.Player{}
	}
	return league, nil
}

func (s *Store) SaveLeague(_ context.Context, league *models.League) error {
	return s.write(PlayersFile, league)
}

func (s *Store) LoadSummaries(_ context.Context) ([]models.Summary, error) {
	var file models.SummariesFile
	if err := s.read(SummariesFile, &file); err != nil {
		return nil, err
	}
	if file.Summaries == nil {
		return []models.Summary{}, nil
	}
	return file.Summaries, nil
}

func (s *Store) SaveSummaries(_ context.Context, summaries []models.Summary) error {
	return s.write(SummariesFile, models.SummariesFile{Summaries: summaries})
}

// read decodes a file into v and leaves v untouched when the file is missing.
func (s *Store) read(rel string, v any) error {
	b, err := os.ReadFile(s.Path(rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", rel, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", rel, err)
	}
	return nil
}

// write replaces the file through a temp file and rename so readers never
// see a half-written document.
func (s *Store) write(rel string, v any) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", rel, err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+rel+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
