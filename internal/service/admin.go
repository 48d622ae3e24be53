package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omarshaarawi/golfbot/internal/handicap"
	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/score"
)

// edit applies change to a copy of the current snapshot and persists the
// result as a new version. The cached snapshot is only replaced once the
// store accepted the new one.
func (s *LeagueService) edit(ctx context.Context, action string, change func(*models.League) error) (*models.League, error) {
	current, summaries, err := s.getLeague(ctx)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	padWeeks(next)
	if err := change(next); err != nil {
		return nil, err
	}
	next.Version = uuid.NewString()
	next.UpdatedAt = time.Now().UTC()

	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveLeague(ctx, next); err != nil {
		return nil, fmt.Errorf("error saving league: %w", err)
	}
	s.repo.SaveLeague(next, summaries)

	slog.Info("League updated", "action", action, "version", next.Version, "previous", current.Version)
	return next, nil
}

// padWeeks brings every player's lists up to the league week count so
// weeks stay in lockstep. Lists are only ever extended.
func padWeeks(l *models.League) {
	weeks := l.WeekCount()
	for len(l.Courses) < weeks {
		l.Courses = append(l.Courses, "")
	}
	for i := range l.Players {
		p := &l.Players[i]
		for len(p.Scores) < weeks {
			p.Scores = append(p.Scores, "")
		}
		for len(p.Handicaps) < len(p.Scores) {
			p.Handicaps = append(p.Handicaps, models.Handicap{})
		}
	}
}

func weekIndex(l *models.League, week int) (int, error) {
	idx, ok := score.FromDisplay(week)
	if !ok || idx >= l.WeekCount() {
		return 0, fmt.Errorf("%w: week %d (league has %d weeks)", ErrInvalidWeek, week, l.WeekCount())
	}
	return idx, nil
}

// AddWeek opens a new week for every player and the course list at once
// and returns its 1-based number.
func (s *LeagueService) AddWeek(ctx context.Context) (int, error) {
	var week int
	_, err := s.edit(ctx, "add_week", func(l *models.League) error {
		l.Courses = append(l.Courses, "")
		for i := range l.Players {
			l.Players[i].Scores = append(l.Players[i].Scores, "")
			l.Players[i].Handicaps = append(l.Players[i].Handicaps, models.Handicap{})
		}
		week = score.ToDisplay(len(l.Courses) - 1)
		return nil
	})
	return week, err
}

// AddPlayer joins a new player with empty cells for every existing week.
func (s *LeagueService) AddPlayer(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	_, err := s.edit(ctx, "add_player", func(l *models.League) error {
		weeks := l.WeekCount()
		l.Players = append(l.Players, models.Player{
			Name:      name,
			Scores:    make([]models.Cell, weeks),
			Handicaps: make([]models.Handicap, weeks),
		})
		return nil
	})
	return err
}

// RecordScore stores a raw score cell for a 1-based week. A not-played
// mark also clears that week's stored handicap. It returns the matched
// player's full name.
func (s *LeagueService) RecordScore(ctx context.Context, week int, query string, cell models.Cell) (string, error) {
	cell = models.Cell(strings.TrimSpace(string(cell)))
	r := score.Classify(cell)
	if cell != "" && r.Kind == score.Missing {
		return "", fmt.Errorf("%w: %q", ErrInvalidScore, cell)
	}

	var name string
	_, err := s.edit(ctx, "record_score", func(l *models.League) error {
		idx, err := weekIndex(l, week)
		if err != nil {
			return err
		}
		i, err := findPlayer(l.Players, query)
		if err != nil {
			return err
		}

		p := &l.Players[i]
		name = p.Name
		p.Scores[idx] = cell
		if score.IsNotPlayedToken(cell) {
			p.Handicaps[idx] = models.Handicap{}
		}
		return nil
	})
	return name, err
}

// SetHandicap stores (or clears, when h is unset) a handicap by hand.
func (s *LeagueService) SetHandicap(ctx context.Context, week int, query string, h models.Handicap) (string, error) {
	if h.Set && h.Value < 0 {
		return "", fmt.Errorf("%w: handicap %d is negative", ErrInvalidScore, h.Value)
	}

	var name string
	_, err := s.edit(ctx, "set_handicap", func(l *models.League) error {
		idx, err := weekIndex(l, week)
		if err != nil {
			return err
		}
		i, err := findPlayer(l.Players, query)
		if err != nil {
			return err
		}
		name = l.Players[i].Name
		l.Players[i].Handicaps[idx] = h
		return nil
	})
	return name, err
}

func (s *LeagueService) SetCourse(ctx context.Context, week int, course string) error {
	_, err := s.edit(ctx, "set_course", func(l *models.League) error {
		idx, err := weekIndex(l, week)
		if err != nil {
			return err
		}
		l.Courses[idx] = strings.TrimSpace(course)
		return nil
	})
	return err
}

// RecomputeHandicaps fills every handicap gap the scores allow and reports
// how many weeks received a value. Stored handicaps are never changed.
func (s *LeagueService) RecomputeHandicaps(ctx context.Context) (int, error) {
	filled := 0
	_, err := s.edit(ctx, "recompute_handicaps", func(l *models.League) error {
		next := handicap.Recompute(l, s.opts)
		for i := range l.Players {
			before := l.Players[i].Handicaps
			for w, h := range next.Players[i].Handicaps {
				if h.Set && (w >= len(before) || !before[w].Set) {
					filled++
				}
			}
		}
		*l = *next
		return nil
	})
	return filled, err
}

// GetHistory lists the most recent saved versions when the store keeps them.
func (s *LeagueService) GetHistory(ctx context.Context, limit int) (string, error) {
	h, ok := s.store.(Historian)
	if !ok {
		return "", ErrNoHistory
	}
	versions, err := h.History(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("error fetching history: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("🗂 Saved versions\n\n")
	for _, v := range versions {
		sb.WriteString(fmt.Sprintf("#%d %s %s\n", v.ID, v.CreatedAt.Format("2006-01-02 15:04"), v.Version))
	}
	if len(versions) == 0 {
		sb.WriteString("Nothing saved yet.")
	}
	return sb.String(), nil
}
