package models

import (
	"slices"
	"time"
)

// League is an immutable snapshot of the league: every player's weekly
// cells plus the course played each week. Edits produce a new snapshot
// with a fresh Version.
type League struct {
	Version   string    `json:"version,omitempty"`
	Players   []Player  `json:"players" validate:"unique=Name,dive"`
	Courses   []string  `json:"courses"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// WeekCount is the number of weeks the league has opened, taken from the
// longest score list or the course list.
func (l *League) WeekCount() int {
	n := len(l.Courses)
	for _, p := range l.Players {
		n = max(n, len(p.Scores))
	}
	return n
}

// Course returns the course label for a 0-based week, or "" when none is set.
func (l *League) Course(idx int) string {
	if idx < 0 || idx >= len(l.Courses) {
		return ""
	}
	return l.Courses[idx]
}

func (l *League) Clone() *League {
	c := &League{
		Version:   l.Version,
		Players:   make([]Player, len(l.Players)),
		Courses:   slices.Clone(l.Courses),
		UpdatedAt: l.UpdatedAt,
	}
	if c.Courses == nil {
		c.Courses = []string{}
	}
	for i, p := range l.Players {
		c.Players[i] = p.Clone()
	}
	return c
}

type Player struct {
	Name      string     `json:"name" validate:"required,notblank"`
	Scores    []Cell     `json:"scores"`
	Handicaps []Handicap `json:"handicaps"`
}

func (p Player) Clone() Player {
	c := Player{
		Name:      p.Name,
		Scores:    slices.Clone(p.Scores),
		Handicaps: slices.Clone(p.Handicaps),
	}
	if c.Scores == nil {
		c.Scores = []Cell{}
	}
	if c.Handicaps == nil {
		c.Handicaps = []Handicap{}
	}
	return c
}

// Score returns the cell for a 0-based week. Weeks past the end of the
// list read as an empty cell.
func (p Player) Score(idx int) Cell {
	if idx < 0 || idx >= len(p.Scores) {
		return ""
	}
	return p.Scores[idx]
}

// HandicapAt returns the stored handicap for a 0-based week, unset when
// the list is shorter.
func (p Player) HandicapAt(idx int) Handicap {
	if idx < 0 || idx >= len(p.Handicaps) {
		return Handicap{}
	}
	return p.Handicaps[idx]
}

// LatestHandicap is the most recent week holding a stored handicap.
func (p Player) LatestHandicap() Handicap {
	for i := len(p.Handicaps) - 1; i >= 0; i-- {
		if p.Handicaps[i].Set {
			return p.Handicaps[i]
		}
	}
	return Handicap{}
}

type Summary struct {
	Week    int    `json:"week" validate:"gte=1"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WeekResult is one week of a ranked player's card. Week is 1-based.
type WeekResult struct {
	Week   int  `json:"week"`
	Played bool `json:"played"`
	Raw    int  `json:"raw,omitempty"`
	Net    int  `json:"net,omitempty"`
}

type RankedPlayer struct {
	Rank     int          `json:"rank"`
	Name     string       `json:"name"`
	Handicap int          `json:"handicap"`
	TotalRaw int          `json:"totalRaw"`
	TotalNet int          `json:"totalNet"`
	HasDNP   bool         `json:"hasDNP"`
	Weeks    []WeekResult `json:"perWeek"`
}

type Award struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Awards holds the weekly Low-Man and High-Man. Both are nil when nobody
// posted a valid score that week.
type Awards struct {
	Week int    `json:"week"`
	Low  *Award `json:"low"`
	High *Award `json:"high"`
}

type Standings struct {
	Week       int            `json:"week"`
	CourseWeek int            `json:"courseWeek,omitempty"`
	Course     string         `json:"course,omitempty"`
	Players    []RankedPlayer `json:"players"`
	Awards     Awards         `json:"awards"`
}

// SnapshotInfo describes one stored version of the league.
type SnapshotInfo struct {
	ID        int64     `json:"id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}
