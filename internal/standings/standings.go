// Package standings turns a league snapshot into ranked net standings and
// weekly awards. Everything here is a pure function of its input.
package standings

import (
	"sort"
	"strings"

	"github.com/omarshaarawi/golfbot/internal/handicap"
	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/score"
)

// Compute builds the full leaderboard. awardsWeek is 1-based; zero or a
// negative value means the standings week.
func Compute(l *models.League, awardsWeek int) models.Standings {
	week := LatestCompletedWeek(l)

	awardsIdx, ok := score.FromDisplay(awardsWeek)
	if !ok {
		awardsIdx, _ = score.FromDisplay(week)
	}

	st := models.Standings{
		Week:    week,
		Players: Rank(l.Players, week),
		Awards:  WeeklyAwards(l.Players, awardsIdx),
	}
	if cw, ok := NextCourseWeek(l); ok {
		idx, _ := score.FromDisplay(cw)
		st.CourseWeek = cw
		st.Course = l.Course(idx)
	}
	return st
}

// Rank scores the first weeks weeks of every player and orders them:
// players with a missed week after everyone else, then lowest total net,
// then lowest latest handicap, then name.
func Rank(players []models.Player, weeks int) []models.RankedPlayer {
	ranked := make([]models.RankedPlayer, len(players))
	for i, p := range players {
		ranked[i] = rankPlayer(p, weeks)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.HasDNP != b.HasDNP {
			return !a.HasDNP
		}
		if a.TotalNet != b.TotalNet {
			return a.TotalNet < b.TotalNet
		}
		if a.Handicap != b.Handicap {
			return a.Handicap < b.Handicap
		}
		return a.Name < b.Name
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func rankPlayer(p models.Player, weeks int) models.RankedPlayer {
	rp := models.RankedPlayer{
		Name:     p.Name,
		Handicap: p.LatestHandicap().Value,
		Weeks:    make([]models.WeekResult, weeks),
	}

	for w := 0; w < weeks; w++ {
		wr := models.WeekResult{Week: score.ToDisplay(w)}
		r := score.Classify(p.Score(w))
		if !r.Valid() {
			rp.HasDNP = true
			rp.Weeks[w] = wr
			continue
		}

		wr.Played = true
		wr.Raw = r.Value
		wr.Net = r.Value - ApplicableHandicap(p, w)
		rp.TotalRaw += wr.Raw
		rp.TotalNet += wr.Net
		rp.Weeks[w] = wr
	}
	return rp
}

// ApplicableHandicap is the handicap subtracted from week w's raw score.
// The first three weeks all use the week-3 handicap once it is known; after
// that a week is played off the previous week's handicap. Unset counts as 0.
func ApplicableHandicap(p models.Player, w int) int {
	idx := w - 1
	if w <= handicap.FirstWeek {
		idx = handicap.FirstWeek
	}
	return p.HandicapAt(idx).Value
}

// WeeklyAwards finds the lowest and highest valid raw score of a 0-based
// week. On a tie the player listed first keeps the award.
func WeeklyAwards(players []models.Player, idx int) models.Awards {
	awards := models.Awards{Week: score.ToDisplay(idx)}
	for _, p := range players {
		r := score.Classify(p.Score(idx))
		if !r.Valid() {
			continue
		}
		if awards.Low == nil || r.Value < awards.Low.Score {
			awards.Low = &models.Award{Name: p.Name, Score: r.Value}
		}
		if awards.High == nil || r.Value > awards.High.Score {
			awards.High = &models.Award{Name: p.Name, Score: r.Value}
		}
	}
	return awards
}

// LatestCompletedWeek is the last 1-based week in which at least one player
// has a valid score, or 1 when nobody has played.
func LatestCompletedWeek(l *models.League) int {
	for w := l.WeekCount() - 1; w >= 0; w-- {
		for _, p := range l.Players {
			if score.Classify(p.Score(w)).Valid() {
				return score.ToDisplay(w)
			}
		}
	}
	return 1
}

// NextCourseWeek is the first 1-based week that has a course assigned but
// is still missing a valid score from at least one player.
func NextCourseWeek(l *models.League) (int, bool) {
	for w, course := range l.Courses {
		if strings.TrimSpace(course) == "" {
			continue
		}
		for _, p := range l.Players {
			if !score.Classify(p.Score(w)).Valid() {
				return score.ToDisplay(w), true
			}
		}
	}
	return 0, false
}

type SortKey string

const (
	ByNet   SortKey = "net"
	ByTotal SortKey = "total"
)

// Reorder returns a copy of ranked sorted by the given key with ranks
// renumbered. ByNet keeps the standings order.
func Reorder(ranked []models.RankedPlayer, by SortKey) []models.RankedPlayer {
	out := make([]models.RankedPlayer, len(ranked))
	copy(out, ranked)
	if by != ByTotal {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasDNP != out[j].HasDNP {
			return !out[i].HasDNP
		}
		if out[i].TotalRaw != out[j].TotalRaw {
			return out[i].TotalRaw < out[j].TotalRaw
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
