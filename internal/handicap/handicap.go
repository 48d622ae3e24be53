// Package handicap derives weekly handicaps from a rolling three-round
// window of raw scores.
//
// A handicap for week w (0-based) is
//
//	max(0, roundHalfUp((mean(scores[w-2..w]) - par) * factor))
//
// and exists only when all three rounds in the window are valid. Weeks 0
// and 1 never carry a handicap. A week that already holds a stored
// handicap keeps it: computing only fills gaps.
package handicap

import (
	"math"

	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/score"
)

const (
	DefaultParStandard      = 45.0
	DefaultAdjustmentFactor = 0.8

	// FirstWeek is the first 0-based week that can carry a handicap.
	FirstWeek  = 2
	windowSize = 3
)

type Options struct {
	ParStandard      float64
	AdjustmentFactor float64
}

func DefaultOptions() Options {
	return Options{
		ParStandard:      DefaultParStandard,
		AdjustmentFactor: DefaultAdjustmentFactor,
	}
}

// Compute returns the player's handicap list after filling every gap it
// can. The result covers at least weeks entries and is never shorter than
// the player's score or handicap lists. The player is not modified.
func Compute(p models.Player, weeks int, opts Options) []models.Handicap {
	n := max(len(p.Scores), len(p.Handicaps), weeks)
	out := make([]models.Handicap, n)
	copy(out, p.Handicaps)

	for w := range out {
		if w < FirstWeek {
			out[w] = models.Handicap{}
			continue
		}
		if settled(out[w]) {
			continue
		}
		out[w] = fromWindow(p, w, opts)
	}
	return out
}

// Recompute fills handicap gaps for every player and returns the result
// as a new snapshot. Every handicap list is extended to the league's week
// count first.
func Recompute(l *models.League, opts Options) *models.League {
	next := l.Clone()
	weeks := l.WeekCount()
	for i := range next.Players {
		next.Players[i].Handicaps = Compute(next.Players[i], weeks, opts)
	}
	return next
}

func settled(h models.Handicap) bool {
	return h.Set && h.Value >= 0
}

func fromWindow(p models.Player, w int, opts Options) models.Handicap {
	sum := 0
	for i := w - windowSize + 1; i <= w; i++ {
		r := score.Classify(p.Score(i))
		if !r.Valid() {
			return models.Handicap{}
		}
		sum += r.Value
	}

	average := float64(sum) / windowSize
	raw := (average - opts.ParStandard) * opts.AdjustmentFactor
	hc := math.Floor(raw + 0.5)
	if hc < 0 || math.IsNaN(hc) {
		hc = 0
	}
	return models.HandicapOf(int(hc))
}
