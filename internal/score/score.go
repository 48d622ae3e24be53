// Package score decides what a raw score cell means. Every reader of score
// cells (handicaps, totals, sorting, display) goes through Classify so edge
// values such as 0 or 99 are treated the same way everywhere.
package score

import (
	"math"
	"strconv"
	"strings"

	"github.com/omarshaarawi/golfbot/internal/models"
)

type Kind int

const (
	Missing Kind = iota
	DidNotPlay
	Valid
)

func (k Kind) String() string {
	switch k {
	case DidNotPlay:
		return "DNP"
	case Valid:
		return "valid"
	default:
		return "missing"
	}
}

const (
	MinScore = 1
	MaxScore = 98

	// Sentinel used for unplayed rounds in older seasons.
	unplayedSentinel = 99
)

var notPlayedTokens = map[string]bool{
	"x":   true,
	"ns":  true,
	"dnp": true,
	"—":   true,
	"–":   true,
	"-":   true,
	"â€”": true,
}

type Result struct {
	Kind  Kind
	Value int
}

func (r Result) Valid() bool {
	return r.Kind == Valid
}

func Classify(c models.Cell) Result {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return Result{Kind: Missing}
	}
	if notPlayedTokens[strings.ToLower(s)] {
		return Result{Kind: DidNotPlay}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{Kind: Missing}
	}
	if v == 0 || v == unplayedSentinel {
		return Result{Kind: DidNotPlay}
	}
	if v != math.Trunc(v) || v < MinScore || v > MaxScore {
		return Result{Kind: Missing}
	}
	return Result{Kind: Valid, Value: int(v)}
}

// Display renders a cell for people: the score when valid, "DNP" for an
// explicit not-played mark and a dash otherwise.
func Display(c models.Cell) string {
	r := Classify(c)
	switch r.Kind {
	case Valid:
		return strconv.Itoa(r.Value)
	case DidNotPlay:
		return "DNP"
	default:
		return "—"
	}
}

// IsNotPlayedToken reports whether the admin typed an explicit not-played
// mark rather than a score or nothing.
func IsNotPlayedToken(c models.Cell) bool {
	return Classify(c).Kind == DidNotPlay
}
