package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Cell is a raw score cell as the admin entered it: a number, a not-played
// token such as "DNP", or empty. The text is kept verbatim; interpretation
// belongs to the score package.
type Cell string

func ScoreCell(n int) Cell {
	return Cell(strconv.Itoa(n))
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(strings.TrimSpace(s))
	default:
		*c = Cell(data)
	}
	return nil
}

// MarshalJSON writes numeric cells back as JSON numbers and everything
// else as strings, the shape players.json has always used.
// Integral decimals such as "52.0" are written as 52.
func (c Cell) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(c))
	if n, err := strconv.Atoi(s); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && math.Abs(v) <= maxIntegralCell {
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	}
	return json.Marshal(s)
}

// maxIntegralCell is the largest magnitude written back as a JSON number.
const maxIntegralCell = 1 << 53

// Handicap is a stored weekly handicap. The zero value is unset.
type Handicap struct {
	Value int
	Set   bool
}

func HandicapOf(n int) Handicap {
	return Handicap{Value: n, Set: true}
}

// maxStoredHandicap bounds what a stored handicap may hold so rounding
// never overflows int.
const maxStoredHandicap = math.MaxInt32

// UnmarshalJSON accepts numbers, numeric strings, "" and null. Anything
// negative, non-numeric or past maxStoredHandicap loads as unset.
func (h *Handicap) UnmarshalJSON(data []byte) error {
	*h = Handicap{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxStoredHandicap {
		return nil
	}
	*h = HandicapOf(int(math.Floor(v + 0.5)))
	return nil
}

func (h Handicap) MarshalJSON() ([]byte, error) {
	if !h.Set {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(h.Value)), nil
}

func (h Handicap) String() string {
	if !h.Set {
		return "—"
	}
	return strconv.Itoa(h.Value)
}

// UnmarshalJSON also reads the older single "handicap" field, copying it
// across every week when no per-week list exists.
func (p *Player) UnmarshalJSON(data []byte) error {
	type playerAlias Player
	var raw struct {
		playerAlias
		Legacy *Handicap `json:"handicap"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Player(raw.playerAlias)
	if p.Scores == nil {
		p.Scores = []Cell{}
	}
	if p.Handicaps == nil {
		p.Handicaps = make([]Handicap, len(p.Scores))
		if raw.Legacy != nil && raw.Legacy.Set {
			for i := range p.Handicaps {
				p.Handicaps[i] = *raw.Legacy
			}
		}
	}
	return nil
}

// SummariesFile is the envelope of summaries.json.
type SummariesFile struct {
	Summaries []Summary `json:"summaries"`
}
