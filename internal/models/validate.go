package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var ErrInvalidLeague = errors.New("invalid league")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate rejects snapshots the engine cannot work with: players without a
// name and duplicate names. Messy score cells are fine and pass through.
func (l *League) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLeague, err)
	}

	seen := make(map[string]bool, len(l.Players))
	for _, p := range l.Players {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if seen[key] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidLeague, p.Name)
		}
		seen[key] = true
	}
	return nil
}

func (s Summary) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid summary: %w", err)
	}
	return nil
}
