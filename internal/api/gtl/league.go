// Package gtl reads the league data the public leaderboard site publishes.
// It is a read-only source: the bot can mirror the site but not edit it.
package gtl

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarshaarawi/golfbot/internal/models"
)

var ErrReadOnly = errors.New("remote league is read-only")

const (
	playersEndpoint   = "/data/players.json"
	summariesEndpoint = "/data/summaries.json"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) LoadLeague(ctx context.Context) (*models.League, error) {
	league := &models.League{Players: []models.Player{}, Courses: []string{}}
	if err := a.client.Get(ctx, playersEndpoint, nil, league); err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	if league.Players == nil {
		league.Players = []models.Player{}
	}
	if league.Courses == nil {
		league.Courses = []string{}
	}
	return league, nil
}

// LoadSummaries treats a missing summaries.json as no summaries, like the
// admin page does.
func (a *API) LoadSummaries(ctx context.Context) ([]models.Summary, error) {
	var file models.SummariesFile
	err := a.client.Get(ctx, summariesEndpoint, nil, &file)
	if errors.Is(err, errNotFound) {
		return []models.Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching summaries: %w", err)
	}
	if file.Summaries == nil {
		return []models.Summary{}, nil
	}
	return file.Summaries, nil
}

func (a *API) SaveLeague(context.Context, *models.League) error {
	return ErrReadOnly
}

func (a *API) SaveSummaries(context.Context, []models.Summary) error {
	return ErrReadOnly
}
