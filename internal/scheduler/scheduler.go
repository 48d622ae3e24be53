package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/omarshaarawi/golfbot/internal/config"
	"github.com/omarshaarawi/golfbot/internal/service"
)

const refreshInterval = time.Hour

type Scheduler struct {
	s             gocron.Scheduler
	cfg           config.Schedule
	leagueService *service.LeagueService
	sendMessage   func(string) error
}

func NewScheduler(cfg config.Schedule, leagueService *service.LeagueService, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", cfg.Timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:             s,
		cfg:           cfg,
		leagueService: leagueService,
		sendMessage:   sendMessage,
	}, nil
}

func (s *Scheduler) Start() error {
	var err error

	// Standings - Wednesday 7:30 by default
	_, err = s.s.NewJob(
		gocron.CronJob(s.cfg.StandingsCron, false),
		gocron.NewTask(s.sendStandings),
		gocron.WithName("standings"),
	)
	if err != nil {
		return fmt.Errorf("failed to create standings job: %w", err)
	}

	// Low-Man / High-Man - Tuesday 7:30 by default
	_, err = s.s.NewJob(
		gocron.CronJob(s.cfg.AwardsCron, false),
		gocron.NewTask(s.sendAwards),
		gocron.WithName("awards"),
	)
	if err != nil {
		return fmt.Errorf("failed to create awards job: %w", err)
	}

	// Pick up edits made outside the bot
	_, err = s.s.NewJob(
		gocron.DurationJob(refreshInterval),
		gocron.NewTask(s.refresh),
		gocron.WithName("refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) sendStandings() {
	standings, err := s.leagueService.GetStandings(context.Background())
	if err != nil {
		slog.Error("Failed to get standings", "error", err)
		return
	}
	s.send(standings)
}

func (s *Scheduler) sendAwards() {
	awards, err := s.leagueService.GetWeeklyAwards(context.Background(), 0)
	if err != nil {
		slog.Error("Failed to get weekly awards", "error", err)
		return
	}
	s.send(awards)
}

func (s *Scheduler) refresh() {
	if err := s.leagueService.Refresh(context.Background()); err != nil {
		slog.Error("Failed to refresh league", "error", err)
	}
}

func (s *Scheduler) send(text string) {
	if err := s.sendMessage(text); err != nil {
		slog.Error("Failed to post scheduled message", "error", err)
	}
}
