package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"github.com/omarshaarawi/golfbot/internal/handicap"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

type Config struct {
	TelegramBot TelegramBot
	Store       Store
	Handicap    Handicap
	Schedule    Schedule
	HTTP        HTTP
}

type TelegramBot struct {
	Token        string  `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID       int64   `envconfig:"CHAT_ID" required:"true"`
	AdminChatIDs []int64 `envconfig:"ADMIN_CHAT_IDS"`
}

type Store struct {
	Backend      string        `envconfig:"STORE_BACKEND" default:"file"`
	DataDir      string        `envconfig:"DATA_DIR" default:"data"`
	DatabasePath string        `envconfig:"DATABASE_PATH" default:"golfbot.db"`
	RemoteURL    string        `envconfig:"REMOTE_URL"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"1h"`
}

type Handicap struct {
	Par    float64 `envconfig:"HANDICAP_PAR" default:"45"`
	Factor float64 `envconfig:"HANDICAP_FACTOR" default:"0.8"`
}

func (h Handicap) Options() handicap.Options {
	return handicap.Options{ParStandard: h.Par, AdjustmentFactor: h.Factor}
}

type Schedule struct {
	Timezone      string `envconfig:"TIMEZONE" default:"America/New_York"`
	StandingsCron string `envconfig:"STANDINGS_CRON" default:"30 7 * * 3"`
	AwardsCron    string `envconfig:"AWARDS_CRON" default:"30 7 * * 2"`
}

type HTTP struct {
	Addr string `envconfig:"HTTP_ADDR" default:":80"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	case BackendRemote:
		if c.Store.RemoteURL == "" {
			return fmt.Errorf("REMOTE_URL is required for the %s backend", BackendRemote)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Handicap.Factor <= 0 {
		return fmt.Errorf("HANDICAP_FACTOR must be positive, got %v", c.Handicap.Factor)
	}

	for name, expr := range map[string]string{
		"STANDINGS_CRON": c.Schedule.StandingsCron,
		"AWARDS_CRON":    c.Schedule.AwardsCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, expr, err)
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Schedule.Timezone, err)
	}
	return nil
}

func (t TelegramBot) IsAdmin(chatID int64) bool {
	return slices.Contains(t.AdminChatIDs, chatID)
}
