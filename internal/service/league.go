package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/omarshaarawi/golfbot/internal/handicap"
	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/repository/memory"
	"github.com/omarshaarawi/golfbot/internal/score"
	"github.com/omarshaarawi/golfbot/internal/standings"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidWeek   = errors.New("invalid week")
	ErrInvalidScore  = errors.New("invalid score")
	ErrNoHistory     = errors.New("store keeps no version history")
)

// Store loads and persists the league snapshot and weekly summaries.
type Store interface {
	LoadLeague(ctx context.Context) (*models.League, error)
	SaveLeague(ctx context.Context, league *models.League) error
	LoadSummaries(ctx context.Context) ([]models.Summary, error)
	SaveSummaries(ctx context.Context, summaries []models.Summary) error
}

// Historian is implemented by stores that keep every snapshot version.
type Historian interface {
	History(ctx context.Context, limit int) ([]models.SnapshotInfo, error)
}

type LeagueService struct {
	store Store
	repo  *memory.Repository
	opts  handicap.Options
	ttl   time.Duration
}

func NewLeagueService(store Store, repo *memory.Repository, opts handicap.Options, ttl time.Duration) *LeagueService {
	return &LeagueService{store: store, repo: repo, opts: opts, ttl: ttl}
}

func (s *LeagueService) getLeague(ctx context.Context) (*models.League, []models.Summary, error) {
	league, summaries, updated := s.repo.GetLeague()
	if league == nil || time.Since(updated) > s.ttl {
		return s.load(ctx)
	}
	return league, summaries, nil
}

// Refresh reloads the snapshot from the store, bypassing the cache.
func (s *LeagueService) Refresh(ctx context.Context) error {
	_, _, err := s.load(ctx)
	return err
}

func (s *LeagueService) load(ctx context.Context) (*models.League, []models.Summary, error) {
	league, err := s.store.LoadLeague(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading league: %w", err)
	}
	if err := league.Validate(); err != nil {
		return nil, nil, fmt.Errorf("error loading league: %w", err)
	}

	summaries, err := s.store.LoadSummaries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading summaries: %w", err)
	}

	s.repo.SaveLeague(league, summaries)
	slog.Info("Loaded league", "version", league.Version, "players", len(league.Players), "weeks", league.WeekCount())
	return league, summaries, nil
}

// League returns the current snapshot. Callers must not modify it.
func (s *LeagueService) League(ctx context.Context) (*models.League, error) {
	league, _, err := s.getLeague(ctx)
	return league, err
}

// Standings ranks the current snapshot. awardsWeek is 1-based; 0 means the
// standings week.
func (s *LeagueService) Standings(ctx context.Context, awardsWeek int) (models.Standings, error) {
	if awardsWeek < 0 {
		return models.Standings{}, fmt.Errorf("%w: %d", ErrInvalidWeek, awardsWeek)
	}
	league, _, err := s.getLeague(ctx)
	if err != nil {
		return models.Standings{}, err
	}
	return standings.Compute(league, awardsWeek), nil
}

func (s *LeagueService) Awards(ctx context.Context, week int) (models.Awards, error) {
	st, err := s.Standings(ctx, week)
	if err != nil {
		return models.Awards{}, err
	}
	return st.Awards, nil
}

func (s *LeagueService) GetStandings(ctx context.Context) (string, error) {
	st, err := s.Standings(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("error fetching standings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *Standings After Week %d*\n\n", st.Week))
	if len(st.Players) == 0 {
		sb.WriteString("No players yet.")
		return sb.String(), nil
	}

	for _, p := range st.Players {
		sb.WriteString(fmt.Sprintf("%d. *%s*", p.Rank, escape(p.Name)))
		if p.HasDNP {
			sb.WriteString(" (DNP)")
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("   Net: %d | Total: %d | HC: %d\n", p.TotalNet, p.TotalRaw, p.Handicap))
		sb.WriteString(fmt.Sprintf("   %s\n\n", weeklyNetLine(p)))
	}

	return sb.String(), nil
}

func weeklyNetLine(p models.RankedPlayer) string {
	parts := make([]string, len(p.Weeks))
	for i, w := range p.Weeks {
		if !w.Played {
			parts[i] = fmt.Sprintf("W%d DNP", w.Week)
			continue
		}
		parts[i] = fmt.Sprintf("W%d %d", w.Week, w.Net)
	}
	return strings.Join(parts, " · ")
}

// GetLeaderboard is the compact table from the league web page, sorted by
// net (default) or total strokes.
func (s *LeagueService) GetLeaderboard(ctx context.Context, sortBy string) (string, error) {
	key := standings.SortKey(strings.ToLower(strings.TrimSpace(sortBy)))
	switch key {
	case "":
		key = standings.ByNet
	case standings.ByNet, standings.ByTotal:
	default:
		return "", fmt.Errorf("unknown sort %q, use net or total", sortBy)
	}

	st, err := s.Standings(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("error fetching standings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⛳ *Week %d Leaderboard* (by %s)\n\n", st.Week, key))
	for _, p := range standings.Reorder(st.Players, key) {
		sb.WriteString(fmt.Sprintf("%d. %s — HC %d, Total %d, Net %d\n",
			p.Rank, escape(p.Name), p.Handicap, p.TotalRaw, p.TotalNet))
	}
	return sb.String(), nil
}

// GetWeeklyAwards reports Low-Man and High-Man for a 1-based week, or the
// standings week when week is 0.
func (s *LeagueService) GetWeeklyAwards(ctx context.Context, week int) (string, error) {
	awards, err := s.Awards(ctx, week)
	if err != nil {
		return "", fmt.Errorf("error fetching awards: %w", err)
	}
	return formatAwards(awards), nil
}

func formatAwards(awards models.Awards) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎖 *Week %d Awards*\n", awards.Week))
	if awards.Low == nil || awards.High == nil {
		sb.WriteString("No scores posted for this week yet.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("🏆 LOW-MAN: %s (%d)\n", escape(awards.Low.Name), awards.Low.Score))
	sb.WriteString(fmt.Sprintf("🤡 HIGH-MAN: %s (%d)\n", escape(awards.High.Name), awards.High.Score))
	return sb.String()
}

func (s *LeagueService) GetHandicaps(ctx context.Context) (string, error) {
	league, _, err := s.getLeague(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching handicaps: %w", err)
	}

	players := make([]models.Player, len(league.Players))
	copy(players, league.Players)
	sort.Slice(players, func(i, j int) bool {
		return strings.ToLower(players[i].Name) < strings.ToLower(players[j].Name)
	})

	var sb strings.Builder
	sb.WriteString("📐 *Current Handicaps*\n\n")
	for _, p := range players {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", escape(p.Name), p.LatestHandicap()))
	}
	if len(players) == 0 {
		sb.WriteString("No players yet.")
	}
	return sb.String(), nil
}

// GetPlayer shows one player's card. The name is matched loosely so
// "staug" finds "CJ Staugler".
func (s *LeagueService) GetPlayer(ctx context.Context, query string) (string, error) {
	league, _, err := s.getLeague(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching player: %w", err)
	}

	i, err := findPlayer(league.Players, query)
	if err != nil {
		return fmt.Sprintf("🔍 No player found matching '%s'.", query), nil
	}
	p := league.Players[i]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", escape(p.Name)))
	sb.WriteString("━━━━━━━━━━━━━━━━\n")

	weeks := league.WeekCount()
	for w := 0; w < weeks; w++ {
		r := score.Classify(p.Score(w))
		line := fmt.Sprintf("Week %d: %s", score.ToDisplay(w), score.Display(p.Score(w)))
		if r.Valid() {
			line += fmt.Sprintf(" (net %d)", r.Value-standings.ApplicableHandicap(p, w))
		}
		if h := p.HandicapAt(w); h.Set {
			line += fmt.Sprintf(" · HC %d", h.Value)
		}
		if course := league.Course(w); course != "" {
			line += " · " + escape(course)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString(fmt.Sprintf("\nCurrent handicap: %s", p.LatestHandicap()))
	return sb.String(), nil
}

// GetCourse is the page header: the standings week and the next course
// still waiting on scores.
func (s *LeagueService) GetCourse(ctx context.Context) (string, error) {
	st, err := s.Standings(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("error fetching course: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Week %d Leaderboard*\n", st.Week))
	if st.CourseWeek == 0 {
		sb.WriteString("No upcoming course set.")
		return sb.String(), nil
	}
	sb.WriteString(fmt.Sprintf("📍 Week %d Course: %s", st.CourseWeek, escape(st.Course)))
	return sb.String(), nil
}

func findPlayer(players []models.Player, query string) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, ErrUnknownPlayer
	}

	names := make([]string, len(players))
	for i, p := range players {
		if strings.EqualFold(p.Name, query) {
			return i, nil
		}
		names[i] = p.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, query)
	}
	sort.Sort(ranks)
	return ranks[0].OriginalIndex, nil
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
