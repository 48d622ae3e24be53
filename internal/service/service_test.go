package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/omarshaarawi/golfbot/internal/handicap"
	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/repository/memory"
	"github.com/omarshaarawi/golfbot/internal/repository/sqlite"
)

type fakeStore struct {
	league    *models.League
	summaries []models.Summary
	loads     int
	saves     int
	saveErr   error
}

func (f *fakeStore) LoadLeague(_ context.Context) (*models.League, error) {
	f.loads++
	return f.league, nil
}

func (f *fakeStore) SaveLeague(_ context.Context, league *models.League) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.league = league
	return nil
}

func (f *fakeStore) LoadSummaries(_ context.Context) ([]models.Summary, error) {
	return f.summaries, nil
}

func (f *fakeStore) SaveSummaries(_ context.Context, summaries []models.Summary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.summaries = summaries
	return nil
}

func testLeague() *models.League {
	return &models.League{
		Version: "v1",
		Players: []models.Player{
			{
				Name:      "Ann Lee",
				Scores:    []models.Cell{"50", "52", "54", ""},
				Handicaps: []models.Handicap{{}, {}, {}, models.HandicapOf(5)},
			},
			{
				Name:      "Bob Stone",
				Scores:    []models.Cell{"48", "DNP", "50"},
				Handicaps: []models.Handicap{{}, {}, {}},
			},
		},
		Courses: []string{"North", "South", "East", "West"},
	}
}

func newTestService(t *testing.T) (*LeagueService, *fakeStore) {
	t.Helper()
	store := &fakeStore{league: testLeague()}
	svc := NewLeagueService(store, memory.NewRepository(), handicap.DefaultOptions(), time.Hour)
	return svc, store
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestLeagueService_CachesSnapshot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.League(ctx); err != nil {
			t.Fatalf("League() error = %v", err)
		}
	}
	if store.loads != 1 {
		t.Errorf("loads = %d, want 1", store.loads)
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if store.loads != 2 {
		t.Errorf("loads after Refresh = %d, want 2", store.loads)
	}
}

func TestLeagueService_RejectsInvalidSnapshot(t *testing.T) {
	store := &fakeStore{league: &models.League{Players: []models.Player{{Name: "Ann"}, {Name: "ANN"}}}}
	svc := NewLeagueService(store, memory.NewRepository(), handicap.DefaultOptions(), time.Hour)

	_, err := svc.League(context.Background())
	if !errors.Is(err, models.ErrInvalidLeague) {
		t.Errorf("League() error = %v, want ErrInvalidLeague", err)
	}
}

func TestLeagueService_GetStandings(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.GetStandings(context.Background())
	if err != nil {
		t.Fatalf("GetStandings() error = %v", err)
	}
	assertContains(t, got,
		"Standings After Week 3",
		"1. *Ann Lee*\n",
		"Net: 156 | Total: 156 | HC: 5",
		"2. *Bob Stone* (DNP)",
		"W2 DNP",
	)
}

func TestLeagueService_GetStandingsEmpty(t *testing.T) {
	store := &fakeStore{league: &models.League{}}
	svc := NewLeagueService(store, memory.NewRepository(), handicap.DefaultOptions(), time.Hour)

	got, err := svc.GetStandings(context.Background())
	if err != nil {
		t.Fatalf("GetStandings() error = %v", err)
	}
	assertContains(t, got, "Standings After Week 1", "No players yet.")
}

func TestLeagueService_Standings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	st, err := svc.Standings(ctx, 1)
	if err != nil {
		t.Fatalf("Standings() error = %v", err)
	}
	if st.Week != 3 || st.Awards.Week != 1 {
		t.Errorf("Week = %d, awards week = %d", st.Week, st.Awards.Week)
	}

	if _, err := svc.Standings(ctx, -1); !errors.Is(err, ErrInvalidWeek) {
		t.Errorf("Standings(-1) error = %v, want ErrInvalidWeek", err)
	}
}

func TestLeagueService_GetLeaderboard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.GetLeaderboard(ctx, "TOTAL")
	if err != nil {
		t.Fatalf("GetLeaderboard() error = %v", err)
	}
	assertContains(t, got, "(by total)", "1. Ann Lee — HC 5, Total 156, Net 156", "2. Bob Stone")

	if _, err := svc.GetLeaderboard(ctx, "gross"); err == nil {
		t.Error("GetLeaderboard(gross) error = nil, want error")
	}
}

func TestLeagueService_GetWeeklyAwards(t *testing.T) {
	tests := []struct {
		name string
		week int
		want []string
	}{
		{
			name: "explicit week",
			week: 1,
			want: []string{"Week 1 Awards", "LOW-MAN: Bob Stone (48)", "HIGH-MAN: Ann Lee (50)"},
		},
		{
			name: "single score",
			week: 2,
			want: []string{"LOW-MAN: Ann Lee (52)", "HIGH-MAN: Ann Lee (52)"},
		},
		{
			name: "standings week",
			week: 0,
			want: []string{"Week 3 Awards", "LOW-MAN: Bob Stone (50)", "HIGH-MAN: Ann Lee (54)"},
		},
		{
			name: "no scores",
			week: 4,
			want: []string{"Week 4 Awards", "No scores posted for this week yet."},
		},
	}

	svc, _ := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetWeeklyAwards(context.Background(), tt.week)
			if err != nil {
				t.Fatalf("GetWeeklyAwards() error = %v", err)
			}
			assertContains(t, got, tt.want...)
		})
	}
}

func TestLeagueService_GetHandicaps(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.GetHandicaps(context.Background())
	if err != nil {
		t.Fatalf("GetHandicaps() error = %v", err)
	}
	assertContains(t, got, "• Ann Lee: 5", "• Bob Stone: —")
}

func TestLeagueService_GetPlayer(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "exact", query: "bob stone", want: []string{"*Bob Stone*", "Week 2: DNP", "Week 1: 48 (net 48)"}},
		{name: "fuzzy", query: "ston", want: []string{"*Bob Stone*"}},
		{name: "course and handicap", query: "ann", want: []string{"*Ann Lee*", "Week 4: — · HC 5 · West", "Current handicap: 5"}},
		{name: "no match", query: "zzz", want: []string{"No player found matching 'zzz'"}},
	}

	svc, _ := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetPlayer(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("GetPlayer() error = %v", err)
			}
			assertContains(t, got, tt.want...)
		})
	}
}

func TestLeagueService_GetCourse(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.GetCourse(context.Background())
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	assertContains(t, got, "Week 3 Leaderboard", "Week 2 Course: South")
}

func TestLeagueService_RecordScore(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	name, err := svc.RecordScore(ctx, 4, "bob", " 47 ")
	if err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}
	if name != "Bob Stone" {
		t.Errorf("name = %q, want Bob Stone", name)
	}

	saved := store.league
	if saved.Version == "" || saved.Version == "v1" {
		t.Errorf("Version = %q, want a new version", saved.Version)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
	bob := saved.Players[1]
	if len(bob.Scores) != 4 || bob.Scores[3] != "47" {
		t.Errorf("Bob scores = %q", bob.Scores)
	}
	if len(bob.Handicaps) != 4 {
		t.Errorf("Bob handicaps not padded: %+v", bob.Handicaps)
	}

	cached, err := svc.League(ctx)
	if err != nil {
		t.Fatalf("League() error = %v", err)
	}
	if cached.Version != saved.Version {
		t.Errorf("cached version = %q, want %q", cached.Version, saved.Version)
	}
	if got := testLeague().Players[1].Scores; len(got) != 3 {
		t.Errorf("fixture changed: %q", got)
	}
}

func TestLeagueService_RecordScoreNotPlayedClearsHandicap(t *testing.T) {
	svc, store := newTestService(t)

	if _, err := svc.RecordScore(context.Background(), 4, "Ann Lee", "dnp"); err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}
	ann := store.league.Players[0]
	if ann.Scores[3] != "dnp" || ann.Handicaps[3].Set {
		t.Errorf("Ann week 4 = %q / %+v, want dnp with no handicap", ann.Scores[3], ann.Handicaps[3])
	}
}

func TestLeagueService_RecordScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		week    int
		player  string
		cell    models.Cell
		wantErr error
	}{
		{name: "bad score", week: 1, player: "Ann Lee", cell: "abc", wantErr: ErrInvalidScore},
		{name: "out of range", week: 1, player: "Ann Lee", cell: "150", wantErr: ErrInvalidScore},
		{name: "week zero", week: 0, player: "Ann Lee", cell: "50", wantErr: ErrInvalidWeek},
		{name: "week not opened", week: 9, player: "Ann Lee", cell: "50", wantErr: ErrInvalidWeek},
		{name: "unknown player", week: 1, player: "zzz", cell: "50", wantErr: ErrUnknownPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			_, err := svc.RecordScore(context.Background(), tt.week, tt.player, tt.cell)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordScore() error = %v, want %v", err, tt.wantErr)
			}
			if store.saves != 0 {
				t.Errorf("saves = %d, want 0", store.saves)
			}
		})
	}
}

func TestLeagueService_SaveFailureKeepsCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	store.saveErr = errors.New("disk full")

	if _, err := svc.RecordScore(ctx, 4, "Ann Lee", "49"); err == nil {
		t.Fatal("RecordScore() error = nil, want error")
	}
	l, err := svc.League(ctx)
	if err != nil {
		t.Fatalf("League() error = %v", err)
	}
	if l.Version != "v1" || l.Players[0].Scores[3] != "" {
		t.Errorf("cache changed after failed save: version %q, score %q", l.Version, l.Players[0].Scores[3])
	}
}

func TestLeagueService_SetHandicap(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetHandicap(ctx, 3, "bob", models.HandicapOf(4)); err != nil {
		t.Fatalf("SetHandicap() error = %v", err)
	}
	if got := store.league.Players[1].Handicaps[2]; got != models.HandicapOf(4) {
		t.Errorf("Bob week 3 handicap = %+v, want 4", got)
	}

	if _, err := svc.SetHandicap(ctx, 3, "bob", models.Handicap{}); err != nil {
		t.Fatalf("SetHandicap(unset) error = %v", err)
	}
	if got := store.league.Players[1].Handicaps[2]; got.Set {
		t.Errorf("Bob week 3 handicap = %+v, want unset", got)
	}

	if _, err := svc.SetHandicap(ctx, 3, "bob", models.Handicap{Value: -2, Set: true}); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("SetHandicap(-2) error = %v, want ErrInvalidScore", err)
	}
}

func TestLeagueService_SetCourse(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.SetCourse(ctx, 2, "  Pine Valley "); err != nil {
		t.Fatalf("SetCourse() error = %v", err)
	}
	if got := store.league.Courses[1]; got != "Pine Valley" {
		t.Errorf("course = %q", got)
	}
	if err := svc.SetCourse(ctx, 7, "Nowhere"); !errors.Is(err, ErrInvalidWeek) {
		t.Errorf("SetCourse(7) error = %v, want ErrInvalidWeek", err)
	}
}

func TestLeagueService_AddWeek(t *testing.T) {
	svc, store := newTestService(t)

	week, err := svc.AddWeek(context.Background())
	if err != nil {
		t.Fatalf("AddWeek() error = %v", err)
	}
	if week != 5 {
		t.Errorf("AddWeek() = %d, want 5", week)
	}
	if len(store.league.Courses) != 5 {
		t.Errorf("courses = %q", store.league.Courses)
	}
	for _, p := range store.league.Players {
		if len(p.Scores) != 5 || len(p.Handicaps) != 5 {
			t.Errorf("%s has %d scores, %d handicaps, want 5", p.Name, len(p.Scores), len(p.Handicaps))
		}
	}
}

func TestLeagueService_AddPlayer(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.AddPlayer(ctx, " Cy Young "); err != nil {
		t.Fatalf("AddPlayer() error = %v", err)
	}
	cy := store.league.Players[2]
	if cy.Name != "Cy Young" || len(cy.Scores) != 4 || len(cy.Handicaps) != 4 {
		t.Errorf("new player = %+v", cy)
	}

	if err := svc.AddPlayer(ctx, "ann lee"); !errors.Is(err, models.ErrInvalidLeague) {
		t.Errorf("AddPlayer(duplicate) error = %v, want ErrInvalidLeague", err)
	}
	if err := svc.AddPlayer(ctx, "  "); !errors.Is(err, models.ErrInvalidLeague) {
		t.Errorf("AddPlayer(blank) error = %v, want ErrInvalidLeague", err)
	}
}

func TestLeagueService_RecomputeHandicaps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	filled, err := svc.RecomputeHandicaps(ctx)
	if err != nil {
		t.Fatalf("RecomputeHandicaps() error = %v", err)
	}
	if filled != 1 {
		t.Errorf("filled = %d, want 1", filled)
	}

	ann := store.league.Players[0]
	if ann.Handicaps[2] != models.HandicapOf(6) {
		t.Errorf("Ann week 3 = %+v, want 6", ann.Handicaps[2])
	}
	if ann.Handicaps[3] != models.HandicapOf(5) {
		t.Errorf("Ann week 4 = %+v, stored value must be kept", ann.Handicaps[3])
	}

	filled, err = svc.RecomputeHandicaps(ctx)
	if err != nil {
		t.Fatalf("second RecomputeHandicaps() error = %v", err)
	}
	if filled != 0 {
		t.Errorf("second run filled = %d, want 0", filled)
	}
}

func TestLeagueService_Summaries(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	got, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	assertContains(t, got, "No weekly summary has been posted yet.")

	content := "<p>Great   round\nfor everyone.</p><ul><li>Ann birdied 3</li></ul>"
	if err := svc.SaveSummary(ctx, 1, "Opener", content); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	if err := svc.SaveSummary(ctx, 1, "Opening Night", content); err != nil {
		t.Fatalf("SaveSummary(replace) error = %v", err)
	}
	if len(store.summaries) != 1 {
		t.Fatalf("summaries = %+v, want one", store.summaries)
	}

	got, err = svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	assertContains(t, got,
		"📰 *Opening Night*",
		"Great round for everyone.\n\nAnn birdied 3",
		"Week 1 Awards",
		"LOW-MAN: Bob Stone (48)",
	)

	if err := svc.SaveSummary(ctx, 0, "Bad", ""); !errors.Is(err, ErrInvalidWeek) {
		t.Errorf("SaveSummary(0) error = %v, want ErrInvalidWeek", err)
	}
}

func TestLatestSummary(t *testing.T) {
	latest, ok := LatestSummary([]models.Summary{{Week: 2, Title: "b"}, {Week: 5, Title: "e"}, {Week: 3, Title: "c"}})
	if !ok || latest.Title != "e" {
		t.Errorf("LatestSummary() = %+v, %v", latest, ok)
	}
	if _, ok := LatestSummary(nil); ok {
		t.Error("LatestSummary(nil) ok = true")
	}
}

func TestSummaryText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Just   text", want: "Just text"},
		{in: "<p>One</p><p></p><p>Two</p>", want: "One\n\nTwo"},
		{in: "<div><b>Bold</b> move</div>", want: "Bold move"},
		{in: "Great round by everyone.<p>Bob shot 38.</p>", want: "Great round by everyone.\n\nBob shot 38."},
		{in: "Great week!<br><b>Bob</b> shot 38", want: "Great week!\nBob shot 38"},
		{in: "<ul><li><p>nested</p></li></ul>", want: "nested"},
		{in: "<ul><li>Ann 41</li><li>Bob 38</li></ul>", want: "Ann 41\n\nBob 38"},
	}
	for _, tt := range tests {
		if got := summaryText(tt.in); got != tt.want {
			t.Errorf("summaryText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLeagueService_GetHistory(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t)
	if _, err := svc.GetHistory(ctx, 5); !errors.Is(err, ErrNoHistory) {
		t.Errorf("GetHistory() on fake store error = %v, want ErrNoHistory", err)
	}

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := db.SaveLeague(ctx, testLeague()); err != nil {
		t.Fatalf("SaveLeague() error = %v", err)
	}

	svc = NewLeagueService(db, memory.NewRepository(), handicap.DefaultOptions(), time.Hour)
	if _, err := svc.AddWeek(ctx); err != nil {
		t.Fatalf("AddWeek() error = %v", err)
	}

	got, err := svc.GetHistory(ctx, 5)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	assertContains(t, got, "Saved versions", "#1 ", "v1", "#2 ")
}
