// Package web serves the league as JSON for the public leaderboard page.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omarshaarawi/golfbot/internal/service"
)

type Server struct {
	leagueService *service.LeagueService
}

func NewServer(leagueService *service.LeagueService) *Server {
	return &Server{leagueService: leagueService}
}

// Header is the two lines above the leaderboard table.
type Header struct {
	Week       int    `json:"week"`
	CourseWeek int    `json:"courseWeek,omitempty"`
	Course     string `json:"course,omitempty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withLogging)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/league", s.handleLeague)
		r.Get("/standings", s.handleStandings)
		r.Get("/awards", s.handleAwards)
		r.Get("/header", s.handleHeader)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLeague(w http.ResponseWriter, r *http.Request) {
	league, err := s.leagueService.League(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, league)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r, "awards_week")
	if !ok {
		return
	}
	st, err := s.leagueService.Standings(r.Context(), week)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleAwards(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r, "week")
	if !ok {
		return
	}
	awards, err := s.leagueService.Awards(r.Context(), week)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, awards)
}

func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	st, err := s.leagueService.Standings(r.Context(), 0)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, Header{Week: st.Week, CourseWeek: st.CourseWeek, Course: st.Course})
}

// weekParam reads an optional 1-based week query parameter. Absent means 0.
func weekParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 1 {
		errorJSON(w, http.StatusBadRequest, name+" must be a week number starting at 1")
		return 0, false
	}
	return week, true
}

func (s *Server) serviceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidWeek) {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("Error serving league", "error", err)
	errorJSON(w, http.StatusInternalServerError, "league data unavailable")
}
