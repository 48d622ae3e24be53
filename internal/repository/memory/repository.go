package memory

import (
	"sync"
	"time"

	"github.com/omarshaarawi/golfbot/internal/models"
)

// Repository caches the latest league snapshot and weekly summaries. The
// snapshot is replaced wholesale, never edited in place.
type Repository struct {
	league      *models.League
	summaries   []models.Summary
	lastUpdated time.Time
	mu          sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveLeague(league *models.League, summaries []models.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.league = league
	r.summaries = summaries
	r.lastUpdated = time.Now()
}

func (r *Repository) GetLeague() (*models.League, []models.Summary, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.league, r.summaries, r.lastUpdated
}
