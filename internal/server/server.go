package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/hub"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/pipeline"
)

// RunStore reads archived run summaries
type RunStore interface {
	RecentRuns(limit int) ([]pipeline.RunSummary, error)
}

// Server is the read-only HTTP surface the dashboard consumes. It serves
// the latest pipeline result; it never triggers runs itself.
type Server struct {
	mu     sync.RWMutex
	latest *pipeline.Result

	runs RunStore
	hub  *hub.Hub
}

// NewServer creates a server backed by the run archive and broadcast hub
func NewServer(runs RunStore, h *hub.Hub) *Server {
	return &Server{runs: runs, hub: h}
}

// SetResult publishes a new pipeline result to API consumers
func (s *Server) SetResult(res *pipeline.Result) {
	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
}

func (s *Server) result() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Router builds the chi router with middleware and routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.HealthCheck)
	r.Get("/api/v1/summary/markets", s.MarketSummaries)
	r.Get("/api/v1/summary/teams", s.TeamSummaries)
	r.Get("/api/v1/bankroll", s.Bankroll)
	r.Get("/api/v1/weekly", s.WeeklyROI)
	r.Get("/api/v1/bets", s.Bets)
	r.Get("/api/v1/openclose", s.OpenCloses)
	r.Get("/api/v1/runs", s.Runs)
	r.Get("/ws", s.Subscribe)

	return r
}
