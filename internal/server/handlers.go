package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is read-only; any dashboard origin may subscribe
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HealthCheck returns service health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "nfl-workbench",
	})
}

// MarketSummaries returns per-market settlement records
func (s *Server) MarketSummaries(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}
	respondJSON(w, http.StatusOK, res.Markets)
}

// TeamSummaries returns per-picked-team settlement records
func (s *Server) TeamSummaries(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}
	respondJSON(w, http.StatusOK, res.Teams)
}

// Bankroll returns the bankroll curve
func (s *Server) Bankroll(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}
	respondJSON(w, http.StatusOK, res.Bankroll)
}

// WeeklyROI returns per-ISO-week return on stake
func (s *Server) WeeklyROI(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}
	respondJSON(w, http.StatusOK, res.Weekly)
}

// Bets returns settled bets, newest-dated first, bounded by ?limit
func (s *Server) Bets(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}

	limit := queryInt(r, "limit", 500)
	bets := res.Settled
	if len(bets) > limit {
		bets = bets[:limit]
	}
	respondJSON(w, http.StatusOK, bets)
}

// OpenCloses returns the derived open/close table
func (s *Server) OpenCloses(w http.ResponseWriter, r *http.Request) {
	res := s.result()
	if res == nil {
		respondError(w, http.StatusServiceUnavailable, "no settlement run completed yet")
		return
	}
	respondJSON(w, http.StatusOK, res.OpenCloses)
}

// Runs returns archived run summaries
func (s *Server) Runs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)

	runs, err := s.runs.RecentRuns(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("load runs: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

// Subscribe upgrades to a WebSocket and streams settlement-run summaries
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("[Server] websocket upgrade failed: %v\n", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), conn, s.hub)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Printf("[Server] encode response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
