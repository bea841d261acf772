package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/pipeline"
)

// Message is the envelope pushed to subscribed dashboard clients
type Message struct {
	Type      string              `json:"type"`
	Payload   pipeline.RunSummary `json:"payload"`
	Timestamp time.Time           `json:"timestamp"`
}

// MessageTypeRunSummary announces a completed settlement run
const MessageTypeRunSummary = "run_summary"

// Hub maintains the set of active clients and broadcasts run summaries to
// them after each pipeline run
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan pipeline.RunSummary
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan pipeline.RunSummary, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	fmt.Println("✓ Hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case summary := <-h.broadcast:
			h.broadcastSummary(summary)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a run summary for all connected clients
func (h *Hub) Broadcast(summary pipeline.RunSummary) {
	select {
	case h.broadcast <- summary:
	default:
		fmt.Println("⚠️  Broadcast buffer full, dropping run summary")
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	fmt.Printf("client %s connected (total: %d)\n", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		fmt.Printf("client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

func (h *Hub) broadcastSummary(summary pipeline.RunSummary) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	msg := Message{
		Type:      MessageTypeRunSummary,
		Payload:   summary,
		Timestamp: time.Now(),
	}

	for _, c := range clients {
		select {
		case c.Send <- msg:
		default:
			// Slow client; drop the message rather than block the hub
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	fmt.Println("✓ Hub stopped")
}
