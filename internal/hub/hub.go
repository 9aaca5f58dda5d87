// Package hub keeps the set of connected realtime clients and fans messages out to them.
package hub

import (
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/metrics"
)

// Hub is the registry of open client connections. Delivery is best effort: a message
// reaches the clients open at call time, and nothing is queued for clients that join later.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.RealtimeClients.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("realtime client connected")
}

func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.markClosed()
	metrics.RealtimeClients.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("realtime client disconnected")
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast serializes msg once and hands the same bytes to every open client.
// It never blocks on a slow client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Str("type", msg.Type).Msg("failed to encode realtime message")
		return
	}
	metrics.Broadcasts.WithLabelValues(msg.Type).Inc()

	for _, c := range h.snapshot() {
		if !c.enqueue(data) {
			logging.Debug().Uint64("client_id", c.id).Str("type", msg.Type).Msg("realtime message skipped")
		}
	}
}

// snapshot returns the clients ordered by id so fan-out order is stable.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// CloseAll disconnects every client; used on shutdown.
func (h *Hub) CloseAll() {
	for _, c := range h.snapshot() {
		c.Close()
		h.Remove(c)
	}
}
