// Package notifications tracks open WebSocket connections and delivers
// messages to them.
package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"threadline/internal/middleware"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Max total connections accepted before registration is refused.
const maxTotalConns = 10000

// Hub is the connection broadcaster: it owns the set of currently open
// WebSocket connections. It is constructed once at process start and
// injected into the transport layer. Handlers only ever reply to the
// calling connection via Client.TrySend; BroadcastAll fans out to every
// connection and is reserved for the flag-gated live feed.
type Hub struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*Client
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*Client),
	}
}

// Register tracks a new connection and returns its Client, or an error if
// the connection limit is reached.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn)
	h.conns[client.ID] = client
	return client, nil
}

// UnregisterClient removes a connection from the hub. Safe to call more
// than once for the same client.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, client.ID)
}

// Len reports the number of currently tracked connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send delivers a message to a single tracked connection. It reports false
// when the connection is no longer tracked.
func (h *Hub) Send(id uuid.UUID, message []byte) bool {
	h.mu.RLock()
	client, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	client.TrySend(message)
	return true
}

// BroadcastAll sends a message to every tracked connection. Only the
// flag-gated live feed fan-out uses it; handlers otherwise reply only to
// their caller.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.conns {
		client.TrySend(message)
	}
}

// Shutdown gracefully closes all tracked connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.conns {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			middleware.Logger.Warn("failed to write close message",
				slog.String("client_id", id.String()), slog.String("error", err.Error()))
		}
		if err := client.Conn.Close(); err != nil {
			middleware.Logger.Warn("failed to close websocket",
				slog.String("client_id", id.String()), slog.String("error", err.Error()))
		}
	}
	h.conns = make(map[uuid.UUID]*Client)

	return nil
}
