// Package notifications delivers realtime events to connected clients and
// fans out new posts to followers.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"

	"pawgram/internal/middleware"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

// Hub maps userID -> connected Clients. Every authenticated actor gets one
// addressable channel; sending to a user with no connections is a no-op.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
	presence   *ConnectionManager
}

// NewHub creates a Hub. The optional Redis client backs cross-instance
// presence tracking.
func NewHub(redisClients ...*redis.Client) *Hub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}

	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		presence: NewConnectionManager(rdb, ConnectionManagerConfig{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register adds a connection for userID. Returns the Client, or an error
// when a connection limit is exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) {
		if h.presence != nil {
			h.presence.Touch(context.Background(), uid)
		}
	}

	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()
	h.mu.Unlock()

	if h.presence != nil {
		h.presence.Register(context.Background(), userID)
	}

	return client, nil
}

// UnregisterClient drops a client from the registry.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			middleware.ActiveWebSockets.Dec()
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed && h.presence != nil {
		h.presence.Unregister(context.Background(), client.UserID)
	}
}

// Send delivers message to every connection userID currently holds. A user
// with no connections receives nothing; that is not an error.
func (h *Hub) Send(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// SendAll delivers message to every connected client.
func (h *Hub) SendAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// IsConnected reports whether a user currently has at least one connection.
// With Redis-backed presence this covers other instances too.
func (h *Hub) IsConnected(userID uint) bool {
	if h.presence != nil {
		return h.presence.IsOnline(context.Background(), userID)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[userID]
	return ok && len(clients) > 0
}

// StartWiring subscribes this hub to the notifier's Redis channels so events
// published by other instances reach locally connected clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.SendAll([]byte(payload))
			return
		}
		if !strings.HasPrefix(channel, userChannelPrefix) {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, userChannelPrefix+"%d", &userID); err != nil {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Send(userID, []byte(payload))
	})
}

// Shutdown closes every websocket connection gracefully.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	if h.presence != nil {
		h.presence.Stop()
	}

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Warn("failed to write close message", "user_id", userID, "error", err)
			}
			if err := client.Conn.Close(); err != nil {
				middleware.Logger.Warn("failed to close websocket", "user_id", userID, "error", err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	close(h.done)
	return nil
}
