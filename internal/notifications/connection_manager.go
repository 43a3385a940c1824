package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pawgram/internal/middleware"
)

const (
	defaultOnlineSetKey   = "ws:online_users"
	defaultLastSeenPrefix = "ws:last_seen:"
	defaultLastSeenTTL    = 90 * time.Second
)

// ConnectionManagerConfig controls Redis presence behavior.
type ConnectionManagerConfig struct {
	OnlineSetKey      string
	LastSeenKeyPrefix string
	LastSeenTTL       time.Duration
}

// ConnectionManager mirrors connection presence into Redis so fan-out can
// see followers connected to other instances. Without Redis it degrades to
// local-only counts.
type ConnectionManager struct {
	rdb *redis.Client

	mu              sync.RWMutex
	localConnCounts map[uint]int

	onlineSetKey      string
	lastSeenKeyPrefix string
	lastSeenTTL       time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewConnectionManager creates a presence tracker over the given Redis client,
// which may be nil.
func NewConnectionManager(rdb *redis.Client, cfg ConnectionManagerConfig) *ConnectionManager {
	m := &ConnectionManager{
		rdb:               rdb,
		localConnCounts:   make(map[uint]int),
		onlineSetKey:      defaultOnlineSetKey,
		lastSeenKeyPrefix: defaultLastSeenPrefix,
		lastSeenTTL:       defaultLastSeenTTL,
		stopCh:            make(chan struct{}),
	}
	if cfg.OnlineSetKey != "" {
		m.onlineSetKey = cfg.OnlineSetKey
	}
	if cfg.LastSeenKeyPrefix != "" {
		m.lastSeenKeyPrefix = cfg.LastSeenKeyPrefix
	}
	if cfg.LastSeenTTL > 0 {
		m.lastSeenTTL = cfg.LastSeenTTL
	}
	return m
}

// Register records one new connection for userID.
func (m *ConnectionManager) Register(ctx context.Context, userID uint) {
	m.mu.Lock()
	m.localConnCounts[userID]++
	m.mu.Unlock()
	m.Touch(ctx, userID)
}

// Unregister records one closed connection. The Redis mirror is cleared only
// when the last local connection goes away; its TTL covers crashed instances.
func (m *ConnectionManager) Unregister(ctx context.Context, userID uint) {
	m.mu.Lock()
	last := false
	if n, ok := m.localConnCounts[userID]; ok {
		n--
		if n > 0 {
			m.localConnCounts[userID] = n
		} else {
			delete(m.localConnCounts, userID)
			last = true
		}
	}
	m.mu.Unlock()

	if last && m.rdb != nil {
		uid := strconv.FormatUint(uint64(userID), 10)
		if err := m.rdb.SRem(ctx, m.onlineSetKey, uid).Err(); err != nil {
			middleware.Logger.Warn("presence SREM failed", "user_id", userID, "error", err)
		}
		if err := m.rdb.Del(ctx, m.lastSeenKey(userID)).Err(); err != nil {
			middleware.Logger.Warn("presence DEL failed", "user_id", userID, "error", err)
		}
	}
}

// Touch refreshes the Redis presence entry for userID.
func (m *ConnectionManager) Touch(ctx context.Context, userID uint) {
	if m.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := m.rdb.SAdd(ctx, m.onlineSetKey, uid).Err(); err != nil {
		middleware.Logger.Warn("presence SADD failed", "user_id", userID, "error", err)
	}
	if err := m.rdb.SetEx(ctx, m.lastSeenKey(userID),
		strconv.FormatInt(time.Now().Unix(), 10), m.lastSeenTTL).Err(); err != nil {
		middleware.Logger.Warn("presence SETEX failed", "user_id", userID, "error", err)
	}
}

// IsOnline reports whether userID has a live connection on any instance.
func (m *ConnectionManager) IsOnline(ctx context.Context, userID uint) bool {
	m.mu.RLock()
	if m.localConnCounts[userID] > 0 {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	if m.rdb == nil {
		return false
	}
	exists, err := m.rdb.Exists(ctx, m.lastSeenKey(userID)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// OnlineUserIDs returns online user IDs from Redis with stale entries
// filtered out, unioned with local connections.
func (m *ConnectionManager) OnlineUserIDs(ctx context.Context) []uint {
	local := m.localUserIDs()
	if m.rdb == nil {
		return local
	}

	members, err := m.rdb.SMembers(ctx, m.onlineSetKey).Result()
	if err != nil {
		return local
	}

	seen := make(map[uint]struct{}, len(members)+len(local))
	result := make([]uint, 0, len(members)+len(local))
	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := m.rdb.Exists(ctx, m.lastSeenKey(userID)).Result()
		if existsErr != nil {
			continue
		}
		if exists == 0 {
			_ = m.rdb.SRem(ctx, m.onlineSetKey, raw).Err()
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		result = append(result, userID)
	}
	for _, userID := range local {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		result = append(result, userID)
	}
	return result
}

// Stop shuts the manager down.
func (m *ConnectionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

func (m *ConnectionManager) localUserIDs() []uint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint, 0, len(m.localConnCounts))
	for userID, count := range m.localConnCounts {
		if count > 0 {
			ids = append(ids, userID)
		}
	}
	return ids
}

func (m *ConnectionManager) lastSeenKey(userID uint) string {
	return m.lastSeenKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}
