package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/deepgram/shopfront/internal/infrastructure/redis"
	"github.com/deepgram/shopfront/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Store keeps the authoritative copy of a session's claims. The signed
// cookie only identifies the session; locale and peek state live here.
type Store interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

// newStore prefers redis and falls back to process memory when redis is
// absent or unreachable.
func newStore(redisService *redis.Service) Store {
	if redisService == nil {
		return newMemoryStore(time.Now)
	}
	if err := redisService.Ping(context.Background()); err != nil {
		logger.Warn(logger.SERVICE, "Redis unavailable, sessions kept in memory: %v", err)
		return newMemoryStore(time.Now)
	}
	return &redisStore{redis: redisService}
}

type redisStore struct {
	redis *redis.Service
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *redisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(sessionID), string(data), cookieLifetime)
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := s.redis.Get(ctx, sessionKey(sessionID))
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}

	claims := &SessionClaims{}
	if err := json.Unmarshal([]byte(data), claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Delete(ctx, sessionKey(sessionID))
}

type memoryEntry struct {
	claims  SessionClaims
	expires time.Time
}

// memoryStore copies claims in and out so callers never share a pointer
// with the stored value. Entries expire with the cookie.
type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{now: now, entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) Set(_ context.Context, sessionID string, claims *SessionClaims) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{claims: *claims, expires: s.now().Add(cookieLifetime)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, sessionID string) (*SessionClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	claims := entry.claims
	return &claims, nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
