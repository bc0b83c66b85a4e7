package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Service is a namespaced key/value client. Keys passed to it are stored
// under the configured prefix.
type Service struct {
	client *redis.Client
	prefix string
}

// NewService connects using REDIS_URL, which may be a redis:// URL or a bare
// host:port. It returns nil when Redis is unconfigured or unreachable.
func NewService() *Service {
	url := config.GetRedisURL()
	if url == "" {
		log.Warn().Msg("Redis URL not configured - stores will be kept in memory")
		return nil
	}

	opts, err := clientOptions(url, config.GetRedisPassword())
	if err != nil {
		log.Error().Err(err).Msg("Invalid Redis URL")
		return nil
	}

	s := NewServiceWithClient(redis.NewClient(opts), config.GetRedisKeyPrefix())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		log.Error().
			Err(err).
			Str("addr", opts.Addr).
			Msg("Failed to establish Redis connection")
		_ = s.Close()
		return nil
	}
	return s
}

// NewServiceWithClient wraps an existing client.
func NewServiceWithClient(client *redis.Client, prefix string) *Service {
	return &Service{client: client, prefix: prefix}
}

func clientOptions(url, password string) (*redis.Options, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if opts.Password == "" {
			opts.Password = password
		}
		return opts, nil
	}
	return &redis.Options{Addr: url, Password: password}, nil
}

func (s *Service) key(k string) string {
	return s.prefix + k
}

// Set stores a value with an optional expiration
func (s *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, expiration).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Dur("expiration", expiration).
			Msg("Redis SET failed")
		return err
	}
	return nil
}

// Get retrieves a value. A missing key returns redis.Nil.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil && err != redis.Nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis GET failed")
		return "", err
	}
	return val, err
}

// Delete removes a key
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
