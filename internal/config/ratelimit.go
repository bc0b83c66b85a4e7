package config

import (
	"strings"
	"time"

	"github.com/deepgram/shopfront/pkg/logger"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

// Requests per minute per client IP for each limited route group.
// RATELIMIT_<GROUP> overrides a default.
var rateLimitDefaults = map[string]int{
	"global":       1000,
	"session":      30,
	"search":       60,
	"cart":         240,
	"assistant_ws": 20,
}

func GetRateLimitConfig(key string) RateLimitConfig {
	hits, ok := rateLimitDefaults[key]
	if !ok {
		logger.Warn(logger.CONFIG, "No rate limit config found for key: %s", key)
		return RateLimitConfig{}
	}

	return RateLimitConfig{
		Enabled: GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true",
		MaxHits: parseEnvInt("RATELIMIT_"+strings.ToUpper(key), hits),
		Window:  time.Minute,
	}
}
