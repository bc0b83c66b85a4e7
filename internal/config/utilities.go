package config

import (
	"os"
	"strconv"
	"time"

	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/joho/godotenv"
)

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		logger.Debug(logger.CONFIG, "No .env file loaded: %v", err)
		return
	}
	logger.Info(logger.CONFIG, "Loaded environment from .env")
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" && defaultValue == "" {
		logger.Debug(logger.CONFIG, "Empty value and default for environment variable: %s", key)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func parseEnvInt(key string, defaultValue int) int {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return parsed
}

func parseEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		logger.Warn(logger.CONFIG, "Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return parsed
}
