package config

import (
	"strings"
	"time"
)

const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// SpeechSampleRate is the fixed rate of synthesized speech: PCM16 mono.
const SpeechSampleRate = 24000

// GetAssistantProvider returns which backend powers the assistant.
// "auto" picks the first configured provider.
func GetAssistantProvider() string {
	value := strings.ToLower(GetEnvOrDefault("ASSISTANT_PROVIDER", ProviderAuto))
	switch value {
	case ProviderOpenAI, ProviderGemini, ProviderNone:
		return value
	default:
		return ProviderAuto
	}
}

// GetPeekDelay is how long after mount the greeting bubble appears.
func GetPeekDelay() time.Duration {
	return parseEnvDuration("ASSISTANT_PEEK_DELAY", 3*time.Second)
}

// GetBackendTimeout bounds a single backend round-trip.
func GetBackendTimeout() time.Duration {
	return parseEnvDuration("ASSISTANT_BACKEND_TIMEOUT", 30*time.Second)
}

func GetListenAddr() string {
	return GetEnvOrDefault("LISTEN_ADDR", ":8080")
}

// GetCatalogPath returns a JSON catalog override; empty means the built-in catalog.
func GetCatalogPath() string {
	return GetEnvOrDefault("CATALOG_PATH", "")
}
