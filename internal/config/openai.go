package config

import "github.com/deepgram/shopfront/pkg/logger"

// GetOpenAIKey returns the current OpenAI key, or "" when the assistant
// should run without an OpenAI backend.
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_KEY", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "OPENAI_KEY not set - OpenAI backend disabled")
	}
	return value
}

// GetOpenAIBaseURL allows pointing the client at a compatible gateway.
func GetOpenAIBaseURL() string {
	return GetEnvOrDefault("OPENAI_BASE_URL", "")
}

func GetOpenAIChatModel() string {
	return GetEnvOrDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini")
}

func GetOpenAISpeechVoice() string {
	return GetEnvOrDefault("OPENAI_SPEECH_VOICE", "alloy")
}
