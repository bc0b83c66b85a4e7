package config

import "github.com/deepgram/shopfront/pkg/logger"

// GetGeminiKey returns the Gemini API key, or "" when unset.
func GetGeminiKey() string {
	value := GetEnvOrDefault("GEMINI_API_KEY", "")
	if value == "" {
		logger.Debug(logger.CONFIG, "GEMINI_API_KEY not set - Gemini backend disabled")
	}
	return value
}

func GetGeminiChatModel() string {
	return GetEnvOrDefault("GEMINI_CHAT_MODEL", "gemini-2.5-flash")
}

func GetGeminiSpeechModel() string {
	return GetEnvOrDefault("GEMINI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts")
}

func GetGeminiSpeechVoice() string {
	return GetEnvOrDefault("GEMINI_SPEECH_VOICE", "Kore")
}
