package chat

import (
	"github.com/deepgram/shopfront/internal/config"
	geminiinfra "github.com/deepgram/shopfront/internal/infrastructure/gemini"
	openaiinfra "github.com/deepgram/shopfront/internal/infrastructure/openai"
)

// SelectProvider picks the backend named by choice among the configured
// services. "auto" prefers OpenAI, then Gemini. It returns nil when the
// requested backend is not configured.
func SelectProvider(choice string, oa *openaiinfra.Service, gm *geminiinfra.Service) Provider {
	switch choice {
	case config.ProviderNone:
		return nil
	case config.ProviderOpenAI:
		if oa != nil {
			return NewOpenAIProvider(oa)
		}
		return nil
	case config.ProviderGemini:
		if gm != nil {
			return NewGeminiProvider(gm)
		}
		return nil
	}

	if oa != nil {
		return NewOpenAIProvider(oa)
	}
	if gm != nil {
		return NewGeminiProvider(gm)
	}
	return nil
}
