package gemini

import (
	"context"
	"sync"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

type Service struct {
	mu     sync.RWMutex
	client *genai.Client
}

// NewService returns nil when no Gemini key is configured or the client
// cannot be built.
func NewService(ctx context.Context) *Service {
	key := config.GetGeminiKey()
	if key == "" {
		log.Warn().Msg("Gemini API key not configured - service will be unavailable")
		return nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return nil
	}

	log.Info().Msg("Gemini client initialised")
	return &Service{client: client}
}

func (s *Service) GetClient() *genai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
