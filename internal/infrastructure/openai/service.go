package openai

import (
	"sync"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

// NewService returns nil when no OpenAI key is configured.
func NewService() *Service {
	logger.Info(logger.SERVICE, "Initialising OpenAI service")
	key := config.GetOpenAIKey()

	if key == "" {
		logger.Warn(logger.SERVICE, "OpenAI service not configured - OPENAI_KEY missing")
		return nil
	}

	return NewServiceWithBaseURL(key, config.GetOpenAIBaseURL())
}

// NewServiceWithBaseURL builds a client against a specific endpoint; an empty
// baseURL keeps the library default.
func NewServiceWithBaseURL(key, baseURL string) *Service {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Service{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
