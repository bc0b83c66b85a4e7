package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/connections"
	"github.com/deepgram/shopfront/internal/infrastructure/gemini"
	"github.com/deepgram/shopfront/internal/infrastructure/openai"
	"github.com/deepgram/shopfront/internal/infrastructure/redis"
	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/chat"
	"github.com/deepgram/shopfront/internal/services/search"
	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	catalog        *catalog.Catalog
	cartService    *cart.Service
	chatService    *chat.Service
	connections    *connections.Manager
	geminiService  *gemini.Service
	openAIService  *openai.Service
	redisService   *redis.Service
	searchService  *search.Service
	sessionService *session.Service
}

// InitializeServices initializes all required services. Only the catalog is
// mandatory; every backend falls back to an offline mode when unconfigured.
func InitializeServices(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	cat, err := loadCatalog()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load product catalog - required for every assistant operation")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	log.Info().Int("products", cat.Len()).Msg("Loaded product catalog")

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Bool("configured", redisService != nil).Msg("Initializing Redis service")

	// Initialize optional assistant backends
	openAIService := openai.NewService()
	geminiService := gemini.NewService(ctx)
	provider := chat.SelectProvider(config.GetAssistantProvider(), openAIService, geminiService)
	chatService := chat.NewService(provider)
	if provider == nil {
		log.Warn().Msg("No assistant backend configured - replies use offline fallbacks")
	} else {
		log.Info().Str("provider", provider.Name()).Msg("Initializing chat service")
	}

	searchService := search.NewService(chatService)
	sessionService := session.NewService(redisService)
	cartService := cart.NewService(redisService, cat)

	log.Info().Msg("All services initialized successfully")

	return &Services{
		catalog:        cat,
		cartService:    cartService,
		chatService:    chatService,
		connections:    connections.NewManager(connections.DefaultTimeouts),
		geminiService:  geminiService,
		openAIService:  openAIService,
		redisService:   redisService,
		searchService:  searchService,
		sessionService: sessionService,
	}, nil
}

// NewServices assembles services from already built parts. Used by tests and
// the terminal client.
func NewServices(cat *catalog.Catalog, chatService *chat.Service, sessionService *session.Service, cartService *cart.Service) *Services {
	return &Services{
		catalog:        cat,
		cartService:    cartService,
		chatService:    chatService,
		connections:    connections.NewManager(connections.DefaultTimeouts),
		searchService:  search.NewService(chatService),
		sessionService: sessionService,
	}
}

// WithOpenAI attaches an OpenAI client, which enables voice transcription on
// assistant sockets.
func (s *Services) WithOpenAI(svc *openai.Service) *Services {
	s.openAIService = svc
	return s
}

func loadCatalog() (*catalog.Catalog, error) {
	if path := config.GetCatalogPath(); path != "" {
		return catalog.Load(path)
	}
	return catalog.Default(), nil
}

// GetCatalog returns the shared product catalog
func (s *Services) GetCatalog() *catalog.Catalog {
	return s.catalog
}

// GetCartService returns the cart service
func (s *Services) GetCartService() *cart.Service {
	return s.cartService
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Service {
	return s.chatService
}

// GetConnectionManager returns the assistant socket registry
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connections
}

// GetOpenAIService returns the OpenAI service, or nil when unconfigured
func (s *Services) GetOpenAIService() *openai.Service {
	return s.openAIService
}

// GetSearchService returns the search service
func (s *Services) GetSearchService() *search.Service {
	return s.searchService
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// Close releases external connections.
func (s *Services) Close() {
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
