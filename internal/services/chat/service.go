package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/metrics"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/google/uuid"
)

// Conversation is a backend-side chat that retains its own history.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

// Provider is one concrete assistant backend.
type Provider interface {
	Name() string
	NewConversation(ctx context.Context, instruction string) (Conversation, error)
	// Synthesize returns raw PCM16 mono audio at config.SpeechSampleRate.
	Synthesize(ctx context.Context, text string, locale config.Locale) ([]byte, error)
	// CompleteJSON returns a single JSON object answering prompt.
	CompleteJSON(ctx context.Context, instruction, prompt string) (string, error)
}

// Session is the handle for one backend conversation bound to a locale and
// catalog snapshot. It is never reused across locales.
type Session struct {
	id      string
	locale  config.Locale
	catalog *catalog.Catalog

	mu   sync.Mutex
	conv Conversation
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Locale() config.Locale {
	return s.locale
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

type SearchResult struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

// Service is the assistant backend client.
type Service struct {
	provider Provider
	timeout  time.Duration
}

// NewService wraps provider. A nil provider yields a client for which every
// request is unavailable.
func NewService(provider Provider) *Service {
	if provider == nil {
		logger.Warn(logger.CHAT, "No assistant backend configured - using offline fallbacks")
	} else {
		logger.Info(logger.CHAT, "Assistant backend: %s", provider.Name())
	}
	return &Service{provider: provider, timeout: config.GetBackendTimeout()}
}

func (s *Service) Available() bool {
	return s.provider != nil
}

func (s *Service) providerName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

func (s *Service) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.BackendRequests.WithLabelValues(s.providerName(), op, status).Observe(time.Since(start).Seconds())
}

// NewSession opens a conversation with the instruction for locale and cat
// baked in. Without a provider the session is an offline handle.
func (s *Service) NewSession(ctx context.Context, locale config.Locale, cat *catalog.Catalog) (*Session, error) {
	session := &Session{
		id:      uuid.New().String(),
		locale:  locale,
		catalog: cat,
	}
	if s.provider == nil {
		return session, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conv, err := s.provider.NewConversation(ctx, AssistantPrompt(locale, cat).String())
	if err != nil {
		return nil, &BackendError{Op: "session", Err: err}
	}
	session.conv = conv

	logger.Debug(logger.CHAT, "Opened session %s for %s", session.id, locale.Name)
	return session, nil
}

// Converse sends one user turn on session.
func (s *Service) Converse(ctx context.Context, session *Session, text string) (string, error) {
	if s.provider == nil || session == nil || session.conv == nil {
		return "", ErrBackendUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session.mu.Lock()
	defer session.mu.Unlock()

	start := time.Now()
	reply, err := session.conv.Send(ctx, text)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply")
	}
	s.observe("converse", start, err)
	if err != nil {
		return "", &BackendError{Op: "converse", Err: err}
	}
	return strings.TrimSpace(reply), nil
}

// SynthesizeSpeech returns base64 PCM16 mono audio, or "" when speech is
// unavailable or fails.
func (s *Service) SynthesizeSpeech(ctx context.Context, text, language string) string {
	if s.provider == nil || strings.TrimSpace(text) == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	pcm, err := s.provider.Synthesize(ctx, stripEmphasis(text), config.LookupLocale(language))
	s.observe("speech", start, err)
	if err != nil {
		logger.Warn(logger.CHAT, "Speech synthesis failed: %v", err)
		return ""
	}
	if len(pcm) < 2 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(pcm)
}

// MatchSearch asks the backend to rank catalog products for query. Any
// failure yields an empty result.
func (s *Service) MatchSearch(ctx context.Context, query string, cat *catalog.Catalog, language string) SearchResult {
	empty := SearchResult{IDs: []string{}}
	if s.provider == nil || cat == nil || cat.Len() == 0 {
		return empty
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(struct {
		Query    string                     `json:"query"`
		Products []catalog.ProjectedProduct `json:"products"`
	}{Query: query, Products: cat.Projection()})
	if err != nil {
		return empty
	}

	start := time.Now()
	raw, err := s.provider.CompleteJSON(ctx, SearchPrompt(config.LookupLocale(language)), string(payload))
	if err == nil {
		var result SearchResult
		result, err = parseSearchResult(raw, cat)
		if err == nil {
			s.observe("search", start, nil)
			return result
		}
		err = &BackendError{Op: "search", Err: err}
	}
	s.observe("search", start, err)
	logger.Warn(logger.CHAT, "Search match failed: %v", err)
	return empty
}

// parseSearchResult coerces a backend JSON answer into a SearchResult with
// only known, distinct ids in backend order.
func parseSearchResult(raw string, cat *catalog.Catalog) (SearchResult, error) {
	var decoded struct {
		IDs    []string `json:"ids"`
		Reason string   `json:"reason"`
	}
	if err := json.Unmarshal([]byte(trimFence(raw)), &decoded); err != nil {
		return SearchResult{}, fmt.Errorf("unexpected search response: %w", err)
	}

	ids := []string{}
	seen := make(map[string]bool)
	for _, id := range decoded.IDs {
		id = strings.TrimSpace(id)
		if seen[id] || !cat.Contains(id) {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return SearchResult{IDs: ids}, nil
	}
	return SearchResult{IDs: ids, Reason: strings.TrimSpace(decoded.Reason)}, nil
}

func trimFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
