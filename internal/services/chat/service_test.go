package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/deepgram/shopfront/internal/config"
	openaiinfra "github.com/deepgram/shopfront/internal/infrastructure/openai"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Product{
		{ID: "vase", Name: "Vase", Category: "Decor", Description: "Glass vase", Price: 20},
		{ID: "mirror", Name: "Mirror", Category: "Decor", Description: "Wall mirror", Price: 60},
		{ID: "mug", Name: "Mug", Category: "Kitchen", Description: "Coffee mug", Price: 9},
	})
	require.NoError(t, err)
	return c
}

// MockProvider mocks a backend provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) NewConversation(ctx context.Context, instruction string) (Conversation, error) {
	args := m.Called(ctx, instruction)
	conv, _ := args.Get(0).(Conversation)
	return conv, args.Error(1)
}

func (m *MockProvider) Synthesize(ctx context.Context, text string, locale config.Locale) ([]byte, error) {
	args := m.Called(ctx, text, locale)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockProvider) CompleteJSON(ctx context.Context, instruction, prompt string) (string, error) {
	args := m.Called(ctx, instruction, prompt)
	return args.String(0), args.Error(1)
}

// fakeOpenAI serves chat completions and speech, recording each chat request.
type fakeOpenAI struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	replies  []string
	status   int
	speech   []byte
}

func (f *fakeOpenAI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}

		switch r.URL.Path {
		case "/v1/chat/completions":
			var req openai.ChatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			f.mu.Lock()
			f.requests = append(f.requests, req)
			reply := f.replies[0]
			if len(f.replies) > 1 {
				f.replies = f.replies[1:]
			}
			f.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				}},
			})
		case "/v1/audio/speech":
			var req openai.CreateSpeechRequest
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, openai.SpeechResponseFormatPcm, req.ResponseFormat)
			assert.NotContains(t, req.Input, "**")
			w.Header().Set("Content-Type", "audio/pcm")
			_, _ = w.Write(f.speech)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newOpenAIService(t *testing.T, fake *fakeOpenAI) *Service {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return NewService(NewOpenAIProvider(openaiinfra.NewServiceWithBaseURL("test-key", server.URL+"/v1")))
}

func TestConverseRetainsContext(t *testing.T) {
	fake := &fakeOpenAI{replies: []string{"Who is it for?", "Try the **Vase**."}}
	svc := newOpenAIService(t, fake)

	session, err := svc.NewSession(context.Background(), config.LookupLocale("es"), testCatalog(t))
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID())

	reply, err := svc.Converse(context.Background(), session, "gift ideas")
	require.NoError(t, err)
	assert.Equal(t, "Who is it for?", reply)

	reply, err = svc.Converse(context.Background(), session, "my sister, under $30")
	require.NoError(t, err)
	assert.Equal(t, "Try the **Vase**.", reply)

	require.Len(t, fake.requests, 2)
	second := fake.requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, second[0].Role)
	assert.Contains(t, second[0].Content, "Spanish")
	assert.Contains(t, second[0].Content, "Vase [vase]")
	assert.Equal(t, "gift ideas", second[1].Content)
	assert.Equal(t, "Who is it for?", second[2].Content)
	assert.Equal(t, "my sister, under $30", second[3].Content)
}

func TestConverseBackendError(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusInternalServerError}
	svc := newOpenAIService(t, fake)

	session, err := svc.NewSession(context.Background(), config.LookupLocale("en"), testCatalog(t))
	require.NoError(t, err)

	_, err = svc.Converse(context.Background(), session, "hello")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "converse", backendErr.Op)
}

func TestConverseWithoutProvider(t *testing.T) {
	svc := NewService(nil)
	assert.False(t, svc.Available())

	session, err := svc.NewSession(context.Background(), config.LookupLocale("en"), testCatalog(t))
	require.NoError(t, err)

	_, err = svc.Converse(context.Background(), session, "hello")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, "", svc.SynthesizeSpeech(context.Background(), "hello", "en"))
	assert.Equal(t, SearchResult{IDs: []string{}}, svc.MatchSearch(context.Background(), "vase", testCatalog(t), "en"))
}

func TestSynthesizeSpeech(t *testing.T) {
	fake := &fakeOpenAI{replies: []string{"unused"}, speech: []byte{1, 0, 2, 0}}
	svc := newOpenAIService(t, fake)

	got := svc.SynthesizeSpeech(context.Background(), "Try the **Vase**.", "en")
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 0, 2, 0}), got)

	fake.status = http.StatusServiceUnavailable
	assert.Equal(t, "", svc.SynthesizeSpeech(context.Background(), "hello", "en"))
}

func TestMatchSearch(t *testing.T) {
	cat := testCatalog(t)

	tests := []struct {
		name     string
		response string
		err      error
		want     SearchResult
	}{
		{
			name:     "order preserved",
			response: `{"ids":["mug","vase"],"reason":"Both hold liquids"}`,
			want:     SearchResult{IDs: []string{"mug", "vase"}, Reason: "Both hold liquids"},
		},
		{
			name:     "unknown and duplicate ids dropped",
			response: `{"ids":["ghost","mirror","mirror"],"reason":"Reflective"}`,
			want:     SearchResult{IDs: []string{"mirror"}, Reason: "Reflective"},
		},
		{
			name:     "fenced json",
			response: "```json\n{\"ids\":[\"vase\"],\"reason\":\"Flowers\"}\n```",
			want:     SearchResult{IDs: []string{"vase"}, Reason: "Flowers"},
		},
		{
			name:     "only unknown ids",
			response: `{"ids":["ghost"],"reason":"Nothing real"}`,
			want:     SearchResult{IDs: []string{}},
		},
		{
			name:     "shape mismatch",
			response: `{"ids":"vase"}`,
			want:     SearchResult{IDs: []string{}},
		},
		{
			name: "transport failure",
			err:  errors.New("timeout"),
			want: SearchResult{IDs: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{}
			provider.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(s string) bool {
				return strings.Contains(s, "French")
			}), mock.MatchedBy(func(s string) bool {
				return strings.Contains(s, `"query":"vase"`) && strings.Contains(s, `"category":"Kitchen"`)
			})).Return(tt.response, tt.err)

			got := NewService(provider).MatchSearch(context.Background(), "vase", cat, "fr")
			assert.Equal(t, tt.want, got)
			provider.AssertExpectations(t)
		})
	}
}

func TestNewSessionFailure(t *testing.T) {
	provider := &MockProvider{}
	provider.On("NewConversation", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	_, err := NewService(provider).NewSession(context.Background(), config.LookupLocale("en"), testCatalog(t))
	var backendErr *BackendError
	assert.ErrorAs(t, err, &backendErr)
}

func TestAssistantPromptCarriesPolicy(t *testing.T) {
	prompt := AssistantPrompt(config.LookupLocale("de"), testCatalog(t)).String()

	assert.Contains(t, prompt, "who the gift is for")
	assert.Contains(t, prompt, "**Vase**")
	assert.Contains(t, prompt, "three sentences")
	assert.Contains(t, prompt, "Always reply in German")
}

func TestSelectProvider(t *testing.T) {
	oa := openaiinfra.NewServiceWithBaseURL("k", "")

	assert.Nil(t, SelectProvider(config.ProviderNone, oa, nil))
	assert.Nil(t, SelectProvider(config.ProviderGemini, oa, nil))
	assert.Nil(t, SelectProvider(config.ProviderAuto, nil, nil))

	p := SelectProvider(config.ProviderAuto, oa, nil)
	require.NotNil(t, p)
	assert.Equal(t, config.ProviderOpenAI, p.Name())
}
