package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/deepgram/shopfront/internal/config"
	geminiinfra "github.com/deepgram/shopfront/internal/infrastructure/gemini"
	"google.golang.org/genai"
)

// GeminiProvider backs the assistant with Gemini chats and native audio output.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	speechModel string
	voice       string
}

// NewGeminiProvider returns nil when the Gemini service is not configured.
func NewGeminiProvider(svc *geminiinfra.Service) *GeminiProvider {
	if svc == nil {
		return nil
	}
	return &GeminiProvider{
		client:      svc.GetClient(),
		model:       config.GetGeminiChatModel(),
		speechModel: config.GetGeminiSpeechModel(),
		voice:       config.GetGeminiSpeechVoice(),
	}
}

func (p *GeminiProvider) Name() string {
	return config.ProviderGemini
}

func (p *GeminiProvider) NewConversation(ctx context.Context, instruction string) (Conversation, error) {
	temperature := float32(0.7)
	chat, err := p.client.Chats.Create(ctx, p.model, &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: textContent(instruction),
	}, nil)
	if err != nil {
		return nil, err
	}
	return &geminiConversation{chat: chat}, nil
}

func (p *GeminiProvider) Synthesize(ctx context.Context, text string, _ config.Locale) ([]byte, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.speechModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: p.voice},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	for _, part := range firstParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, errors.New("no audio in response")
}

func (p *GeminiProvider) CompleteJSON(ctx context.Context, instruction, prompt string) (string, error) {
	temperature := float32(0)
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: textContent(instruction),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"ids": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"reason": {Type: genai.TypeString},
			},
			Required: []string{"ids", "reason"},
		},
	})
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// genai chats are not safe for concurrent sends.
type geminiConversation struct {
	mu   sync.Mutex
	chat *genai.Chat
}

func (c *geminiConversation) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func textContent(s string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: s}}}
}

func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	var sb strings.Builder
	for _, part := range firstParts(resp) {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response from Gemini")
	}
	return sb.String(), nil
}
