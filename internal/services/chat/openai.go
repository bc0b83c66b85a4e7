package chat

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/deepgram/shopfront/internal/config"
	openaiinfra "github.com/deepgram/shopfront/internal/infrastructure/openai"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider backs the assistant with chat completions and tts-1 speech.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	voice  openai.SpeechVoice
}

// NewOpenAIProvider returns nil when the OpenAI service is not configured.
func NewOpenAIProvider(svc *openaiinfra.Service) *OpenAIProvider {
	if svc == nil {
		return nil
	}
	return &OpenAIProvider{
		client: svc.GetClient(),
		model:  config.GetOpenAIChatModel(),
		voice:  openai.SpeechVoice(config.GetOpenAISpeechVoice()),
	}
}

func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

func (p *OpenAIProvider) NewConversation(_ context.Context, instruction string) (Conversation, error) {
	return &openAIConversation{
		client: p.client,
		model:  p.model,
		messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: instruction,
		}},
	}, nil
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, _ config.Locale) ([]byte, error) {
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          p.voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}

func (p *OpenAIProvider) CompleteJSON(ctx context.Context, instruction, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIConversation keeps the running transcript client-side, since chat
// completions are stateless.
type openAIConversation struct {
	client *openai.Client
	model  string

	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
}

func (c *openAIConversation) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := append(c.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	reply := resp.Choices[0].Message
	c.messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply.Content,
	})
	return reply.Content, nil
}
