package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Utterance is one recorded clip uploaded by a client.
type Utterance struct {
	Data   []byte
	Format string
}

// CaptureSource yields the next recorded utterance.
type CaptureSource interface {
	Capture(ctx context.Context) (Utterance, error)
}

// ChannelSource is a CaptureSource fed from outside, e.g. a websocket reader.
// At most one utterance is queued.
type ChannelSource struct {
	ch chan Utterance
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan Utterance, 1)}
}

// Push queues u, reporting false when an utterance is already waiting.
func (s *ChannelSource) Push(u Utterance) bool {
	select {
	case s.ch <- u:
		return true
	default:
		return false
	}
}

func (s *ChannelSource) Capture(ctx context.Context) (Utterance, error) {
	select {
	case u := <-s.ch:
		return u, nil
	case <-ctx.Done():
		return Utterance{}, ctx.Err()
	}
}

// WhisperRecognizer transcribes captured utterances with OpenAI Whisper.
type WhisperRecognizer struct {
	client *openai.Client
	source CaptureSource
}

func NewWhisperRecognizer(client *openai.Client, source CaptureSource) *WhisperRecognizer {
	return &WhisperRecognizer{client: client, source: source}
}

func (w *WhisperRecognizer) Recognize(ctx context.Context, localeTag string) (string, error) {
	u, err := w.source.Capture(ctx)
	if err != nil {
		return "", err
	}
	if len(u.Data) == 0 {
		return "", errors.New("empty utterance")
	}

	format := u.Format
	if format == "" {
		format = "webm"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "utterance." + format,
		Reader:   bytes.NewReader(u.Data),
		Language: languageOf(localeTag),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}

func languageOf(localeTag string) string {
	lang, _, _ := strings.Cut(localeTag, "-")
	return strings.ToLower(lang)
}
