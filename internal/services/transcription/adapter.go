// Package transcription wraps a speech-to-text capability behind a
// single-utterance listening contract.
package transcription

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/deepgram/shopfront/pkg/logger"
)

// ErrCapabilityUnavailable is returned when no recogniser is installed.
var ErrCapabilityUnavailable = errors.New("transcription: speech recognition unavailable")

type EventType string

const (
	EventStart  EventType = "start"
	EventResult EventType = "result"
	EventError  EventType = "error"
	EventEnd    EventType = "end"
)

type Event struct {
	Type       EventType
	Transcript string
	Err        error
}

// Recognizer captures exactly one utterance and returns its transcript.
type Recognizer interface {
	Recognize(ctx context.Context, localeTag string) (string, error)
}

// Adapter runs at most one listening session at a time.
type Adapter struct {
	mu         sync.Mutex
	recognizer Recognizer
	cancel     context.CancelFunc
	generation uint64
}

// NewAdapter wraps r; a nil recogniser makes every StartListening fail fast.
func NewAdapter(r Recognizer) *Adapter {
	return &Adapter{recognizer: r}
}

func (a *Adapter) Available() bool {
	return a.recognizer != nil
}

// Listening reports whether a session is in progress.
func (a *Adapter) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// StartListening begins a session, replacing any session already running.
// The returned stream emits Start, at most one Result or Error, then End,
// and is closed afterwards.
func (a *Adapter) StartListening(ctx context.Context, localeTag string) (<-chan Event, error) {
	if a.recognizer == nil {
		return nil, ErrCapabilityUnavailable
	}

	a.mu.Lock()
	if a.cancel != nil {
		logger.Debug(logger.SPEECH, "Replacing active listening session")
		a.cancel()
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	events := make(chan Event, 3)
	go a.listen(sessionCtx, gen, localeTag, events)
	return events, nil
}

// Stop ends the active session, if any.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *Adapter) listen(ctx context.Context, gen uint64, localeTag string, events chan<- Event) {
	defer close(events)

	events <- Event{Type: EventStart}

	transcript, err := a.recognizer.Recognize(ctx, localeTag)
	switch {
	case ctx.Err() != nil:
		logger.Debug(logger.SPEECH, "Listening session ended before a result")
	case err != nil:
		logger.Warn(logger.SPEECH, "Speech recognition failed: %v", err)
		events <- Event{Type: EventError, Err: err}
	case strings.TrimSpace(transcript) != "":
		events <- Event{Type: EventResult, Transcript: strings.TrimSpace(transcript)}
	}

	events <- Event{Type: EventEnd}

	a.mu.Lock()
	if a.generation == gen && a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
}
