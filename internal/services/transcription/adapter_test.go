package transcription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRecognizer returns whatever is sent on results, or ctx.Err().
type blockingRecognizer struct {
	results chan string
	err     error
	locales chan string
}

func newBlockingRecognizer() *blockingRecognizer {
	return &blockingRecognizer{results: make(chan string, 4), locales: make(chan string, 4)}
}

func (r *blockingRecognizer) Recognize(ctx context.Context, localeTag string) (string, error) {
	r.locales <- localeTag
	if r.err != nil {
		return "", r.err
	}
	select {
	case s := <-r.results:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not close")
		}
	}
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestStartListeningWithoutRecognizer(t *testing.T) {
	a := NewAdapter(nil)
	events, err := a.StartListening(context.Background(), "en-US")
	assert.Nil(t, events)
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	assert.False(t, a.Available())
}

func TestSingleShotResult(t *testing.T) {
	r := newBlockingRecognizer()
	r.results <- "  show me vases  "
	a := NewAdapter(r)

	events, err := a.StartListening(context.Background(), "es-ES")
	require.NoError(t, err)

	got := collect(t, events)
	assert.Equal(t, []EventType{EventStart, EventResult, EventEnd}, types(got))
	assert.Equal(t, "show me vases", got[1].Transcript)
	assert.Equal(t, "es-ES", <-r.locales)
	assert.Eventually(t, func() bool { return !a.Listening() }, time.Second, 10*time.Millisecond)
}

func TestEmptyTranscriptEmitsNoResult(t *testing.T) {
	r := newBlockingRecognizer()
	r.results <- "   "
	events, err := NewAdapter(r).StartListening(context.Background(), "en-US")
	require.NoError(t, err)

	assert.Equal(t, []EventType{EventStart, EventEnd}, types(collect(t, events)))
}

func TestRecognizerErrorStillEnds(t *testing.T) {
	r := newBlockingRecognizer()
	r.err = errors.New("microphone denied")
	events, err := NewAdapter(r).StartListening(context.Background(), "en-US")
	require.NoError(t, err)

	got := collect(t, events)
	assert.Equal(t, []EventType{EventStart, EventError, EventEnd}, types(got))
	assert.EqualError(t, got[1].Err, "microphone denied")
}

func TestStartReplacesPriorSession(t *testing.T) {
	r := newBlockingRecognizer()
	a := NewAdapter(r)

	first, err := a.StartListening(context.Background(), "en-US")
	require.NoError(t, err)
	<-r.locales

	second, err := a.StartListening(context.Background(), "en-US")
	require.NoError(t, err)
	<-r.locales

	assert.Equal(t, []EventType{EventStart, EventEnd}, types(collect(t, first)))
	assert.True(t, a.Listening())

	r.results <- "hello"
	got := collect(t, second)
	assert.Equal(t, []EventType{EventStart, EventResult, EventEnd}, types(got))
	assert.Equal(t, "hello", got[1].Transcript)
}

func TestStop(t *testing.T) {
	r := newBlockingRecognizer()
	a := NewAdapter(r)

	events, err := a.StartListening(context.Background(), "en-US")
	require.NoError(t, err)
	<-r.locales

	a.Stop()
	assert.Equal(t, []EventType{EventStart, EventEnd}, types(collect(t, events)))
	assert.False(t, a.Listening())
}
