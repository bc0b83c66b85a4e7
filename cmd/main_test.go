package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deepgram/shopfront/internal/services"
	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/chat"
	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/deepgram/shopfront/internal/services/transcription"
	"github.com/deepgram/shopfront/internal/services/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainServer(t *testing.T) {
	cat := catalog.Default()
	svc := services.NewServices(cat, chat.NewService(nil), session.NewService(nil), cart.NewService(nil, cat))
	server := httptest.NewServer(setupRouter(svc))
	defer server.Close()

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, false, body["assistant"])
		assert.EqualValues(t, 10, body["products"])
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		if _, err := http.Get(server.URL + "/v1/search?q=vase"); err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}

		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "shopfront_search_results_total")
	})

	t.Run("session endpoint", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/v1/session", "application/json", strings.NewReader(`{"language":"pt"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/invalid")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLineRecognizer(t *testing.T) {
	r := newLineRecognizer()
	r.lines <- "show me candles"

	got, err := r.Recognize(context.Background(), "en-US")
	require.NoError(t, err)
	assert.Equal(t, "show me candles", got)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = r.Recognize(ctx, "en-US")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	r.say("stale")
	r.say("fresh")
	_, err = r.Recognize(ctx, "en-US")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "a cancelled session leaves the line queued")
	got, err = r.Recognize(context.Background(), "en-US")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestTranscriptPrinter(t *testing.T) {
	var out bytes.Buffer
	p := &transcriptPrinter{out: &out, catalog: catalog.Default()}

	user := widget.Message{Role: widget.RoleUser, Text: "mugs?"}
	reply := widget.Message{Role: widget.RoleAssistant, Text: "Try the **Speckled Coffee Mug**.", ProductIDs: []string{"p-003"}}

	p.onChange(widget.State{Version: 2, Messages: []widget.Message{user, reply}})
	p.onChange(widget.State{Version: 1, Messages: []widget.Message{user}})
	p.onChange(widget.State{Version: 3, Messages: []widget.Message{user, reply}, Alert: "no mic"})

	assert.Equal(t,
		"assistant> Try the **Speckled Coffee Mug**.\n"+
			"    [p-003] Speckled Coffee Mug  16.00\n"+
			"! no mic\n",
		out.String())
}

func newVoiceController(t *testing.T) (*widget.Controller, *lineRecognizer) {
	t.Helper()
	recognizer := newLineRecognizer()
	c := widget.NewController(context.Background(), widget.Config{
		Backend:       chat.NewService(nil),
		Catalog:       catalog.Default(),
		Listener:      transcription.NewAdapter(recognizer),
		PeekDismissed: true,
	})
	t.Cleanup(c.Shutdown)
	c.Open()
	require.True(t, c.ChooseAction(context.Background(), widget.ActionVoice))
	return c, recognizer
}

func TestSpeakLineRearmsAfterLocaleSwitch(t *testing.T) {
	c, recognizer := newVoiceController(t)
	c.SetLocale(context.Background(), "es")
	require.False(t, c.Listening())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.True(t, speakLine(ctx, c, recognizer, "hola"))
	require.NoError(t, ctx.Err(), "turn finished before the deadline")

	s := c.Snapshot()
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "hola", s.Messages[0].Text)
	assert.False(t, c.Busy())

	assert.True(t, speakLine(ctx, c, recognizer, "gracias"))
	assert.Len(t, c.Snapshot().Messages, 4)
}

func TestSpeakLineReturnsWhenNothingIsHeard(t *testing.T) {
	c, recognizer := newVoiceController(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.False(t, speakLine(ctx, c, recognizer, "   "))
	require.NoError(t, ctx.Err())
	assert.Empty(t, c.Snapshot().Messages)
}
