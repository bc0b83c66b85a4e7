package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSource(t *testing.T) {
	s := NewChannelSource()
	assert.True(t, s.Push(Utterance{Data: []byte{1}}))
	assert.False(t, s.Push(Utterance{Data: []byte{2}}), "only one utterance may wait")

	u, err := s.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, u.Data)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Capture(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWhisperRecognizer(t *testing.T) {
	var gotLanguage, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotLanguage = r.FormValue("language")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotFilename = header.Filename
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("clip"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"do you have mugs"}`))
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	source := NewChannelSource()
	source.Push(Utterance{Data: []byte("clip"), Format: "ogg"})

	text, err := NewWhisperRecognizer(openai.NewClientWithConfig(cfg), source).Recognize(context.Background(), "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "do you have mugs", text)
	assert.Equal(t, "fr", gotLanguage)
	assert.Equal(t, "utterance.ogg", gotFilename)
}

func TestWhisperRecognizerRejectsEmptyClip(t *testing.T) {
	source := NewChannelSource()
	source.Push(Utterance{})

	_, err := NewWhisperRecognizer(openai.NewClient("k"), source).Recognize(context.Background(), "en-US")
	assert.Error(t, err)
}
