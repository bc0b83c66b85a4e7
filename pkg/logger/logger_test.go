package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func withLevel(t *testing.T, level string) {
	t.Helper()
	os.Setenv("LOG_LEVEL", level)
	currentLevel = getLogLevel()
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		currentLevel = getLogLevel()
	})
}

func captureOutput(f func()) string {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	f()
	return buf.String()
}

func TestLevelFromEnvironment(t *testing.T) {
	tests := []struct {
		envLevel string
		want     LogLevel
		zerolog  zerolog.Level
	}{
		{"DEBUG", DEBUG, zerolog.DebugLevel},
		{"debug", DEBUG, zerolog.DebugLevel},
		{"INFO", INFO, zerolog.InfoLevel},
		{"WARN", WARN, zerolog.WarnLevel},
		{"ERROR", ERROR, zerolog.ErrorLevel},
		{"", INFO, zerolog.InfoLevel},
		{"VERBOSE", INFO, zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.envLevel, func(t *testing.T) {
			withLevel(t, tt.envLevel)
			assert.Equal(t, tt.want, getLogLevel())
			assert.Equal(t, tt.zerolog, ZerologLevel())
		})
	}
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "[INFO] [CART] added p-003", formatMessage("INFO", CART, "added %s", "p-003"))
	assert.Equal(t, "[DEBUG] [AUDIO] no args", formatMessage("DEBUG", AUDIO, "no args"))
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		setLevel  string
		logFunc   func(string, string, ...interface{})
		shouldLog bool
		contains  string
	}{
		{"debug shown at debug", "DEBUG", Debug, true, "[DEBUG] [ASSISTANT] turn"},
		{"debug hidden at info", "INFO", Debug, false, ""},
		{"info shown at info", "INFO", Info, true, "[INFO] [ASSISTANT] turn"},
		{"info hidden at error", "ERROR", Info, false, ""},
		{"warn hidden at error", "ERROR", Warn, false, ""},
		{"warn shown at warn", "WARN", Warn, true, "[WARN] [ASSISTANT] turn"},
		{"error shown at error", "ERROR", Error, true, "[ERROR] [ASSISTANT] turn"},
		{"fatal shown at error", "ERROR", Fatal, true, "[FATAL] [ASSISTANT] turn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLevel(t, tt.setLevel)
			output := captureOutput(func() { tt.logFunc(ASSISTANT, "turn") })

			if !tt.shouldLog {
				assert.Empty(t, output)
				return
			}
			assert.Contains(t, output, tt.contains)
		})
	}
}

func TestNamespaceField(t *testing.T) {
	withLevel(t, "INFO")
	output := captureOutput(func() {
		Info(SEARCH, "query %q matched %d products", "vase", 1)
	})

	assert.Contains(t, output, "namespace=SEARCH")
	assert.Contains(t, output, `[INFO] [SEARCH] query "vase" matched 1 products`)
}

func TestSetOutputWhileLogging(t *testing.T) {
	withLevel(t, "DEBUG")
	SetOutput(io.Discard)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				Debug(APP, "tick %d", j)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		SetOutput(io.Discard)
	}
	wg.Wait()

	assert.Contains(t, captureOutput(func() { Info(APP, "after") }), "[INFO] [APP] after")
}
