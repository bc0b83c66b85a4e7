package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

const (
	APP        = "APP"
	ASSISTANT  = "ASSISTANT"
	AUDIO      = "AUDIO"
	CART       = "CART"
	CATALOG    = "CATALOG"
	CHAT       = "CHAT"
	CONFIG     = "CONFIG"
	HANDLER    = "HANDLER"
	MIDDLEWARE = "MIDDLEWARE"
	REDIS      = "REDIS"
	SEARCH     = "SEARCH"
	SERVICE    = "SERVICE"
	SPEECH     = "SPEECH"
)

var (
	currentLevel = getLogLevel()
	output       atomic.Pointer[zerolog.Logger]
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput redirects all namespaced logging to w. Safe to call while other
// goroutines log.
func SetOutput(w io.Writer) {
	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.LevelFieldName}}).
		With().Timestamp().Logger()
	output.Store(&l)
}

func getLogLevel() LogLevel {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// ZerologLevel maps LOG_LEVEL onto the global zerolog level.
func ZerologLevel() zerolog.Level {
	switch getLogLevel() {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func formatMessage(level, namespace, format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)
	return fmt.Sprintf("[%s] [%s] %s", level, namespace, msg)
}

func emit(ev *zerolog.Event, level, namespace, format string, v ...interface{}) {
	ev.Str("namespace", namespace).Msg(formatMessage(level, namespace, format, v...))
}

func Debug(namespace, format string, v ...interface{}) {
	if currentLevel >= DEBUG {
		emit(output.Load().Debug(), "DEBUG", namespace, format, v...)
	}
}

func Info(namespace, format string, v ...interface{}) {
	if currentLevel >= INFO {
		emit(output.Load().Info(), "INFO", namespace, format, v...)
	}
}

func Warn(namespace, format string, v ...interface{}) {
	if currentLevel >= WARN {
		emit(output.Load().Warn(), "WARN", namespace, format, v...)
	}
}

func Error(namespace, format string, v ...interface{}) {
	if currentLevel >= ERROR {
		emit(output.Load().Error(), "ERROR", namespace, format, v...)
	}
}

// Fatal logs without exiting; callers decide whether to stop.
func Fatal(namespace, format string, v ...interface{}) {
	if currentLevel >= ERROR {
		emit(output.Load().Error(), "FATAL", namespace, format, v...)
	}
}
