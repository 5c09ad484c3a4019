// Package logger construit le logger slog du service, branché sur zerolog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// New crée un logger : console lisible en local, JSON ailleurs.
// level vide => debug en local, info sinon.
func New(env, level, service string) *slog.Logger {
	return newWithWriter(os.Stdout, env, level, service)
}

// Init installe le logger par défaut (slog.Info & co) et le renvoie.
func Init(env, level, service string) *slog.Logger {
	l := New(env, level, service)
	slog.SetDefault(l)
	return l
}

func newWithWriter(w io.Writer, env, level, service string) *slog.Logger {
	var out io.Writer = w
	if env == "local" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	zl := zerolog.New(out).With().Timestamp().Str("service", service).Logger()

	handler := slogzerolog.Option{Level: parseLevel(env, level), Logger: &zl}.NewZerologHandler()
	return slog.New(handler)
}

func parseLevel(env, level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "local" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
