package logger

import (
	"io"
	"log/slog"
	"os"
)

// New: JSON-лог в stdout; в dev уровень Debug.
func New(env string) *slog.Logger {
	return NewTo(os.Stdout, env)
}

func NewTo(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", "print-cashier", "env", env)
}
