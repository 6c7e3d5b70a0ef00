package logger

import (
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

func Init() {
	level := slog.LevelDebug
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "info") {
		level = slog.LevelInfo
	}

	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
}
