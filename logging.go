package main

import (
	"io"
	"log/slog"

	"github.com/bodul/wordsearch/internal/config"
)

// newLogger builds the process logger from the app config.
func newLogger(w io.Writer, cfg config.AppConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}
