package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"fithub/internal/config"
	"fithub/internal/database"
	"fithub/internal/storage"
)

// OpenStore opens the persistence store selected by cfg. The returned close
// func is never nil.
func OpenStore(cfg *config.Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreKind {
	case config.StoreMemory:
		return storage.NewMemoryStore(), noop, nil
	case config.StoreFile:
		s, err := storage.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.NewSQLiteStore(db.SQL), db.Close, nil
	}
}

// DataPath is the directory holding cfg's persisted data.
func DataPath(cfg *config.Config) string {
	if cfg.StoreKind == config.StoreFile {
		return cfg.StoreDir
	}
	return filepath.Dir(cfg.DatabasePath)
}

// NewLogger builds a slog logger for a level (debug, info, warn, error) and
// format (console, json).
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "console", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format: %s", format)
}
