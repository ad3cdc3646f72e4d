package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/adrg/xdg"

	"suma/internal/config"
	sumalog "suma/internal/log"
	"suma/internal/repository"
	"suma/internal/service"
)

const profileFile = "suma/storage.db"

// app is the wiring shared by the subcommands: one local profile store and
// the analytics pipeline over it
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *repository.SQLiteStore
	buffer   *service.EventBuffer
	flusher  *service.Flusher
	visitors *service.VisitorIDs
	tracker  *service.Tracker
}

func openApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := sumalog.New(stderr, sumalog.Options{Format: "text", Level: level})

	path := opts.dataPath
	if path == "" {
		path, err = xdg.DataFile(profileFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve profile path: %w", err)
		}
	}

	store, err := repository.OpenSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	buffer := service.NewEventBuffer(repository.NewEventStore(store), cfg.Analytics.MaxBufferSize, logger)
	// no beacon: the process exits right after the flush, so delivery is synchronous
	flusher := service.NewFlusher(cfg.Analytics.Endpoint, buffer, nil, &http.Client{Timeout: cfg.Analytics.Timeout}, logger)
	visitors := service.NewVisitorIDs(store, logger)
	tracker := service.NewTracker(buffer, flusher, visitors, logger)
	tracker.DisableAutoFlush()

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		buffer:   buffer,
		flusher:  flusher,
		visitors: visitors,
		tracker:  tracker,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
