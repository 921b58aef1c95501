package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/pgstay/internal/bootstrap"
	"github.com/mmynk/pgstay/internal/config"
	"github.com/mmynk/pgstay/internal/metrics"
	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/internal/sheets"
	"github.com/mmynk/pgstay/internal/storage"
	"github.com/mmynk/pgstay/internal/storage/sqlite"
)

const retryBackoff = 250 * time.Millisecond

// app wires the components shared by every command.
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	client    *sheets.Client
	repo      *repository.Repository
	boot      *bootstrap.Bootstrapper
	snapshots storage.SnapshotStore
}

// newApp validates cfg and builds the Sheets client, repository and
// bootstrapper. withSnapshots opens the SQLite snapshot store.
func newApp(cfg *config.Config, withSnapshots bool) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	logger := slog.Default()
	client := sheets.New(cfg.SpreadsheetID, cfg.APIKey,
		sheets.WithHTTPClient(sheets.NewHTTPClient(cfg.SheetsTimeout, cfg.ProxyPrefix())),
		sheets.WithBaseURL(cfg.SheetsBaseURL),
		sheets.WithRetries(cfg.MaxRetries, retryBackoff),
		sheets.WithMetrics(m),
		sheets.WithLogger(logger),
	)
	if cfg.UseProxy {
		logger.Warn("Routing Sheets calls through a CORS proxy", "proxy", cfg.ProxyURL)
	}

	a := &app{cfg: cfg, registry: registry, client: client}
	opts := repository.Options{Metrics: m, Logger: logger}
	if withSnapshots && cfg.SnapshotDBPath != "" {
		store, err := sqlite.New(cfg.SnapshotDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		logger.Info("Snapshot store initialized", "database", cfg.SnapshotDBPath)
		a.snapshots = store
		opts.Snapshots = store
	}

	a.repo = repository.New(client, opts)
	a.boot = bootstrap.New(client, a.repo, logger)
	return a, nil
}

// Close releases the snapshot store.
func (a *app) Close() error {
	if a.snapshots == nil {
		return nil
	}
	return a.snapshots.Close()
}
