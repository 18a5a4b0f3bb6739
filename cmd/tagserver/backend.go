package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/boltstore"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/filestore"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/pgstore"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/resilience"
)

type backend struct {
	persister vocabulary.Persister
	close     func()
}

// openBackend opens the configured vocabulary store and registers its
// health check.
func openBackend(ctx context.Context, cfg *config.Config, checker *health.Checker) (*backend, error) {
	switch cfg.Vocabulary.Backend {
	case config.BackendBolt:
		db, err := boltstore.Open(cfg.Vocabulary.BoltPath)
		if err != nil {
			return nil, err
		}
		slog.Info("vocabulary backend ready", "backend", "bolt", "path", cfg.Vocabulary.BoltPath)
		return &backend{persister: db, close: func() { db.Close() }}, nil

	case config.BackendPostgres:
		var client *postgres.Client
		err := resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		}, func() error {
			var err error
			client, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		pg := pgstore.New(client)
		if err := pg.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		checker.Register("postgres", health.PingCheck(client.Ping, health.StatusDown))
		slog.Info("vocabulary backend ready", "backend", "postgres",
			"host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		return &backend{persister: pg, close: func() { client.Close() }}, nil

	default:
		slog.Info("vocabulary backend ready", "backend", "file", "path", cfg.Vocabulary.FilePath)
		return &backend{persister: filestore.New(cfg.Vocabulary.FilePath), close: func() {}}, nil
	}
}
