package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/api"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/changefeed"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/searchcache"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/settings"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/translate"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/rpc"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg); err != nil {
		slog.Error("tag service exited", "error", err)
		os.Exit(1)
	}
	slog.Info("tag service stopped")
}

func run(cfg *config.Config) error {
	instanceID := uuid.NewString()
	slog.Info("starting tag service",
		"port", cfg.Server.Port,
		"backend", cfg.Vocabulary.Backend,
		"instance", instanceID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	backend, err := openBackend(ctx, cfg, checker)
	if err != nil {
		return err
	}
	defer backend.close()

	store := vocabulary.NewStore(backend.persister)
	if err := store.Restore(ctx); err != nil {
		return fmt.Errorf("restoring vocabulary: %w", err)
	}
	checker.Register("vocabulary", func(ctx context.Context) health.ComponentHealth {
		if store.Len() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "vocabulary is empty"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d records", store.Len())}
	})

	settingsStore := settings.New(cfg.Settings.Path)
	if err := settingsStore.Load(); err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if cfg.Settings.Watch {
		if err := os.MkdirAll(filepath.Dir(cfg.Settings.Path), 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
		if err := settingsStore.Watch(nil); err != nil {
			slog.Warn("settings watch unavailable, edits on disk need a restart", "error", err)
		}
		defer settingsStore.Stop()
	}

	cache, closeCache := openSearchCache(ctx, cfg, m, checker)
	defer closeCache()

	// Background workers outlive the signal so requests still in flight can
	// queue events; Close drains them after the servers stop.
	workCtx := context.WithoutCancel(ctx)

	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(aggregator, 10000)
	collector.Start(workCtx)

	opts := catalog.Options{
		Store:           store,
		Settings:        settingsStore,
		Metrics:         m,
		Search:          cfg.Search,
		DefaultCategory: cfg.Categorize.DefaultCategory,
		Cache:           cache,
		Tracker:         collector,
	}
	if cfg.Translator.Enabled {
		opts.Translator = translate.New(cfg.Translator, m.BreakerStateChanged)
		slog.Info("translator enabled", "base_url", cfg.Translator.BaseURL, "target", cfg.Translator.TargetLang)
	}

	var (
		publisher *changefeed.Publisher
		producer  *kafka.Producer
	)
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.ChangesTopic)
		publisher = changefeed.NewPublisher(producer, instanceID, cfg.Kafka.BufferSize)
		publisher.Start(workCtx)
		opts.Publisher = publisher
	}

	svc := catalog.New(opts)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.WritesPerWindow > 0 {
		limiter = ratelimit.New(cfg.RateLimit.WritesPerWindow, cfg.RateLimit.Window)
		defer limiter.Close()
	}

	handler := api.NewRouter(api.NewHandler(svc), api.RouterConfig{
		Metrics:        m,
		Limiter:        limiter,
		AllowOrigins:   cfg.Server.AllowOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
		Tracing:        cfg.Tracing.Enabled,
		Stats:          analytics.NewHandler(aggregator).Stats,
		Live:           checker.LiveHandler(),
		Ready:          checker.ReadyHandler(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("tag service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcServer = rpc.NewServer(cfg.Server.WriteTimeout)
		api.RegisterRPC(rpcServer, svc)
		g.Go(func() error {
			return rpcServer.Serve(fmt.Sprintf(":%d", cfg.RPC.Port))
		})
	}

	if cfg.Kafka.Enabled {
		follower := changefeed.NewFollower(instanceID, svc)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.ChangesTopic,
			cfg.Kafka.ConsumerGroup+"-"+instanceID, follower.Handle)
		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
		if rpcServer != nil {
			rpcServer.Stop()
		}
		if shutdownMetrics != nil {
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
		return nil
	})

	err = g.Wait()

	// Request paths are closed; flush what they queued.
	collector.Close()
	if publisher != nil {
		publisher.Close()
		if err := producer.Close(); err != nil {
			slog.Error("kafka producer close error", "error", err)
		}
	}
	return err
}

// openSearchCache prefers Redis and falls back to an in-process LRU. The
// Redis keyspace is per instance; entries left by a previous run under the
// same namespace are flushed before serving.
func openSearchCache(ctx context.Context, cfg *config.Config, m *metrics.Metrics, checker *health.Checker) (*searchcache.Cache, func()) {
	opts := searchcache.Options{
		TTL:       cfg.Redis.CacheTTL,
		Namespace: cacheNamespace(cfg.Redis),
		Observer:  m,
	}
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(cfg.Redis)
		if err == nil {
			checker.Register("redis", health.PingCheck(client.Ping, health.StatusDegraded))
			cache := searchcache.New(searchcache.NewRedisBackend(client), opts)
			if err := cache.Invalidate(ctx); err != nil {
				slog.Warn("flushing stale search cache entries failed", "namespace", opts.Namespace, "error", err)
			}
			slog.Info("search cache enabled", "backend", "redis", "addr", cfg.Redis.Addr, "namespace", opts.Namespace, "ttl", cfg.Redis.CacheTTL)
			return cache, func() { client.Close() }
		}
		slog.Warn("redis unavailable, falling back to in-process search cache", "error", err)
	}
	if cfg.Search.LocalCache <= 0 {
		return nil, func() {}
	}
	lru, err := searchcache.NewLRUBackend(cfg.Search.LocalCache)
	if err != nil {
		slog.Warn("search cache disabled", "error", err)
		return nil, func() {}
	}
	slog.Info("search cache enabled", "backend", "lru", "size", cfg.Search.LocalCache)
	return searchcache.New(lru, opts), func() {}
}

func cacheNamespace(cfg config.RedisConfig) string {
	if cfg.CacheNamespace != "" {
		return cfg.CacheNamespace
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "tagserver"
}
