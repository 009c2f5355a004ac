package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	complianceengine "sitecompliance/contexts/site-compliance/compliance-engine"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/memory"
	postgresadapter "sitecompliance/contexts/site-compliance/compliance-engine/adapters/postgres"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/redislock"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/seed"
	workerapp "sitecompliance/contexts/site-compliance/compliance-engine/application/workers"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
	"sitecompliance/internal/platform/config"
	"sitecompliance/internal/platform/db"
	"sitecompliance/internal/platform/httpserver"
	"sitecompliance/internal/platform/messaging"

	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	storage  *storage
	logger   *slog.Logger
	shutdown time.Duration
}

type WorkerApp struct {
	storage      *storage
	outboxRelay  workerapp.OutboxRelay
	closePublish func() error
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	store, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.seed(context.Background(), cfg.SeedPath); err != nil {
		_ = store.Close()
		return nil, err
	}

	server := httpserver.New(store.module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		storage:  store,
		logger:   logger,
		shutdown: 10 * time.Second,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" && strings.TrimSpace(cfg.SQLitePath) == "" {
		return nil, errors.New("POSTGRES_DSN or SQLITE_PATH is required")
	}
	store, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		publisher    ports.EventPublisher
		closePublish = func() error { return nil }
	)
	if strings.TrimSpace(cfg.NATSURL) != "" {
		natsPublisher, err := messaging.NewNATS(messaging.NATSConfig{URL: cfg.NATSURL, Name: cfg.ServiceName}, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = natsPublisher
		closePublish = natsPublisher.Close
	} else {
		logger.Warn("NATS_URL not set; relaying to the in-process bus",
			"event", "bootstrap_worker_inprocess_bus",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		publisher = messaging.NewBus(logger)
	}

	return &WorkerApp{
		storage: store,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    store.outbox,
			Publisher: publisher,
			Clock:     store.clock,
			Topic:     cfg.OutboxTopic,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		closePublish: closePublish,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"storage", a.storage.kind,
		)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdown)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	return a.storage.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if _, err := w.outboxRelay.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A failed batch is retried on the next tick from the same row.
			w.logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_worker_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	return errors.Join(w.closePublish(), w.storage.Close())
}

// storage bundles whichever backend the config selects with the ports the
// module and the relay need from it.
type storage struct {
	kind     string
	module   complianceengine.Module
	writer   seed.Writer
	outbox   ports.OutboxRepository
	clock    ports.Clock
	database *db.Database
	redis    redis.UniversalClient
	logger   *slog.Logger
}

func openStorage(cfg config.Config, logger *slog.Logger) (*storage, error) {
	var (
		database *db.Database
		err      error
	)
	switch {
	case strings.TrimSpace(cfg.PostgresDSN) != "":
		database, err = db.ConnectPostgres(cfg.PostgresDSN)
	case strings.TrimSpace(cfg.SQLitePath) != "":
		database, err = db.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	out := &storage{database: database, logger: logger}
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		out.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	if database == nil {
		module := complianceengine.NewInMemoryModule(logger)
		out.kind = "memory"
		out.module = module
		out.writer = module.Store
		out.outbox = module.Store
		out.clock = module.Store
		if out.redis != nil {
			logger.Warn("REDIS_ADDR ignored for the memory store",
				"event", "bootstrap_redis_ignored",
				"module", "internal/app/bootstrap",
				"layer", "platform",
			)
		}
		return out, nil
	}

	if err := postgresadapter.Migrate(database.DB); err != nil {
		_ = out.Close()
		return nil, err
	}
	repo := postgresadapter.NewRepository(database.DB, logger)

	var locker ports.Locker = memory.NewKeyedLocker()
	if out.redis != nil {
		locker = redislock.New(out.redis, logger, redislock.WithTTL(cfg.LockTTL))
	}

	out.kind = database.Dialect
	out.module = complianceengine.NewModule(complianceengine.Dependencies{
		Municipalities: repo,
		Sites:          repo,
		Adjacency:      repo,
		Offsets:        repo,
		Events:         repo,
		Reallocations:  repo,
		Snapshots:      repo,
		Locker:         locker,
		Clock:          repo,
		IDGenerator:    repo,
		Logger:         logger,
	})
	out.writer = repo
	out.outbox = repo
	out.clock = repo
	return out, nil
}

func (s *storage) seed(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	jurisdiction, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, s.writer, jurisdiction); err != nil {
		return err
	}
	s.logger.Info("jurisdiction seeded",
		"event", "bootstrap_seed_applied",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"municipality_count", len(jurisdiction.Municipalities),
		"site_count", len(jurisdiction.Sites),
	)
	return nil
}

func (s *storage) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.database != nil {
		errs = append(errs, s.database.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
