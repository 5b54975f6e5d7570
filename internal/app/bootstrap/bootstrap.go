package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	envelopeservice "redpacket/contexts/gifting/envelope-service"
	"redpacket/contexts/gifting/envelope-service/adapters/memory"
	postgresadapter "redpacket/contexts/gifting/envelope-service/adapters/postgres"
	"redpacket/contexts/gifting/envelope-service/adapters/timer"
	workerapp "redpacket/contexts/gifting/envelope-service/application/workers"
	"redpacket/internal/platform/config"
	"redpacket/internal/platform/db"
	"redpacket/internal/platform/httpserver"
	"redpacket/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	relay        workerapp.AnnouncementRelay
	expirer      workerapp.FestiveRoundExpirer
	pollInterval time.Duration
	logger       *slog.Logger
}

// BuildAPI wires the serving process. Pool state always lives in the
// in-memory registry; ledger, festive claims, settlements and the
// announcement outbox move to postgres when POSTGRES_DSN is set.
func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	store := memory.NewStore()

	deps := envelopeservice.Dependencies{
		Registry:  store,
		Festive:   store,
		Ledger:    memory.NewLedger(),
		Archive:   store,
		Outbox:    store,
		Scheduler: timer.NewScheduler(logger),
		Clock:     store,
		IDGen:     store,
		Timeout:   cfg.DefaultTimeout,
		Interval:  cfg.DefaultInterval,
		RoundTTL:  cfg.FestiveRoundTTL,
		RankCount: cfg.RankCount,
		Currency:  cfg.Currency,
		Logger:    logger,
	}

	var pg *db.Postgres
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.Festive = repo
		deps.Ledger = repo
		deps.Archive = repo
		deps.Outbox = repo
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
	}

	module := envelopeservice.NewModule(deps)
	server := httpserver.New(module, cfg.AdminToken, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return &WorkerApp{
		postgres: pg,
		relay: workerapp.AnnouncementRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		expirer: workerapp.FestiveRoundExpirer{
			Festive:  repo,
			Clock:    postgresadapter.SystemClock{},
			RoundTTL: cfg.FestiveRoundTTL,
			Logger:   logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
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
		if err := w.expirer.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.relay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
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
