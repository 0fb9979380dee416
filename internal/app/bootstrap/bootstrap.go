package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	commentservice "quorum/contexts/deliberation/comment-service"
	commentpostgres "quorum/contexts/deliberation/comment-service/adapters/postgres"
	votingengine "quorum/contexts/deliberation/voting-engine"
	votepostgres "quorum/contexts/deliberation/voting-engine/adapters/postgres"
	authorization "quorum/contexts/identity-access/authorization-service"
	authmemory "quorum/contexts/identity-access/authorization-service/adapters/memory"
	authpostgres "quorum/contexts/identity-access/authorization-service/adapters/postgres"
	dossierservice "quorum/contexts/instruction/dossier-service"
	dossierpostgres "quorum/contexts/instruction/dossier-service/adapters/postgres"
	dossierworkers "quorum/contexts/instruction/dossier-service/application/workers"
	phaseservice "quorum/contexts/instruction/phase-service"
	phasepostgres "quorum/contexts/instruction/phase-service/adapters/postgres"
	phaseworkers "quorum/contexts/instruction/phase-service/application/workers"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
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
	outboxRelay  dossierworkers.WorkflowOutboxRelay
	reminder     phaseworkers.PhaseReminder
	relayEnabled bool
	reminderOn   bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	dossierRepo := dossierpostgres.NewRepository(pg.DB, logger)
	phaseRepo := phasepostgres.NewRepository(pg.DB, logger)
	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	commentRepo := commentpostgres.NewRepository(pg.DB, logger)
	authRepo := authpostgres.NewRepository(pg.DB, logger)

	voteModule := votingengine.NewModule(votingengine.Dependencies{
		Votes:  voteRepo,
		Phases: voteRepo,
		Outbox: voteRepo,
		Clock:  votepostgres.SystemClock{},
		IDGen:  votepostgres.UUIDGenerator{},
		Logger: logger,
	})
	commentModule := commentservice.NewModule(commentservice.Dependencies{
		Comments: commentRepo,
		Dossiers: commentRepo,
		Phases:   commentRepo,
		Outbox:   commentRepo,
		Clock:    commentpostgres.SystemClock{},
		IDGen:    commentpostgres.UUIDGenerator{},
		Logger:   logger,
	})
	dossierModule := dossierservice.NewModule(dossierservice.Dependencies{
		Dossiers:  dossierRepo,
		Phases:    dossierRepo,
		Comments:  dossierCommentAppender{comments: commentModule.Comments},
		Decisions: voteDecisionSource{results: voteModule.Results},
		Outbox:    dossierRepo,
		Clock:     dossierpostgres.SystemClock{},
		IDGen:     dossierpostgres.UUIDGenerator{},
		Logger:    logger,
	})
	phaseModule := phaseservice.NewModule(phaseservice.Dependencies{
		Phases:   phaseRepo,
		Dossiers: phaseRepo,
		Outbox:   phaseRepo,
		Clock:    phasepostgres.SystemClock{},
		IDGen:    phasepostgres.UUIDGenerator{},
		Logger:   logger,
	})

	// Role assignments live in postgres; the TTL permission cache stays
	// process-local.
	authCache := authmemory.NewStore()
	authModule := authorization.NewModule(authorization.Dependencies{
		Repository: authRepo,
		Cache:      authCache,
		Outbox:     authRepo,
		Clock:      authpostgres.SystemClock{},
		IDGen:      authpostgres.UUIDGenerator{},
		CacheTTL:   5 * time.Minute,
		Logger:     logger,
	})

	server := httpserver.New(
		dossierModule,
		phaseModule,
		voteModule,
		commentModule,
		authModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
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

	dossierRepo := dossierpostgres.NewRepository(pg.DB, logger)
	phaseRepo := phasepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: dossierworkers.WorkflowOutboxRelay{
			Outbox:    dossierRepo,
			Publisher: kafka,
			Clock:     dossierpostgres.SystemClock{},
			Topic:     "workflow.events",
			BatchSize: 100,
			Logger:    logger,
		},
		reminder: phaseworkers.PhaseReminder{
			Phases: phaseRepo,
			Outbox: phaseRepo,
			Clock:  phasepostgres.SystemClock{},
			IDGen:  phasepostgres.UUIDGenerator{},
			Logger: logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		reminderOn:   cfg.EnablePhaseReminder,
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
		"outbox_relay_enabled", w.relayEnabled,
		"phase_reminder_enabled", w.reminderOn,
	)

	for {
		if w.reminderOn {
			if err := w.reminder.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
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
