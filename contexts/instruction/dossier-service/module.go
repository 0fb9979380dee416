package dossierservice

import (
	"log/slog"

	httpadapter "quorum/contexts/instruction/dossier-service/adapters/http"
	"quorum/contexts/instruction/dossier-service/adapters/memory"
	"quorum/contexts/instruction/dossier-service/application/commands"
	"quorum/contexts/instruction/dossier-service/application/queries"
	"quorum/contexts/instruction/dossier-service/domain/entities"
	"quorum/contexts/instruction/dossier-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Dossiers  ports.DossierRepository
	Phases    ports.PhaseState
	Comments  ports.CommentAppender
	Decisions ports.DecisionSource
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	dossierUseCase := commands.DossierUseCase{
		Dossiers:  deps.Dossiers,
		Phases:    deps.Phases,
		Comments:  deps.Comments,
		Decisions: deps.Decisions,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	readUseCase := queries.DossierUseCase{
		Dossiers: deps.Dossiers,
	}
	return Module{
		Handler: httpadapter.Handler{
			Dossiers: dossierUseCase,
			Reads:    readUseCase,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on the in-memory store. Phase gate,
// comment appender, and decision source are optional; absent collaborators
// fall back to permissive no-ops suitable for isolated tests.
func NewInMemoryModule(
	seed []entities.Dossier,
	phases ports.PhaseState,
	comments ports.CommentAppender,
	decisions ports.DecisionSource,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	if phases == nil {
		phases = memory.NoActivePhases
	}
	module := NewModule(Dependencies{
		Dossiers:  store,
		Phases:    phases,
		Comments:  comments,
		Decisions: decisions,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
