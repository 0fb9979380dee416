package commentservice

import (
	"log/slog"

	httpadapter "quorum/contexts/deliberation/comment-service/adapters/http"
	"quorum/contexts/deliberation/comment-service/adapters/memory"
	"quorum/contexts/deliberation/comment-service/application/commands"
	"quorum/contexts/deliberation/comment-service/application/queries"
	"quorum/contexts/deliberation/comment-service/domain/entities"
	"quorum/contexts/deliberation/comment-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Comments commands.CommentUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Comments ports.CommentRepository
	Dossiers ports.DossierState
	Phases   ports.PhaseState
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	commentUseCase := commands.CommentUseCase{
		Comments: deps.Comments,
		Dossiers: deps.Dossiers,
		Phases:   deps.Phases,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	readUseCase := queries.CommentUseCase{
		Comments: deps.Comments,
	}
	return Module{
		Handler: httpadapter.Handler{
			Comments: commentUseCase,
			Reads:    readUseCase,
			Logger:   deps.Logger,
		},
		Comments: commentUseCase,
	}
}

// NewInMemoryModule wires the module on the in-memory store. Dossier and
// phase checks default to permissive stubs so comment tests run standalone.
func NewInMemoryModule(
	seed []entities.Comment,
	dossiers ports.DossierState,
	phases ports.PhaseState,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	if dossiers == nil {
		dossiers = memory.AllDossiersExist()
	}
	if phases == nil {
		phases = memory.NewPhaseStateStub(map[string]string{})
	}
	module := NewModule(Dependencies{
		Comments: store,
		Dossiers: dossiers,
		Phases:   phases,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
