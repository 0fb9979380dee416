package phaseservice

import (
	"log/slog"

	httpadapter "quorum/contexts/instruction/phase-service/adapters/http"
	"quorum/contexts/instruction/phase-service/adapters/memory"
	"quorum/contexts/instruction/phase-service/application/commands"
	"quorum/contexts/instruction/phase-service/application/queries"
	"quorum/contexts/instruction/phase-service/domain/entities"
	"quorum/contexts/instruction/phase-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Phases   ports.PhaseRepository
	Dossiers ports.DossierState
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	phaseUseCase := commands.PhaseUseCase{
		Phases:   deps.Phases,
		Dossiers: deps.Dossiers,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	readUseCase := queries.PhaseUseCase{
		Phases: deps.Phases,
	}
	return Module{
		Handler: httpadapter.Handler{
			Phases: phaseUseCase,
			Reads:  readUseCase,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on the in-memory store. The dossier
// state projection defaults to EN_COURS so phase tests run standalone.
func NewInMemoryModule(seed []entities.Phase, dossiers ports.DossierState, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	if dossiers == nil {
		dossiers = memory.StaticDossierStatus("EN_COURS")
	}
	module := NewModule(Dependencies{
		Phases:   store,
		Dossiers: dossiers,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
