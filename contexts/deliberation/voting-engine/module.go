package votingengine

import (
	"log/slog"

	httpadapter "quorum/contexts/deliberation/voting-engine/adapters/http"
	"quorum/contexts/deliberation/voting-engine/adapters/memory"
	"quorum/contexts/deliberation/voting-engine/application/commands"
	"quorum/contexts/deliberation/voting-engine/application/queries"
	"quorum/contexts/deliberation/voting-engine/domain/entities"
	"quorum/contexts/deliberation/voting-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Results queries.ResultsUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Votes  ports.VoteRepository
	Phases ports.PhaseReader
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Votes:  deps.Votes,
		Phases: deps.Phases,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Votes:  deps.Votes,
		Phases: deps.Phases,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:   voteUseCase,
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
		Results: resultsUseCase,
	}
}

// NewInMemoryModule wires the module on the in-memory store with the given
// phase projection source.
func NewInMemoryModule(seed []entities.Vote, phases ports.PhaseReader, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	if phases == nil {
		phases = memory.NewPhaseReaderStub(nil)
	}
	module := NewModule(Dependencies{
		Votes:  store,
		Phases: phases,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
