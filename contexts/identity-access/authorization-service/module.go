package authorization

import (
	"log/slog"
	"time"

	httpadapter "quorum/contexts/identity-access/authorization-service/adapters/http"
	"quorum/contexts/identity-access/authorization-service/adapters/memory"
	"quorum/contexts/identity-access/authorization-service/application/commands"
	"quorum/contexts/identity-access/authorization-service/application/queries"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime
// wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Cache      ports.PermissionCache
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	checkPermission := queries.CheckPermissionUseCase{
		Repository: deps.Repository,
		Cache:      deps.Cache,
		Clock:      deps.Clock,
		CacheTTL:   deps.CacheTTL,
		Logger:     deps.Logger,
	}
	listRoles := queries.ListUserRolesUseCase{
		Repository: deps.Repository,
	}
	roles := commands.RoleUseCase{
		Repository: deps.Repository,
		Cache:      deps.Cache,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			CheckPermission: checkPermission,
			ListRoles:       listRoles,
			Roles:           roles,
			Logger:          deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Cache:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		CacheTTL:   5 * time.Minute,
		Logger:     logger,
	})
	module.Store = store
	return module
}
