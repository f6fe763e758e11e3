package router

import (
	"context"

	"github.com/oksasatya/go-jwt-account-service/internal/application"
	"github.com/oksasatya/go-jwt-account-service/internal/container"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	pginfra "github.com/oksasatya/go-jwt-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-jwt-account-service/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-jwt-account-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-jwt-account-service/internal/interface/http"
	"github.com/oksasatya/go-jwt-account-service/internal/router/modules"
)

// AccountDeps holds the services built for the account modules.
type AccountDeps struct {
	Auth     *application.AuthService
	Sessions *application.SessionService
}

func buildAccountDeps() AccountDeps {
	logger := container.GetLogger()
	repo := pginfra.NewUserRepository(container.GetPGPool())
	hasher := container.GetHasher()

	// a nil *Blocklist must not reach the interface
	var blocklist application.Blocklist
	if rdb := container.GetRedis(); rdb != nil {
		blocklist = redisstore.NewBlocklist(rdb)
	}
	var audit application.Auditor
	if idx := search.NewAuditIndexer(container.GetES(), container.GetConfig().ESAuditIndex, logger); idx.Enabled() {
		audit = idx
	}

	return AccountDeps{
		Auth:     application.NewAuthService(repo, account.NewMachine(hasher), container.GetMailer(), audit, logger),
		Sessions: application.NewSessionService(repo, container.GetJWT(), hasher, blocklist, logger),
	}
}

func healthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return container.GetPGPool().Ping(ctx) },
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry.
// Call once during startup; the returned services are needed for graceful shutdown.
func InitModules(r *Registry) AccountDeps {
	deps := buildAccountDeps()
	logger := container.GetLogger()

	authHandler := handlers.NewAuthHandler(deps.Auth, logger)
	userHandler := handlers.NewUserHandler(deps.Sessions, deps.Auth, logger)

	r.Add(modules.NewAuthModule(authHandler, userHandler))
	r.Add(modules.NewUserModule(userHandler, deps.Sessions, logger))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(healthChecks())))
	r.AddWeb(modules.NewWebModule(handlers.NewWebHandler(deps.Auth, logger)))
	return deps
}
