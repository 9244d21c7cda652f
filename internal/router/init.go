package router

import (
	"github.com/dittoaji/user-profile-service/internal/application"
	"github.com/dittoaji/user-profile-service/internal/container"
	pginfra "github.com/dittoaji/user-profile-service/internal/infrastructure/postgres"
	handlers "github.com/dittoaji/user-profile-service/internal/interface/http"
	"github.com/dittoaji/user-profile-service/internal/router/modules"
)

// InitModules builds the feature modules from the container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	service := application.NewService(
		repo,
		container.GetLogger(),
		container.GetEventsPub(),
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetGCS(),
		cfg.GCSBucket,
	)
	handler := handlers.NewUserHandler(service, container.GetLogger())

	r.Add(modules.NewUserModule(handler, container.GetJWT()))
	r.Add(modules.NewHealthModule(container.GetPGPool()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
