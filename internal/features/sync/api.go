package sync

import (
	"go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	Controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) api.Route {
	return &SyncApi{
		Controller: controller,
		config:     config,
	}
}

func (api *SyncApi) Setup(app *fiber.App) {
	group := app.Group("/api/sync", middleware.AuthMiddleware(api.config.SkipAuth))
	group.Post("/:module/run", api.Controller.Run)
	group.Get("/logs", api.Controller.ListLogs)
}
