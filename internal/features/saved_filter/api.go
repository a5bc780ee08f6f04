package saved_filter

import (
	"go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterApi struct {
	Controller *SavedFilterController
	config     *config.Config
}

func NewSavedFilterApi(controller *SavedFilterController, config *config.Config) api.Route {
	return &SavedFilterApi{
		Controller: controller,
		config:     config,
	}
}

func (api *SavedFilterApi) Setup(app *fiber.App) {
	group := app.Group("/api/saved-filters", middleware.AuthMiddleware(api.config.SkipAuth))
	group.Get("/", api.Controller.List)
	group.Get("/default/:module", api.Controller.GetDefault)
	group.Post("/", api.Controller.Create)
	group.Put("/:id", api.Controller.Update)
	group.Delete("/:id", api.Controller.Delete)
	group.Post("/:id/duplicate", api.Controller.Duplicate)
}
