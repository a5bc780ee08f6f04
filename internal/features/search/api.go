package search

import (
	"go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type SearchApi struct {
	Controller *SearchController
	Live       *LiveController
	config     *config.Config
}

func NewSearchApi(controller *SearchController, live *LiveController, config *config.Config) api.Route {
	return &SearchApi{
		Controller: controller,
		Live:       live,
		config:     config,
	}
}

func (api *SearchApi) Setup(app *fiber.App) {
	group := app.Group("/api/search", middleware.AuthMiddleware(api.config.SkipAuth))
	group.Get("/modules", api.Controller.Modules)
	group.Get("/:module/schema", api.Controller.Schema)
	group.Post("/:module", api.Controller.Search)

	app.Get("/api/ws/search/:module",
		middleware.AuthMiddleware(api.config.SkipAuth),
		websocket.New(api.Live.Handle))
}
