package bulk_operation

import (
	"go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BulkOperationApi struct {
	Controller *BulkOperationController
	config     *config.Config
}

func NewBulkOperationApi(controller *BulkOperationController, config *config.Config) api.Route {
	return &BulkOperationApi{
		Controller: controller,
		config:     config,
	}
}

func (api *BulkOperationApi) Setup(app *fiber.App) {
	group := app.Group("/api/bulk", middleware.AuthMiddleware(api.config.SkipAuth))
	group.Post("/:module/execute", api.Controller.Execute)
	group.Post("/:module/export", api.Controller.Export)
	group.Get("/operations", api.Controller.List)
	group.Get("/operations/:id", api.Controller.Get)
}
