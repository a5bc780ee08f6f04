package user

import (
	"go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	Controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) api.Route {
	return &UserApi{
		Controller: controller,
		config:     config,
	}
}

func (api *UserApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", api.Controller.Login)

	group := app.Group("/api/users", middleware.AuthMiddleware(api.config.SkipAuth))
	group.Post("/", api.Controller.Register)
	group.Get("/me", api.Controller.Me)
	group.Get("/", api.Controller.List)
}
