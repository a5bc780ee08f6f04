package user

import (
	"go-bizops/internal/common/apperr"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{
		Service: service,
	}
}

func (ctrl *UserController) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := ctrl.Service.Register(c.UserContext(), req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (ctrl *UserController) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	token, user, err := ctrl.Service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (ctrl *UserController) Me(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := ctrl.Service.Get(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(user)
}

func (ctrl *UserController) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if claims.Role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
	}

	users, err := ctrl.Service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(users)
}
