package saved_filter

import (
	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/search"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterController struct {
	Service SavedFilterService
}

func NewSavedFilterController(service SavedFilterService) *SavedFilterController {
	return &SavedFilterController{
		Service: service,
	}
}

func (ctrl *SavedFilterController) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	filters, err := ctrl.Service.List(c.UserContext(), c.Query("module"), claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(filters)
}

func (ctrl *SavedFilterController) GetDefault(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	filter, err := ctrl.Service.GetDefault(c.UserContext(), c.Params("module"), claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if filter == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No default filter"})
	}

	return c.JSON(filter)
}

func (ctrl *SavedFilterController) Create(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		Name   string              `json:"name"`
		Module string              `json:"module"`
		Filter search.SearchFilter `json:"filter"`
		SaveOptions
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	saved, err := ctrl.Service.Save(c.UserContext(), req.Name, req.Module, req.Filter, req.SaveOptions, claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (ctrl *SavedFilterController) Update(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var fields UpdateFields
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	updated, err := ctrl.Service.Update(c.UserContext(), c.Params("id"), fields, claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(updated)
}

func (ctrl *SavedFilterController) Delete(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.Service.Delete(c.UserContext(), c.Params("id"), claims.UserID); err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"deleted": true})
}

func (ctrl *SavedFilterController) Duplicate(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	copy, err := ctrl.Service.Duplicate(c.UserContext(), c.Params("id"), req.Name, claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(copy)
}
