package bulk_operation

import (
	"go-bizops/internal/common/apperr"
	"go-bizops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BulkOperationController struct {
	Service BulkOperationService
}

func NewBulkOperationController(service BulkOperationService) *BulkOperationController {
	return &BulkOperationController{
		Service: service,
	}
}

func (ctrl *BulkOperationController) Execute(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		Type      BulkOperationType `json:"type"`
		RecordIDs []string          `json:"record_ids"`
		Fields    map[string]any    `json:"fields"`
		Field     string            `json:"field"`
		Value     any               `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	module := c.Params("module")
	ctx := c.UserContext()

	var report *BulkReport
	var err error
	switch req.Type {
	case BulkTypeUpdate:
		report, err = ctrl.Service.BulkUpdate(ctx, module, req.RecordIDs, req.Fields, claims.UserID)
	case BulkTypeDelete:
		report, err = ctrl.Service.BulkDelete(ctx, module, req.RecordIDs, claims.UserID)
	case BulkTypeArchive:
		report, err = ctrl.Service.BulkArchive(ctx, module, req.RecordIDs, claims.UserID)
	case BulkTypeAssign:
		report, err = ctrl.Service.BulkAssign(ctx, module, req.RecordIDs, req.Field, req.Value, claims.UserID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid operation type"})
	}
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}

func (ctrl *BulkOperationController) Export(c *fiber.Ctx) error {
	if _, ok := middleware.Claims(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		RecordIDs []string `json:"record_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	data, filename, err := ctrl.Service.Export(c.UserContext(), c.Params("module"), req.RecordIDs, c.Query("format"))
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if c.Query("format") == "csv" {
		c.Set("Content-Type", "text/csv")
	} else {
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	return c.Send(data)
}

func (ctrl *BulkOperationController) Get(c *fiber.Ctx) error {
	op, err := ctrl.Service.GetOperation(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Operation not found"})
	}

	return c.JSON(op)
}

func (ctrl *BulkOperationController) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	ops, err := ctrl.Service.GetUserOperations(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(ops)
}
