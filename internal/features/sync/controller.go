package sync

import (
	"strconv"

	"go-bizops/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

func (ctrl *SyncController) Run(c *fiber.Ctx) error {
	log, err := ctrl.Service.RunSync(c.UserContext(), c.Params("module"))
	if err != nil {
		status := apperr.StatusCode(err)
		body := fiber.Map{"error": err.Error()}
		if log != nil {
			body["log"] = log
		}
		return c.Status(status).JSON(body)
	}

	return c.JSON(log)
}

func (ctrl *SyncController) ListLogs(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	logs, err := ctrl.Service.ListLogs(c.UserContext(), c.Query("module"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(logs)
}
