package notification

import (
	"strconv"

	"go-bizops/internal/middleware"
	"go-bizops/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	service NotificationService
	hub     *Hub
}

func NewNotificationController(service NotificationService, hub *Hub) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
	}
}

func (ctrl *NotificationController) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	if page < 1 {
		page = 1
	}

	notifications, total, err := ctrl.service.GetUserNotifications(c.UserContext(), claims.UserID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := ctrl.service.GetUnreadCount(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"count": count})
}

func (ctrl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.service.MarkAsRead(c.UserContext(), c.Params("id"), claims.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func (ctrl *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := ctrl.service.MarkAllAsRead(c.UserContext(), claims.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// HandleWebSocket keeps the connection open for pushed notifications. The
// client is not expected to send anything; reads only detect disconnect.
func (ctrl *NotificationController) HandleWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		c.Close()
		return
	}

	ctrl.hub.Register(claims.UserID, c)
	defer func() {
		ctrl.hub.Unregister(claims.UserID, c)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
