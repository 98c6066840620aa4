package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/notify"
)

// NotificationHandler bandeja in-app del usuario autenticado.
type NotificationHandler struct {
	svc *notify.Service
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(svc *notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List GET /api/notifications?unread=true
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.svc.ListMine(c.UserContext(), GetUserID(c), c.QueryBool("unread", false), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.svc.UnreadCount(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{Unread: n})
}

// MarkRead POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.svc.MarkRead(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.svc.MarkAllRead(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
