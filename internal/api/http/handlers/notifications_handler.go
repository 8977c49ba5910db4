package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/dto"
	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

const defaultPageSize = 20

// NotificationsHandler exposes the caller's notification inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}

	var query dto.NotificationListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(query); err != nil {
		return err
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	items, err := h.notifications.List(c.UserContext(), identity, service.NotificationListFilter{
		UnreadOnly: query.Unread,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewNotificationResponses(items),
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread_count": count}})
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	notificationID, err := pathID(c, "notification")
	if err != nil {
		return err
	}
	notification, err := h.notifications.MarkRead(c.UserContext(), identity, notificationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationResponse(*notification)})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	changed, err := h.notifications.MarkAllRead(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": changed}})
}
