package notification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// NotificationHandler handles notification-related API endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications handles GET /api/v1/notifications
// Returns one page of the caller's notifications with the unread count
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID := handlers.Actor(c).UserID
	page := handlers.PageFrom(c)

	notifications, total, err := h.notificationService.GetNotificationsByUser(c.UserContext(), services.ListNotificationsOptions{
		UserID:     userID,
		UnreadOnly: c.QueryBool("unread_only"),
		Category:   c.Query("category"),
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return response.FromError(c, err)
	}

	unreadCount, err := h.notificationService.GetUnreadCount(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"notifications": notifications,
		"unread_count":  unreadCount,
		"pagination":    response.CalculatePagination(page.Page, page.Limit, total),
	})
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notificationService.GetUnreadCount(c.UserContext(), handlers.Actor(c).UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"unread_count": count,
	})
}

// MarkAsRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.notificationService.MarkAsRead(c.UserContext(), id, handlers.Actor(c).UserID); err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	count, err := h.notificationService.MarkAllAsRead(c.UserContext(), handlers.Actor(c).UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "All notifications marked as read", fiber.Map{
		"count": count,
	})
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.notificationService.DeleteNotification(c.UserContext(), id, handlers.Actor(c).UserID); err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "Notification deleted", nil)
}

// DeleteAllNotifications handles DELETE /api/v1/notifications
func (h *NotificationHandler) DeleteAllNotifications(c *fiber.Ctx) error {
	count, err := h.notificationService.DeleteAllNotifications(c.UserContext(), handlers.Actor(c).UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "All notifications deleted", fiber.Map{
		"count": count,
	})
}
