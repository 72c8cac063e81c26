package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Samuel1505/Event-Ticketing/internal/dto"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/pkg/response"
)

// NotificationHandler serves the notification feed
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List handles GET /notifications?after=&limit= - notifications in commit order
func (h *NotificationHandler) List(c *gin.Context) {
	var filter dto.NotificationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = service.DefaultNotificationLimit
	}
	if limit > service.MaxNotificationLimit {
		limit = service.MaxNotificationLimit
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), filter.After, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to read notifications"))
		return
	}

	next := filter.After
	if n := len(notifications); n > 0 {
		next = notifications[n-1].Seq
	}
	c.JSON(http.StatusOK, response.Page(notifications, limit, next, len(notifications) == limit))
}
