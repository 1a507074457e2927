package handlers

import (
	"net/http"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	items, total, err := h.notificationService.List(actor.UserID, c.Query("unread") == "true", page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetNotifications", "Failed to fetch notifications.")
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	respondList(c, items, total, page, pageSize)
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.UnreadCount(actor.UserID)
	if err != nil {
		respondServiceError(c, err, "GetUnreadCount", "Failed to count notifications.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(actor.UserID, id)
	if err != nil {
		respondServiceError(c, err, "MarkRead", "Failed to update notification.")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	updated, err := h.notificationService.MarkAllRead(actor.UserID)
	if err != nil {
		respondServiceError(c, err, "MarkAllRead", "Failed to update notifications.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
