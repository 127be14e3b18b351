package handlers

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notify *services.NotificationService
}

func NewNotificationHandler(notify *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notify: notify}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	notifications, err := h.notify.List(userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        h.notify.UnreadCount(userID),
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notify.MarkRead(utils.StringToUint(c.Param("id")), CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notify.MarkAllRead(CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notify.Delete(utils.StringToUint(c.Param("id")), CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
