package handlers

import (
	"io"
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat   *services.ChatService
	groups *services.GroupService
}

func NewChatHandler(chat *services.ChatService, groups *services.GroupService) *ChatHandler {
	return &ChatHandler{chat: chat, groups: groups}
}

// History returns the recent chat log for a group.
func (h *ChatHandler) History(c *gin.Context) {
	group, err := h.groups.GetByGid(c.Param("gid"), CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	messages, err := h.chat.List(group.ID, CurrentUserID(c), utils.StringToInt(c.DefaultQuery("limit", "200")))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type messageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) Post(c *gin.Context) {
	group, err := h.groups.GetByGid(c.Param("gid"), CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chat.Post(group.ID, CurrentUserID(c), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// Stream pushes new group messages to the client over server-sent events
// until the client disconnects.
func (h *ChatHandler) Stream(c *gin.Context) {
	group, err := h.groups.GetByGid(c.Param("gid"), CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	feed, cancel, err := h.chat.Subscribe(group.ID, CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent("message", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
