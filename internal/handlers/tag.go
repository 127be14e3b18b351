package handlers

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// List returns every tag with its usage count, most used first.
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.ListAll()
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
