package handlers

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct {
	bookmarks  *services.BookmarkService
	challenges *services.ChallengeService
}

func NewBookmarkHandler(bookmarks *services.BookmarkService, challenges *services.ChallengeService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, challenges: challenges}
}

// Toggle saves the challenge for the user, or removes an existing save.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	challenge, err := h.challenges.GetByPid(c.Param("pid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	bookmarked, count, err := h.bookmarks.Toggle(CurrentUserID(c), challenge.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarked": bookmarked,
		"count":      count,
	})
}

// ListMine returns the user's saved challenges, most recently saved first.
func (h *BookmarkHandler) ListMine(c *gin.Context) {
	challenges, err := h.bookmarks.ListForUser(CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}
