package handlers

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	stats *services.OptimisticStats
}

func NewVoteHandler(stats *services.OptimisticStats) *VoteHandler {
	return &VoteHandler{stats: stats}
}

type voteRequest struct {
	Subject   string `json:"subject" binding:"required"`
	SubjectID uint   `json:"subject_id" binding:"required"`
	IsUpvote  *bool  `json:"is_upvote" binding:"required"`
}

// Cast applies a vote optimistically and answers with the adjusted
// counters right away; the ledger write settles in the background.
func (h *VoteHandler) Cast(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, _, err := h.stats.Apply(models.SubjectType(req.Subject), req.SubjectID, CurrentUserID(c), *req.IsUpvote)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes":       view.Likes,
		"dislikes":    view.Dislikes,
		"net":         view.Net,
		"viewer_vote": view.State.String(),
	})
}

// View returns the settled counters and the viewer's own vote for one
// subject.
func (h *VoteHandler) View(c *gin.Context) {
	subject := models.SubjectType(c.Param("subject"))
	subjectID := utils.StringToUint(c.Param("id"))

	view, err := h.stats.View(subject, subjectID, CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes":       view.Likes,
		"dislikes":    view.Dislikes,
		"net":         view.Net,
		"viewer_vote": view.State.String(),
	})
}
