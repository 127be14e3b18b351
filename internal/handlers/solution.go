package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type SolutionHandler struct {
	solutions  *services.SolutionService
	challenges *services.ChallengeService
	votes      *services.VoteService
	notify     *services.NotificationService
}

func NewSolutionHandler(
	solutions *services.SolutionService,
	challenges *services.ChallengeService,
	votes *services.VoteService,
	notify *services.NotificationService,
) *SolutionHandler {
	return &SolutionHandler{
		solutions:  solutions,
		challenges: challenges,
		votes:      votes,
		notify:     notify,
	}
}

type solutionRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// Create posts a solution or a reply under a site challenge and notifies
// the relevant author.
func (h *SolutionHandler) Create(c *gin.Context) {
	challenge, err := h.challenges.GetByPid(c.Param("pid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	var req solutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := CurrentUserID(c)
	record, err := h.solutions.Add(services.SiteSolution, challenge.ID, userID, req.Content, req.ParentID)
	if err != nil {
		RespondError(c, err)
		return
	}

	actor := CurrentUser(c)
	link := fmt.Sprintf("%s/challenges/%s", os.Getenv("SITE_URL"), challenge.Pid)
	if req.ParentID == nil {
		h.notify.NotifySolution(challenge.UserID, userID, challenge.Title, link)
	} else {
		var parent models.Solution
		var parentAuthor models.User
		if db.DB.First(&parent, *req.ParentID).Error == nil &&
			db.DB.First(&parentAuthor, parent.UserID).Error == nil {
			h.notify.NotifyReply(parent.UserID, userID, parentAuthor.Email, actor.Username, challenge.Title, record.Content, link)
		}
	}

	c.JSON(http.StatusCreated, record)
}

// Thread returns the full two-level thread for a challenge.
func (h *SolutionHandler) Thread(c *gin.Context) {
	challenge, err := h.challenges.GetByPid(c.Param("pid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	thread, err := h.solutions.ListThread(services.SiteSolution, challenge.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	ids := make([]uint, 0, len(thread))
	for _, rec := range thread {
		ids = append(ids, rec.ID)
		for _, reply := range rec.Replies {
			ids = append(ids, reply.ID)
		}
	}
	aggregates, err := h.votes.AggregateMany(models.SubjectSolution, ids)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"solutions":  thread,
		"aggregates": aggregates,
	})
}

type solutionUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *SolutionHandler) Update(c *gin.Context) {
	var req solutionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.solutions.Update(services.SiteSolution, utils.StringToUint(c.Param("id")), CurrentUserID(c), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *SolutionHandler) Delete(c *gin.Context) {
	if err := h.solutions.Delete(services.SiteSolution, utils.StringToUint(c.Param("id")), CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
