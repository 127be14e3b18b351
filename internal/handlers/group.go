package handlers

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groups     *services.GroupService
	challenges *services.ChallengeService
	solutions  *services.SolutionService
	votes      *services.VoteService
	notify     *services.NotificationService
}

func NewGroupHandler(
	groups *services.GroupService,
	challenges *services.ChallengeService,
	solutions *services.SolutionService,
	votes *services.VoteService,
	notify *services.NotificationService,
) *GroupHandler {
	return &GroupHandler{
		groups:     groups,
		challenges: challenges,
		solutions:  solutions,
		votes:      votes,
		notify:     notify,
	}
}

type groupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.Create(CurrentUserID(c), req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListMine returns the groups the signed-in user belongs to.
func (h *GroupHandler) ListMine(c *gin.Context) {
	groups, err := h.groups.ListForUser(CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *GroupHandler) Detail(c *gin.Context) {
	viewerID := CurrentUserID(c)
	group, err := h.groups.GetByGid(c.Param("gid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	members, err := h.groups.Members(group.ID, viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":    group,
		"members":  members,
		"is_admin": h.groups.IsAdmin(group.ID, viewerID),
	})
}

func (h *GroupHandler) Leave(c *gin.Context) {
	group, err := h.groups.GetByGid(c.Param("gid"), CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.groups.Leave(group.ID, CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *GroupHandler) Delete(c *gin.Context) {
	group, err := h.groups.GetByGid(c.Param("gid"), CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.groups.Delete(group.ID, CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite asks another registered user, looked up by email, to join.
func (h *GroupHandler) Invite(c *gin.Context) {
	inviterID := CurrentUserID(c)
	group, err := h.groups.GetByGid(c.Param("gid"), inviterID)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var invitee models.User
	if err := db.DB.Where("email = ?", req.Email).First(&invitee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no account with that email"})
		return
	}

	invitation, err := h.groups.Invite(group.ID, inviterID, invitee.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	inviter := CurrentUser(c)
	h.notify.NotifyInvite(invitee.ID, inviterID, invitee.Email, inviter.Username, group.Name)

	c.JSON(http.StatusCreated, invitation)
}

// ListInvitations returns the signed-in user's pending invitations.
func (h *GroupHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.groups.ListInvitations(CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

type respondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *GroupHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.groups.Respond(utils.StringToUint(c.Param("id")), CurrentUserID(c), *req.Accept)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitation)
}

// ListChallenges returns the group's private challenges with counters.
func (h *GroupHandler) ListChallenges(c *gin.Context) {
	viewerID := CurrentUserID(c)
	group, err := h.groups.GetByGid(c.Param("gid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	challenges, err := h.challenges.ListGroup(group.ID, viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	ids := make([]uint, len(challenges))
	for i, ch := range challenges {
		ids[i] = ch.ID
	}
	aggregates, err := h.votes.AggregateMany(models.SubjectGroupChallenge, ids)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenges": challenges,
		"aggregates": aggregates,
	})
}

func (h *GroupHandler) CreateChallenge(c *gin.Context) {
	viewerID := CurrentUserID(c)
	group, err := h.groups.GetByGid(c.Param("gid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challenges.CreateGroup(group.ID, viewerID, services.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

func (h *GroupHandler) ChallengeDetail(c *gin.Context) {
	viewerID := CurrentUserID(c)
	challenge, err := h.challenges.GetGroupByPid(c.Param("pid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	thread, err := h.solutions.ListThread(services.GroupSolution, challenge.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	aggregate, err := h.votes.Aggregate(models.SubjectGroupChallenge, challenge.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge":        challenge,
		"description_html": utils.RenderMarkdown(challenge.Description),
		"solutions":        thread,
		"likes":            aggregate.Likes,
		"dislikes":         aggregate.Dislikes,
		"net":              aggregate.Net,
	})
}

func (h *GroupHandler) UpdateChallenge(c *gin.Context) {
	viewerID := CurrentUserID(c)
	challenge, err := h.challenges.GetGroupByPid(c.Param("pid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.challenges.UpdateGroup(challenge.ID, viewerID, services.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *GroupHandler) DeleteChallenge(c *gin.Context) {
	viewerID := CurrentUserID(c)
	challenge, err := h.challenges.GetGroupByPid(c.Param("pid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.challenges.DeleteGroup(challenge.ID, viewerID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *GroupHandler) CreateSolution(c *gin.Context) {
	viewerID := CurrentUserID(c)
	challenge, err := h.challenges.GetGroupByPid(c.Param("pid"), viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req solutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.solutions.Add(services.GroupSolution, challenge.ID, viewerID, req.Content, req.ParentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *GroupHandler) UpdateSolution(c *gin.Context) {
	var req solutionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.solutions.Update(services.GroupSolution, utils.StringToUint(c.Param("id")), CurrentUserID(c), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *GroupHandler) DeleteSolution(c *gin.Context) {
	if err := h.solutions.Delete(services.GroupSolution, utils.StringToUint(c.Param("id")), CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
