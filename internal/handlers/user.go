package handlers

import (
	"net/http"
	"strings"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	challenges *services.ChallengeService
}

func NewUserHandler(challenges *services.ChallengeService) *UserHandler {
	return &UserHandler{challenges: challenges}
}

// Profile returns a user's public page: who they are and what they posted.
func (h *UserHandler) Profile(c *gin.Context) {
	var user models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	challenges, total, err := h.challenges.List(services.ListOptions{
		Page:    utils.StringToInt(c.DefaultQuery("page", "1")),
		PerPage: 30,
		UserID:  user.ID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	var solutionCount int64
	db.DB.Model(&models.Solution{}).Where("user_id = ?", user.ID).Count(&solutionCount)

	c.JSON(http.StatusOK, gin.H{
		"username":       user.Username,
		"avatar":         user.Avatar,
		"bio":            user.Bio,
		"days_joined":    utils.GetDaysSinceJoined(user.CreatedAt),
		"challenges":     challenges,
		"total":          total,
		"solution_count": solutionCount,
	})
}

type settingsRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
}

// UpdateSettings changes the signed-in user's display fields.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := CurrentUser(c)
	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = username
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	user.Bio = req.Bio

	if err := db.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type passwordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := CurrentUser(c)
	if !utils.CheckPasswordHash(req.OldPassword, user.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is wrong"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
		return
	}
	if err := db.DB.Model(user).Update("password", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Emojis returns the avatar choices offered on the settings page.
func (h *UserHandler) Emojis(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"emojis": utils.GetCommonEmojis()})
}
