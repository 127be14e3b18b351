package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage  = 30
	cachedListPages = 3
)

type ChallengeHandler struct {
	challenges *services.ChallengeService
	solutions  *services.SolutionService
	votes      *services.VoteService
	stats      *services.OptimisticStats
	bookmarks  *services.BookmarkService
}

func NewChallengeHandler(
	challenges *services.ChallengeService,
	solutions *services.SolutionService,
	votes *services.VoteService,
	stats *services.OptimisticStats,
	bookmarks *services.BookmarkService,
) *ChallengeHandler {
	return &ChallengeHandler{
		challenges: challenges,
		solutions:  solutions,
		votes:      votes,
		stats:      stats,
		bookmarks:  bookmarks,
	}
}

// List returns a page of challenges, with per-challenge aggregates.
func (h *ChallengeHandler) List(c *gin.Context) {
	opts := services.ListOptions{
		Page:    utils.StringToInt(c.DefaultQuery("page", "1")),
		PerPage: utils.StringToInt(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage))),
		Tag:     c.Query("tag"),
		Query:   c.Query("q"),
	}

	// Unfiltered first pages at the default size are shared across users;
	// cache them briefly. Only these keys exist, so invalidateListCache
	// can enumerate every one of them.
	cacheKey := ""
	if opts.Tag == "" && opts.Query == "" && opts.Page <= cachedListPages && opts.PerPage == defaultPerPage {
		cacheKey = fmt.Sprintf("challenge:list:page:%d:%d", opts.Page, opts.PerPage)
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if data, ok := cached.(gin.H); ok {
				c.JSON(http.StatusOK, data)
				return
			}
		}
	}

	challenges, total, err := h.challenges.List(opts)
	if err != nil {
		RespondError(c, err)
		return
	}

	ids := make([]uint, len(challenges))
	for i, ch := range challenges {
		ids[i] = ch.ID
	}
	aggregates, err := h.votes.AggregateMany(models.SubjectChallenge, ids)
	if err != nil {
		RespondError(c, err)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(opts.PerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	data := gin.H{
		"challenges":  challenges,
		"aggregates":  aggregates,
		"total":       total,
		"page":        opts.Page,
		"total_pages": totalPages,
	}
	if cacheKey != "" {
		utils.GetCache().Set(cacheKey, data, 1*time.Minute)
	}
	c.JSON(http.StatusOK, data)
}

// Detail returns one challenge with its full solution thread, aggregates,
// and the viewer's own vote/bookmark state.
func (h *ChallengeHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")
	viewerID := CurrentUserID(c)

	challenge, err := h.challenges.GetByPid(pid)
	if err != nil {
		RespondError(c, err)
		return
	}

	thread, err := h.solutions.ListThread(services.SiteSolution, challenge.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	view, err := h.stats.View(models.SubjectChallenge, challenge.ID, viewerID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge":        challenge,
		"description_html": utils.RenderMarkdown(challenge.Description),
		"solutions":        thread,
		"likes":            view.Likes,
		"dislikes":         view.Dislikes,
		"net":              view.Net,
		"viewer_vote":      view.State.String(),
		"bookmark_count":   h.bookmarks.Count(challenge.ID),
		"is_bookmarked":    h.bookmarks.IsBookmarked(viewerID, challenge.ID),
	})
}

type challengeRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *ChallengeHandler) Create(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challenges.Create(CurrentUserID(c), services.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	invalidateListCache()
	c.JSON(http.StatusCreated, challenge)
}

func (h *ChallengeHandler) Update(c *gin.Context) {
	challenge, err := h.challenges.GetByPid(c.Param("pid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.challenges.Update(challenge.ID, CurrentUserID(c), services.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	invalidateListCache()
	c.JSON(http.StatusOK, updated)
}

func (h *ChallengeHandler) Delete(c *gin.Context) {
	challenge, err := h.challenges.GetByPid(c.Param("pid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.challenges.Delete(challenge.ID, CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}

	invalidateListCache()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func invalidateListCache() {
	for page := 1; page <= cachedListPages; page++ {
		utils.GetCache().Delete(fmt.Sprintf("challenge:list:page:%d:%d", page, defaultPerPage))
	}
}
