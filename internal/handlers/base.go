package handlers

import (
	"errors"
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/middleware"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the session user loaded by middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// CurrentUserID returns the session user's id, 0 when signed out. Services
// treat 0 as unauthenticated, so handlers can pass it through unchecked.
func CurrentUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// RespondError maps the service error taxonomy onto HTTP statuses. Every
// persistence-layer failure stops here; nothing propagates past handlers.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not allowed to do that"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please retry"})
	}
}
