package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/venuebook/server/internal/helpers"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/services"
)

func currentUser(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

func pagination(c *gin.Context) (offset, limit int, ok bool) {
	limitStr := c.DefaultQuery("limit", "10")
	offsetStr := c.DefaultQuery("offset", "0")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}

// respondError maps the service error taxonomy onto status codes:
// validation problems are 400s, missing or foreign documents are 404s,
// lost state races are 409s, anything else a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse("not found"))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse("resource is not in the expected state"))
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("internal server error"))
	}
}
