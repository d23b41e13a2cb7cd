package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/services"
)

func CreateVenueHandler(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if !claims.IsVenueOwner() && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only venue owners can create venues"))
			return
		}
		var venue models.Venue
		if err := c.ShouldBindJSON(&venue); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		ownerId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		created, err := v.CreateVenue(c.Request.Context(), &venue, ownerId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Venue created successfully"))
	}
}

func ListVenues(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		venues, total, err := v.ListVenues(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(venues, page, limit, total))
	}
}

func GetVenueByID(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID := strings.TrimSpace(c.Param("id"))
		parsedId, err := uuid.Parse(venueID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid venue ID format"))
			return
		}
		venue, err := v.GetVenueByID(c.Request.Context(), parsedId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(venue, ""))
	}
}

func UpdateVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		parsedId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid venue ID format"))
			return
		}
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		ownerId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		venue, err := v.UpdateVenue(c.Request.Context(), parsedId, ownerId, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(venue, "Venue updated successfully"))
	}
}

func DeleteVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		parsedId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid venue ID format"))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		// Verify ownership before deleting.
		venue, err := v.GetVenueByID(c.Request.Context(), parsedId)
		if err != nil {
			respondError(c, err)
			return
		}
		if venue.OwnerId != userId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("forbidden: you can only delete your own venues"))
			return
		}

		if err := v.DeleteVenue(c.Request.Context(), parsedId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "venue deleted successfully"))
	}
}

func ListVenuesByOwner(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		requestedId, err := uuid.Parse(c.Param("owner_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid owner ID format"))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		if requestedId != userId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("unauthorized access"))
			return
		}
		venues, total, err := v.ListVenuesByOwner(c.Request.Context(), requestedId, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(venues, page, limit, total))
	}
}
