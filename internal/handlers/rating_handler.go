package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rateVenueRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Score     int    `json:"score" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func RateVenue(rs *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		venueId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid venue ID format"))
			return
		}
		var req rateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		bookingId, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		rating, err := rs.RateVenue(c.Request.Context(), venueId, userId, bookingId, req.Score, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rating, "Rating saved"))
	}
}

func ListVenueRatings(rs *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid venue ID format"))
			return
		}
		ratings, err := rs.ListVenueRatings(c.Request.Context(), venueId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(ratings, ""))
	}
}
