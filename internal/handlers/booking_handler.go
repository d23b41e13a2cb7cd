package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createBookingRequest struct {
	VenueID             uuid.UUID              `json:"venue_id" binding:"required"`
	EventDate           string                 `json:"event_date" binding:"required"`
	DatesTimings        []models.ScheduleEntry `json:"dates_timings"`
	NumberOfDays        int                    `json:"number_of_days"`
	GuestCount          int                    `json:"guest_count" binding:"required,min=1"`
	EventType           string                 `json:"event_type"`
	SpecialRequirements string                 `json:"special_requirements"`
	InquiryOnly         bool                   `json:"inquiry_only"`
}

func CreateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		booking := &models.Booking{
			VenueID:             req.VenueID,
			EventDate:           req.EventDate,
			DatesTimings:        req.DatesTimings,
			NumberOfDays:        req.NumberOfDays,
			GuestCount:          req.GuestCount,
			EventType:           req.EventType,
			SpecialRequirements: req.SpecialRequirements,
		}
		created, err := bs.CreateInquiry(c.Request.Context(), booking, userId, claims.Email, req.InquiryOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Booking inquiry created"))
	}
}

func ListMyBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		bookings, total, err := bs.ListMyBookings(c.Request.Context(), userId, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, page, limit, total))
	}
}

func GetBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		booking, err := bs.GetBooking(c.Request.Context(), bookingId, userId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

type decisionRequest struct {
	Status string `json:"status" binding:"required"`
}

// DecideBooking is the venue owner's accept/reject endpoint.
func DecideBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if !claims.IsVenueOwner() && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only venue owners can decide on bookings"))
			return
		}
		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		var req decisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		decision, err := models.ParseBookingStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		ownerId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		booking, err := bs.Decide(c.Request.Context(), bookingId, ownerId, decision)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking status updated"))
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func CancelBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		var req cancelRequest
		_ = c.ShouldBindJSON(&req)
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		booking, err := bs.Cancel(c.Request.Context(), bookingId, userId, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking cancelled"))
	}
}

func SendPaymentReminder(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		booking, err := bs.SendPaymentReminder(c.Request.Context(), bookingId, userId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Payment reminder sent"))
	}
}

// ListVenueBookings lets a venue owner review inquiries for one venue.
func ListVenueBookings(bs *services.BookingService) gin.HandlerFunc {
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
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		ownerId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}
		bookings, total, err := bs.ListVenueBookings(c.Request.Context(), venueId, ownerId, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, page, limit, total))
	}
}
