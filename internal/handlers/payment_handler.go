package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createOrderRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

func CreatePaymentOrder(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req createOrderRequest
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
		order, err := ps.CreateOrder(c.Request.Context(), bookingId, userId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(order, "Payment order created"))
	}
}

type verifyPaymentRequest struct {
	BookingID         string `json:"booking_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

func VerifyPayment(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req verifyPaymentRequest
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
		booking, err := ps.VerifyPayment(c.Request.Context(), bookingId, userId,
			req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Payment verified"))
	}
}

type paymentFailureRequest struct {
	BookingID   string `json:"booking_id" binding:"required"`
	Description string `json:"description"`
}

func ReportPaymentFailure(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req paymentFailureRequest
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
		booking, err := ps.ReportFailure(c.Request.Context(), bookingId, userId, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Payment failure recorded"))
	}
}

func GetPaymentStatus(ps *services.PaymentService) gin.HandlerFunc {
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
		status, err := ps.GetStatus(c.Request.Context(), bookingId, userId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(status, ""))
	}
}
