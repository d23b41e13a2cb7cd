package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/venuebook/server/internal/container"
	"github.com/venuebook/server/internal/handlers"
	"github.com/venuebook/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "venuebook-api",
			})
		})

		// public venue browsing
		v1.GET("/venues", handlers.ListVenues(container.VenueService))
		v1.GET("/venues/:id", handlers.GetVenueByID(container.VenueService))
		v1.GET("/venues/:id/ratings", handlers.ListVenueRatings(container.RatingService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Config.AuthJWKSURL, container.Config.TokenSecret, container.Logger))

	venueRoutes := protected.Group("/venues")
	{
		venueRoutes.POST("/", handlers.CreateVenueHandler(container.VenueService))
		venueRoutes.PATCH("/:id", handlers.UpdateVenue(container.VenueService))
		venueRoutes.DELETE("/:id", handlers.DeleteVenue(container.VenueService))
		venueRoutes.GET("/:id/bookings", handlers.ListVenueBookings(container.BookingService))
		venueRoutes.POST("/:id/ratings", handlers.RateVenue(container.RatingService))
		venueRoutes.GET("/owner-venues/:owner_id", handlers.ListVenuesByOwner(container.VenueService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/status", handlers.DecideBooking(container.BookingService))
		bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(container.BookingService))
		bookingRoutes.POST("/:id/reminder", handlers.SendPaymentReminder(container.BookingService))
	}

	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.POST("/order", handlers.CreatePaymentOrder(container.PaymentService))
		paymentRoutes.POST("/verify", handlers.VerifyPayment(container.PaymentService))
		paymentRoutes.POST("/failure", handlers.ReportPaymentFailure(container.PaymentService))
		paymentRoutes.GET("/status/:id", handlers.GetPaymentStatus(container.PaymentService))
	}

	return r
}
