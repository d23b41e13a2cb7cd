package container

import (
	"log/slog"

	"github.com/venuebook/server/internal/config"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/notify"
	"github.com/venuebook/server/internal/payments"
	"github.com/venuebook/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger        *slog.Logger
	Config        *config.Config
	MongoDBClient *mongo.Client
	Dispatcher    *notify.Dispatcher

	VenueService   *services.VenuesService
	BookingService *services.BookingService
	PaymentService *services.PaymentService
	RatingService  *services.RatingService
	Sweeper        *services.SweeperService
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *slog.Logger, cfg *config.Config, mongoDBClient *mongo.Client) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)

	notifier := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	dispatcher := notify.NewDispatcher(notifier, logger)
	gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	venueService := services.NewVenuesService(repo)
	bookingService := services.NewBookingService(repo, repo, dispatcher, cfg.AdminEmail, logger)
	paymentService := services.NewPaymentService(repo, repo, gateway, dispatcher, cfg.RazorpayKeySecret, cfg.AdminEmail, logger)
	ratingService := services.NewRatingService(repo, repo)
	sweeper := services.NewSweeperService(repo, dispatcher, cfg.SweepInterval, logger)

	return &Container{
		Logger:         logger,
		Config:         cfg,
		MongoDBClient:  mongoDBClient,
		Dispatcher:     dispatcher,
		VenueService:   venueService,
		BookingService: bookingService,
		PaymentService: paymentService,
		RatingService:  ratingService,
		Sweeper:        sweeper,
	}
}
