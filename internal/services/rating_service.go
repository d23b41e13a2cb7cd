package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingService struct {
	ratings  models.RatingsRepo
	bookings models.BookingsRepo
}

func NewRatingService(ratings models.RatingsRepo, bookings models.BookingsRepo) *RatingService {
	return &RatingService{
		ratings:  ratings,
		bookings: bookings,
	}
}

// RateVenue upserts the customer's rating for a venue. Rating is gated
// on booking state: the event must be over and the payment completed.
func (rs *RatingService) RateVenue(ctx context.Context, venueId uuid.UUID, userId uuid.UUID, bookingId primitive.ObjectID, score int, comment string) (*models.VenueRating, error) {
	booking, err := rs.bookings.GetBookingForUser(ctx, bookingId, userId)
	if err != nil {
		return nil, err
	}
	if booking.VenueID != venueId {
		return nil, models.ErrNotFound
	}
	if booking.PaymentStatus != models.PaymentCompleted {
		return nil, fmt.Errorf("%w: booking payment is not completed", ErrValidation)
	}

	eventDate, err := time.Parse("2006-01-02", booking.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: booking has an invalid event date", ErrValidation)
	}
	if !time.Now().After(eventDate.Add(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: venue can only be rated after the event date", ErrValidation)
	}

	rating := &models.VenueRating{
		VenueID:   venueId,
		UserID:    userId,
		BookingID: bookingId,
		Score:     score,
		Comment:   comment,
	}
	if err := rating.ValidateRating(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return rs.ratings.UpsertRating(ctx, rating)
}

func (rs *RatingService) ListVenueRatings(ctx context.Context, venueId uuid.UUID) ([]*models.VenueRating, error) {
	if venueId == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid venue ID", ErrValidation)
	}
	return rs.ratings.ListRatingsByVenue(ctx, venueId)
}
