package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/notify"
	"github.com/venuebook/server/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrValidation marks business-rule violations the caller can fix;
// handlers map it to a 400.
var ErrValidation = errors.New("validation failed")

type BookingService struct {
	bookings   models.BookingsRepo
	venues     models.VenuesRepo
	dispatcher *notify.Dispatcher
	adminEmail string
	logger     *slog.Logger
}

func NewBookingService(bookings models.BookingsRepo, venues models.VenuesRepo, dispatcher *notify.Dispatcher, adminEmail string, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookings:   bookings,
		venues:     venues,
		dispatcher: dispatcher,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// CreateInquiry creates a booking in (pending, pending), or
// (pending, not_required) when the customer only wants a quote. The
// payment amount stored here is the inquiry-time estimate; the charged
// amount is recomputed from the same formula at order time.
func (bs *BookingService) CreateInquiry(ctx context.Context, booking *models.Booking, userId uuid.UUID, email string, inquiryOnly bool) (*models.Booking, error) {
	if err := models.Validate.Struct(booking); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	venue, err := bs.venues.GetVenueByID(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive() {
		// Inactive venues are indistinguishable from missing ones.
		return nil, models.ErrNotFound
	}
	if booking.GuestCount > venue.Capacity {
		return nil, fmt.Errorf("%w: guest count %d exceeds venue capacity %d", ErrValidation, booking.GuestCount, venue.Capacity)
	}

	// Best-effort date-clash check; exact event date only.
	taken, err := bs.bookings.HasConfirmedBookingOn(ctx, booking.VenueID, booking.EventDate)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: venue already has a confirmed booking on %s", ErrValidation, booking.EventDate)
	}

	quote := pricing.ForStay(venue.PricePerDay, booking.DayCount())
	booking.Amount = quote.VenueAmount
	booking.PaymentAmount = quote.Total

	booking.UserID = userId
	booking.CustomerEmail = email
	booking.Status = models.BookingPending
	if inquiryOnly {
		booking.PaymentStatus = models.PaymentNotRequired
	} else {
		booking.PaymentStatus = models.PaymentPending
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	created, err := bs.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	bs.dispatcher.Dispatch(notify.TemplateInquiryCreated, created.CustomerEmail, map[string]any{
		"booking_id":     created.ID.Hex(),
		"venue":          venue.Name,
		"event_date":     created.EventDate,
		"guest_count":    created.GuestCount,
		"payment_amount": created.PaymentAmount,
	})
	return created, nil
}

// Decide is the venue owner's accept/reject. Both directions are
// guarded transitions out of pending; resubmitting a decision the
// booking already holds is a no-op and does not refire notifications.
func (bs *BookingService) Decide(ctx context.Context, id primitive.ObjectID, ownerId uuid.UUID, decision models.BookingStatus) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	venue, err := bs.venues.GetVenueByID(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerId != ownerId {
		return nil, models.ErrNotFound
	}

	switch decision {
	case models.BookingConfirmed:
		deadline := time.Now().Add(models.PaymentWindow)
		updated, err := bs.bookings.AcceptBooking(ctx, id, deadline)
		if errors.Is(err, models.ErrConflict) {
			if booking.Status == decision {
				return booking, nil
			}
			return nil, fmt.Errorf("%w: booking is no longer pending", ErrValidation)
		}
		if err != nil {
			return nil, err
		}

		if err := bs.venues.IncrementTotalBookings(ctx, venue.Id); err != nil {
			bs.logger.Error("failed to bump venue booking counter", "venue_id", venue.Id, "error", err)
		}
		data := map[string]any{
			"booking_id":       updated.ID.Hex(),
			"venue":            venue.Name,
			"event_date":       updated.EventDate,
			"payment_amount":   updated.PaymentAmount,
			"payment_deadline": deadline.Format(time.RFC3339),
		}
		bs.dispatcher.Dispatch(notify.TemplateBookingAccepted, updated.CustomerEmail, data)
		bs.dispatcher.Dispatch(notify.TemplateBookingAccepted, bs.adminEmail, data)
		return updated, nil

	case models.BookingCancelled:
		updated, err := bs.bookings.RejectBooking(ctx, id)
		if errors.Is(err, models.ErrConflict) {
			if booking.Status == decision {
				return booking, nil
			}
			return nil, fmt.Errorf("%w: booking is no longer pending", ErrValidation)
		}
		if err != nil {
			return nil, err
		}
		bs.dispatcher.Dispatch(notify.TemplateBookingRejected, updated.CustomerEmail, map[string]any{
			"booking_id": updated.ID.Hex(),
			"venue":      venue.Name,
			"event_date": updated.EventDate,
		})
		return updated, nil
	}
	return nil, fmt.Errorf("%w: decision must be %q or %q", ErrValidation, models.BookingConfirmed, models.BookingCancelled)
}

// Cancel is the customer-initiated cancellation. Cancelled is
// terminal, so cancelling twice fails the conditional update.
func (bs *BookingService) Cancel(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, reason string) (*models.Booking, error) {
	if reason == "" {
		reason = "Cancelled by customer"
	}
	updated, err := bs.bookings.CancelBooking(ctx, id, userId, reason)
	if errors.Is(err, models.ErrConflict) {
		return nil, fmt.Errorf("%w: booking not found or already cancelled", ErrValidation)
	}
	return updated, err
}

func (bs *BookingService) GetBooking(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*models.Booking, error) {
	return bs.bookings.GetBookingForUser(ctx, id, userId)
}

func (bs *BookingService) ListMyBookings(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", ErrValidation)
	}
	return bs.bookings.ListBookingsByUser(ctx, userId, offset, limit)
}

// ListVenueBookings is the owner's view of inquiries against a venue.
func (bs *BookingService) ListVenueBookings(ctx context.Context, venueId uuid.UUID, ownerId uuid.UUID, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", ErrValidation)
	}
	venue, err := bs.venues.GetVenueByID(ctx, venueId)
	if err != nil {
		return nil, 0, err
	}
	if venue.OwnerId != ownerId {
		return nil, 0, models.ErrNotFound
	}
	return bs.bookings.ListBookingsByVenue(ctx, venueId, offset, limit)
}

// SendPaymentReminder sends an on-demand reminder while the booking is
// still inside the payment window. The counter and timestamp are
// tracked but not used to throttle frequency.
func (bs *BookingService) SendPaymentReminder(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingForUser(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !booking.IsPaymentOpen(now) {
		return nil, fmt.Errorf("%w: booking is not awaiting payment", ErrValidation)
	}

	data := map[string]any{
		"booking_id":     booking.ID.Hex(),
		"event_date":     booking.EventDate,
		"payment_amount": booking.PaymentAmount,
	}
	if booking.PaymentDeadline != nil {
		data["payment_deadline"] = booking.PaymentDeadline.Format(time.RFC3339)
	}
	bs.dispatcher.Dispatch(notify.TemplatePaymentReminder, booking.CustomerEmail, data)

	updated, err := bs.bookings.RecordReminder(ctx, id, now)
	if errors.Is(err, models.ErrConflict) {
		return booking, nil
	}
	return updated, err
}
