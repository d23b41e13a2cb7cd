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
	"github.com/venuebook/server/internal/payments"
	"github.com/venuebook/server/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gateway receipt ids are capped at 40 characters.
const maxReceiptLen = 40

type PaymentService struct {
	bookings   models.BookingsRepo
	venues     models.VenuesRepo
	gateway    payments.Gateway
	dispatcher *notify.Dispatcher
	keySecret  string
	adminEmail string
	logger     *slog.Logger
}

func NewPaymentService(bookings models.BookingsRepo, venues models.VenuesRepo, gateway payments.Gateway, dispatcher *notify.Dispatcher, keySecret, adminEmail string, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		bookings:   bookings,
		venues:     venues,
		gateway:    gateway,
		dispatcher: dispatcher,
		keySecret:  keySecret,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// OrderDetails is what the client needs to open the gateway checkout.
type OrderDetails struct {
	OrderID     string        `json:"order_id"`
	AmountPaise int64         `json:"amount"`
	Currency    string        `json:"currency"`
	Quote       pricing.Quote `json:"quote"`
	Deadline    time.Time     `json:"payment_deadline"`
}

// PaymentProjection is the read-only view of a booking's payment
// fields.
type PaymentProjection struct {
	BookingID          string               `json:"booking_id"`
	Status             models.BookingStatus `json:"status"`
	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	PaymentAmount      float64              `json:"payment_amount"`
	RazorpayOrderID    string               `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID  string               `json:"razorpay_payment_id,omitempty"`
	PaymentDeadline    *time.Time           `json:"payment_deadline,omitempty"`
	PaymentInitiatedAt *time.Time           `json:"payment_initiated_at,omitempty"`
	PaymentCompletedAt *time.Time           `json:"payment_completed_at,omitempty"`
	PaymentError       string               `json:"payment_error,omitempty"`
}

// CreateOrder opens a gateway order for a confirmed booking. The
// charged total is recomputed here from the venue's price and the
// booking's day count; neither the stored payment_amount nor anything
// client-submitted is trusted.
func (ps *PaymentService) CreateOrder(ctx context.Context, bookingId primitive.ObjectID, userId uuid.UUID) (*OrderDetails, error) {
	booking, err := ps.bookings.GetBookingForUser(ctx, bookingId, userId)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return nil, fmt.Errorf("%w: payment already completed for this booking", ErrValidation)
	}
	if booking.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("%w: booking must be confirmed before payment", ErrValidation)
	}

	venue, err := ps.venues.GetVenueByID(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	quote := pricing.ForStay(venue.PricePerDay, booking.DayCount())
	amountPaise := payments.ToPaise(quote.Total)

	receipt := fmt.Sprintf("bkg_%s_%d", bookingId.Hex(), time.Now().Unix())
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}

	order, err := ps.gateway.CreateOrder(amountPaise, "INR", receipt, map[string]any{
		"booking_id": bookingId.Hex(),
		"venue":      venue.Name,
	})
	if err != nil {
		ps.logger.Error("gateway order creation failed", "booking_id", bookingId.Hex(), "error", err)
		return nil, gatewayError(err)
	}

	deadline := time.Now().Add(models.PaymentWindow)
	if _, err := ps.bookings.AttachPaymentOrder(ctx, bookingId, userId, order.ID, quote.Total, deadline); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: booking is no longer awaiting payment", ErrValidation)
		}
		return nil, err
	}

	return &OrderDetails{
		OrderID:     order.ID,
		AmountPaise: order.Amount,
		Currency:    order.Currency,
		Quote:       quote,
		Deadline:    deadline,
	}, nil
}

// VerifyPayment checks the gateway callback signature and, on a match,
// commits the completion transition. A mismatch mutates nothing.
// Notifications after the commit are best-effort; the payment stays
// authoritative even if they fail.
func (ps *PaymentService) VerifyPayment(ctx context.Context, bookingId primitive.ObjectID, userId uuid.UUID, orderId, paymentId, signature string) (*models.Booking, error) {
	if !payments.VerifySignature(orderId, paymentId, signature, ps.keySecret) {
		return nil, fmt.Errorf("%w: payment signature verification failed", ErrValidation)
	}

	booking, err := ps.bookings.CompletePayment(ctx, bookingId, userId, orderId, paymentId)
	if errors.Is(err, models.ErrConflict) {
		return nil, fmt.Errorf("%w: no matching booking awaiting this payment", ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"booking_id":     booking.ID.Hex(),
		"event_date":     booking.EventDate,
		"payment_amount": booking.PaymentAmount,
		"payment_id":     paymentId,
	}
	ps.dispatcher.Dispatch(notify.TemplatePaymentCompleted, booking.CustomerEmail, data)
	ps.dispatcher.Dispatch(notify.TemplatePaymentCompleted, ps.adminEmail, data)
	return booking, nil
}

// ReportFailure records a failed payment attempt. The booking stays
// confirmed and can retry with a fresh order.
func (ps *PaymentService) ReportFailure(ctx context.Context, bookingId primitive.ObjectID, userId uuid.UUID, description string) (*models.Booking, error) {
	booking, err := ps.bookings.MarkPaymentFailed(ctx, bookingId, userId, description)
	if errors.Is(err, models.ErrConflict) {
		return nil, fmt.Errorf("%w: booking not found or payment already completed", ErrValidation)
	}
	return booking, err
}

func (ps *PaymentService) GetStatus(ctx context.Context, bookingId primitive.ObjectID, userId uuid.UUID) (*PaymentProjection, error) {
	booking, err := ps.bookings.GetBookingForUser(ctx, bookingId, userId)
	if err != nil {
		return nil, err
	}
	return &PaymentProjection{
		BookingID:          booking.ID.Hex(),
		Status:             booking.Status,
		PaymentStatus:      booking.PaymentStatus,
		PaymentAmount:      booking.PaymentAmount,
		RazorpayOrderID:    booking.RazorpayOrderID,
		RazorpayPaymentID:  booking.RazorpayPaymentID,
		PaymentDeadline:    booking.PaymentDeadline,
		PaymentInitiatedAt: booking.PaymentInitiatedAt,
		PaymentCompletedAt: booking.PaymentCompletedAt,
		PaymentError:       booking.PaymentError,
	}, nil
}

// gatewayError surfaces the gateway's own description when it is short
// enough to be safe for clients, otherwise a generic failure.
func gatewayError(err error) error {
	msg := err.Error()
	if len(msg) > 0 && len(msg) <= 140 {
		return fmt.Errorf("%w: payment gateway error: %s", ErrValidation, msg)
	}
	return fmt.Errorf("%w: failed to create payment order", ErrValidation)
}
