package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/notify"
	"github.com/venuebook/server/internal/payments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeBookingsRepo is an in-memory BookingsRepo that mirrors the
// conditional-update semantics of the Mongo implementation: a
// transition whose expected-state filter does not match returns
// models.ErrConflict and mutates nothing.
type fakeBookingsRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking

	// expireErr makes ExpireBooking fail for specific bookings, to
	// exercise per-item error isolation in the sweeper.
	expireErr map[primitive.ObjectID]error
}

func newFakeBookingsRepo() *fakeBookingsRepo {
	return &fakeBookingsRepo{
		bookings:  map[primitive.ObjectID]*models.Booking{},
		expireErr: map[primitive.ObjectID]error{},
	}
}

func (f *fakeBookingsRepo) put(b *models.Booking) *models.Booking {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	f.bookings[b.ID] = b
	return b
}

func (f *fakeBookingsRepo) CreateBooking(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = booking.BeforeCreate()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return booking, nil
}

func (f *fakeBookingsRepo) GetBookingForUser(_ context.Context, id primitive.ObjectID, userId uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.UserID != userId {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) GetBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) ListBookingsByUser(_ context.Context, userId uuid.UUID, offset, limit int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.UserID == userId {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingsRepo) ListBookingsByVenue(_ context.Context, venueId uuid.UUID, offset, limit int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.VenueID == venueId {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingsRepo) HasConfirmedBookingOn(_ context.Context, venueId uuid.UUID, eventDate string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.VenueID == venueId && b.EventDate == eventDate && b.Status == models.BookingConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingsRepo) AcceptBooking(_ context.Context, id primitive.ObjectID, deadline time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != models.BookingPending {
		return nil, models.ErrConflict
	}
	b.Status = models.BookingConfirmed
	b.PaymentStatus = models.PaymentPending
	d := deadline
	b.PaymentDeadline = &d
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) RejectBooking(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != models.BookingPending {
		return nil, models.ErrConflict
	}
	b.Status = models.BookingCancelled
	b.PaymentStatus = models.PaymentNotRequired
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) CancelBooking(_ context.Context, id primitive.ObjectID, userId uuid.UUID, reason string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.UserID != userId || b.Status == models.BookingCancelled {
		return nil, models.ErrConflict
	}
	b.Status = models.BookingCancelled
	b.CancellationReason = reason
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) AttachPaymentOrder(_ context.Context, id primitive.ObjectID, userId uuid.UUID, orderId string, amount float64, deadline time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.UserID != userId || b.Status != models.BookingConfirmed {
		return nil, models.ErrConflict
	}
	if b.PaymentStatus != models.PaymentPending && b.PaymentStatus != models.PaymentFailed {
		return nil, models.ErrConflict
	}
	now := time.Now()
	b.RazorpayOrderID = orderId
	b.PaymentAmount = amount
	b.PaymentStatus = models.PaymentPending
	d := deadline
	b.PaymentDeadline = &d
	b.PaymentInitiatedAt = &now
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) CompletePayment(_ context.Context, id primitive.ObjectID, userId uuid.UUID, orderId, paymentId string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.UserID != userId || b.RazorpayOrderID != orderId ||
		b.Status != models.BookingConfirmed || b.PaymentStatus == models.PaymentCompleted {
		return nil, models.ErrConflict
	}
	now := time.Now()
	b.PaymentStatus = models.PaymentCompleted
	b.Status = models.BookingConfirmed
	b.RazorpayPaymentID = paymentId
	b.PaymentCompletedAt = &now
	b.PaymentError = ""
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) MarkPaymentFailed(_ context.Context, id primitive.ObjectID, userId uuid.UUID, description string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.UserID != userId || b.Status != models.BookingConfirmed ||
		b.PaymentStatus == models.PaymentCompleted {
		return nil, models.ErrConflict
	}
	b.PaymentStatus = models.PaymentFailed
	b.PaymentError = description
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) FindExpired(_ context.Context, now time.Time, limit int64) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.Status == models.BookingConfirmed && b.PaymentStatus == models.PaymentPending &&
			b.PaymentDeadline != nil && b.PaymentDeadline.Before(now) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingsRepo) ExpireBooking(_ context.Context, id primitive.ObjectID, now time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.expireErr[id]; ok {
		return nil, err
	}
	b, ok := f.bookings[id]
	if !ok || b.Status != models.BookingConfirmed || b.PaymentStatus != models.PaymentPending ||
		b.PaymentDeadline == nil || !b.PaymentDeadline.Before(now) {
		return nil, models.ErrConflict
	}
	b.Status = models.BookingCancelled
	b.PaymentStatus = models.PaymentFailed
	b.CancellationReason = models.ExpiryCancellationReason
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) RecordReminder(_ context.Context, id primitive.ObjectID, now time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrConflict
	}
	b.ReminderCount++
	t := now
	b.LastReminderAt = &t
	copied := *b
	return &copied, nil
}

type fakeVenuesRepo struct {
	venues     map[uuid.UUID]*models.Venue
	increments map[uuid.UUID]int
}

func newFakeVenuesRepo() *fakeVenuesRepo {
	return &fakeVenuesRepo{
		venues:     map[uuid.UUID]*models.Venue{},
		increments: map[uuid.UUID]int{},
	}
}

func (f *fakeVenuesRepo) CreateVenue(_ context.Context, venue *models.Venue) (*models.Venue, error) {
	f.venues[venue.Id] = venue
	return venue, nil
}

func (f *fakeVenuesRepo) GetVenueByID(_ context.Context, id uuid.UUID) (*models.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return v, nil
}

func (f *fakeVenuesRepo) ListVenues(_ context.Context, offset, limit int) ([]*models.Venue, int, error) {
	var out []*models.Venue
	for _, v := range f.venues {
		if v.Status == models.StatusActive {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

func (f *fakeVenuesRepo) ListVenuesByOwner(_ context.Context, ownerId uuid.UUID, offset, limit int) ([]*models.Venue, int, error) {
	var out []*models.Venue
	for _, v := range f.venues {
		if v.OwnerId == ownerId {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

func (f *fakeVenuesRepo) UpdateVenue(_ context.Context, id uuid.UUID, ownerId uuid.UUID, fields map[string]any) (*models.Venue, error) {
	v, ok := f.venues[id]
	if !ok || v.OwnerId != ownerId {
		return nil, models.ErrNotFound
	}
	return v, nil
}

func (f *fakeVenuesRepo) DeleteVenue(_ context.Context, id uuid.UUID) error {
	if _, ok := f.venues[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.venues, id)
	return nil
}

func (f *fakeVenuesRepo) IncrementTotalBookings(_ context.Context, id uuid.UUID) error {
	f.increments[id]++
	return nil
}

// recordingNotifier captures every dispatched notification.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []sentNotification
	err   error
}

type sentNotification struct {
	template  notify.Template
	recipient string
	data      map[string]any
}

func (r *recordingNotifier) Send(template notify.Template, recipient string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sends = append(r.sends, sentNotification{template: template, recipient: recipient, data: data})
	return nil
}

func (r *recordingNotifier) count(template notify.Template) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sends {
		if s.template == template {
			n++
		}
	}
	return n
}

// fakeGateway returns deterministic order ids and can be told to fail.
type fakeGateway struct {
	orders int
	err    error

	lastAmount  int64
	lastReceipt string
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]any) (*payments.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.orders++
	g.lastAmount = amountPaise
	g.lastReceipt = receipt
	return &payments.Order{
		ID:       fmt.Sprintf("order_fake%03d", g.orders),
		Amount:   amountPaise,
		Currency: currency,
	}, nil
}
