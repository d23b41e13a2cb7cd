package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type bookingFixture struct {
	svc        *BookingService
	bookings   *fakeBookingsRepo
	venues     *fakeVenuesRepo
	notifier   *recordingNotifier
	dispatcher *notify.Dispatcher

	venue   *models.Venue
	ownerId uuid.UUID
	userId  uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	bookings := newFakeBookingsRepo()
	venues := newFakeVenuesRepo()
	notifier := &recordingNotifier{}
	logger := testLogger()
	dispatcher := notify.NewDispatcher(notifier, logger)

	ownerId := uuid.New()
	venue := &models.Venue{
		Id:          uuid.New(),
		OwnerId:     ownerId,
		Name:        "Lakeside Hall",
		Location:    "Pune",
		Capacity:    200,
		PricePerDay: 50000,
		Status:      models.StatusActive,
	}
	venues.venues[venue.Id] = venue

	return &bookingFixture{
		svc:        NewBookingService(bookings, venues, dispatcher, "admin@venuebook.in", logger),
		bookings:   bookings,
		venues:     venues,
		notifier:   notifier,
		dispatcher: dispatcher,
		venue:      venue,
		ownerId:    ownerId,
		userId:     uuid.New(),
	}
}

// sent drains in-flight dispatches before counting.
func (fx *bookingFixture) sent(template notify.Template) int {
	fx.dispatcher.Wait()
	return fx.notifier.count(template)
}

func (fx *bookingFixture) newInquiry(t *testing.T, days int) *models.Booking {
	t.Helper()
	b := &models.Booking{
		VenueID:      fx.venue.Id,
		EventDate:    "2026-11-20",
		NumberOfDays: days,
		GuestCount:   120,
		EventType:    "wedding",
	}
	created, err := fx.svc.CreateInquiry(context.Background(), b, fx.userId, "customer@example.com", false)
	require.NoError(t, err)
	return created
}

func TestCreateInquiryComputesEstimate(t *testing.T) {
	fx := newBookingFixture(t)

	created := fx.newInquiry(t, 2)

	assert.Equal(t, models.BookingPending, created.Status)
	assert.Equal(t, models.PaymentPending, created.PaymentStatus)
	assert.Equal(t, 100000.0, created.Amount)
	assert.Equal(t, 129800.0, created.PaymentAmount)
	assert.Nil(t, created.PaymentDeadline, "pending inquiries wait indefinitely")
	assert.Equal(t, 1, fx.sent(notify.TemplateInquiryCreated))
}

func TestCreateInquiryOnlySkipsPayment(t *testing.T) {
	fx := newBookingFixture(t)

	b := &models.Booking{
		VenueID:    fx.venue.Id,
		EventDate:  "2026-11-20",
		GuestCount: 50,
	}
	created, err := fx.svc.CreateInquiry(context.Background(), b, fx.userId, "customer@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentNotRequired, created.PaymentStatus)
}

func TestCreateInquiryRejectsOverCapacity(t *testing.T) {
	fx := newBookingFixture(t)

	b := &models.Booking{
		VenueID:    fx.venue.Id,
		EventDate:  "2026-11-20",
		GuestCount: 500,
	}
	_, err := fx.svc.CreateInquiry(context.Background(), b, fx.userId, "customer@example.com", false)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, fx.bookings.bookings, "no record may be created on capacity rejection")
	assert.Empty(t, fx.notifier.sends)
}

func TestCreateInquiryRejectsInactiveVenue(t *testing.T) {
	fx := newBookingFixture(t)
	fx.venue.Status = models.StatusInactive

	b := &models.Booking{
		VenueID:    fx.venue.Id,
		EventDate:  "2026-11-20",
		GuestCount: 10,
	}
	_, err := fx.svc.CreateInquiry(context.Background(), b, fx.userId, "customer@example.com", false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateInquiryRejectsDateClash(t *testing.T) {
	fx := newBookingFixture(t)

	first := fx.newInquiry(t, 1)
	_, err := fx.svc.Decide(context.Background(), first.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)

	b := &models.Booking{
		VenueID:    fx.venue.Id,
		EventDate:  first.EventDate,
		GuestCount: 10,
	}
	_, err = fx.svc.CreateInquiry(context.Background(), b, uuid.New(), "other@example.com", false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecideAccept(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 2)

	before := time.Now()
	updated, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, updated.Status)
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentDeadline)
	assert.WithinDuration(t, before.Add(models.PaymentWindow), *updated.PaymentDeadline, 5*time.Second)
	assert.Equal(t, 1, fx.venues.increments[fx.venue.Id])
	// customer and admin both hear about acceptance
	assert.Equal(t, 2, fx.sent(notify.TemplateBookingAccepted))
}

func TestDecideAcceptIsIdempotent(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)

	_, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)

	// Resubmitting the same decision neither errors nor refires
	// notifications or counters.
	again, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, again.Status)
	assert.Equal(t, 2, fx.sent(notify.TemplateBookingAccepted))
	assert.Equal(t, 1, fx.venues.increments[fx.venue.Id])
}

func TestDecideReject(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)

	updated, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingCancelled)
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.Equal(t, models.PaymentNotRequired, updated.PaymentStatus)
	assert.Equal(t, 1, fx.sent(notify.TemplateBookingRejected))
}

func TestDecideWrongOwner(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)

	_, err := fx.svc.Decide(context.Background(), created.ID, uuid.New(), models.BookingConfirmed)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelledIsTerminal(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)

	_, err := fx.svc.Cancel(context.Background(), created.ID, fx.userId, "changed plans")
	require.NoError(t, err)

	// No operation moves a cancelled booking elsewhere.
	_, err = fx.svc.Cancel(context.Background(), created.ID, fx.userId, "again")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrValidation)

	stored, _ := fx.bookings.GetBookingByID(context.Background(), created.ID)
	assert.Equal(t, models.BookingCancelled, stored.Status)
}

func TestCustomerCancelKeepsPaymentStatus(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)
	_, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)

	updated, err := fx.svc.Cancel(context.Background(), created.ID, fx.userId, "")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
	assert.Equal(t, "Cancelled by customer", updated.CancellationReason)
}

func TestPaymentReminder(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)
	_, err := fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)

	updated, err := fx.svc.SendPaymentReminder(context.Background(), created.ID, fx.userId)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ReminderCount)
	assert.NotNil(t, updated.LastReminderAt)
	assert.Equal(t, 1, fx.sent(notify.TemplatePaymentReminder))

	// No throttle: a second reminder goes out too.
	updated, err = fx.svc.SendPaymentReminder(context.Background(), created.ID, fx.userId)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ReminderCount)
}

func TestPaymentReminderRequiresOpenWindow(t *testing.T) {
	fx := newBookingFixture(t)
	created := fx.newInquiry(t, 1)

	// Still pending: nothing to remind about.
	_, err := fx.svc.SendPaymentReminder(context.Background(), created.ID, fx.userId)
	assert.ErrorIs(t, err, ErrValidation)

	// Deadline already passed.
	_, err = fx.svc.Decide(context.Background(), created.ID, fx.ownerId, models.BookingConfirmed)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	fx.bookings.bookings[created.ID].PaymentDeadline = &past

	_, err = fx.svc.SendPaymentReminder(context.Background(), created.ID, fx.userId)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, fx.notifier.count(notify.TemplatePaymentReminder))
}
