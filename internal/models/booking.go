package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentCompleted   PaymentStatus = "completed"
	PaymentFailed      PaymentStatus = "failed"
)

// ExpiryCancellationReason is stored on bookings the sweeper cancels.
const ExpiryCancellationReason = "Payment deadline expired. Booking has been automatically cancelled."

// PaymentWindow is how long a customer has to pay once the owner
// accepts or a new gateway order is created.
const PaymentWindow = 24 * time.Hour

// ScheduleEntry is one (date, time-range) slot of a booking. Dates are
// YYYY-MM-DD, times HH:MM in the venue's local time.
type ScheduleEntry struct {
	Date     string `bson:"date" json:"date" validate:"required"`
	TimeFrom string `bson:"time_from" json:"time_from"`
	TimeTo   string `bson:"time_to" json:"time_to"`
}

type Booking struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VenueID uuid.UUID          `bson:"venue_id" json:"venue_id" validate:"required"`
	UserID  uuid.UUID          `bson:"user_id" json:"user_id"`

	// CustomerEmail is denormalized from the auth claims at creation so
	// the sweeper can notify without a user lookup.
	CustomerEmail string `bson:"customer_email" json:"customer_email,omitempty"`

	// Event details
	EventDate           string          `bson:"event_date" json:"event_date" validate:"required"`
	DatesTimings        []ScheduleEntry `bson:"dates_timings,omitempty" json:"dates_timings,omitempty"`
	NumberOfDays        int             `bson:"number_of_days,omitempty" json:"number_of_days,omitempty"`
	GuestCount          int             `bson:"guest_count" json:"guest_count" validate:"required,min=1"`
	EventType           string          `bson:"event_type" json:"event_type"`
	SpecialRequirements string          `bson:"special_requirements,omitempty" json:"special_requirements,omitempty"`

	// Amount is the venue owner's base price for the stay;
	// PaymentAmount is what the customer owes after platform fee and
	// GST. Both are in INR.
	Amount        float64 `bson:"amount" json:"amount"`
	PaymentAmount float64 `bson:"payment_amount" json:"payment_amount"`

	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`

	PaymentDeadline    *time.Time `bson:"payment_deadline,omitempty" json:"payment_deadline,omitempty"`
	PaymentInitiatedAt *time.Time `bson:"payment_initiated_at,omitempty" json:"payment_initiated_at,omitempty"`
	PaymentCompletedAt *time.Time `bson:"payment_completed_at,omitempty" json:"payment_completed_at,omitempty"`

	RazorpayOrderID   string `bson:"razorpay_order_id,omitempty" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `bson:"razorpay_payment_id,omitempty" json:"razorpay_payment_id,omitempty"`
	PaymentError      string `bson:"payment_error,omitempty" json:"payment_error,omitempty"`

	CancellationReason string `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`

	ReminderCount  int        `bson:"reminder_count" json:"reminder_count"`
	LastReminderAt *time.Time `bson:"last_reminder_at,omitempty" json:"last_reminder_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (b *Booking) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	return nil
}

// DayCount resolves how many days the booking spans: the explicit
// schedule wins, then number_of_days, then a single day.
func (b *Booking) DayCount() int {
	if len(b.DatesTimings) > 0 {
		return len(b.DatesTimings)
	}
	if b.NumberOfDays > 0 {
		return b.NumberOfDays
	}
	return 1
}

// IsPaymentOpen reports whether the booking is still in the window
// where a payment (or reminder) makes sense.
func (b *Booking) IsPaymentOpen(now time.Time) bool {
	if b.Status != BookingConfirmed || b.PaymentStatus != PaymentPending {
		return false
	}
	return b.PaymentDeadline == nil || now.Before(*b.PaymentDeadline)
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("invalid booking status: %q", s)
}
