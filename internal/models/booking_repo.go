package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingsRepo is the persistence contract for the booking lifecycle.
// Every transition is a single conditional update keyed on the state
// the caller expects, so two racing writers cannot both win: the loser
// gets ErrConflict instead of clobbering the document.
type BookingsRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingForUser(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*Booking, int, error)
	ListBookingsByVenue(ctx context.Context, venueId uuid.UUID, offset, limit int) ([]*Booking, int, error)
	HasConfirmedBookingOn(ctx context.Context, venueId uuid.UUID, eventDate string) (bool, error)

	AcceptBooking(ctx context.Context, id primitive.ObjectID, deadline time.Time) (*Booking, error)
	RejectBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	CancelBooking(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, reason string) (*Booking, error)

	AttachPaymentOrder(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, orderId string, amount float64, deadline time.Time) (*Booking, error)
	CompletePayment(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, orderId, paymentId string) (*Booking, error)
	MarkPaymentFailed(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, description string) (*Booking, error)

	FindExpired(ctx context.Context, now time.Time, limit int64) ([]*Booking, error)
	ExpireBooking(ctx context.Context, id primitive.ObjectID, now time.Time) (*Booking, error)
	RecordReminder(ctx context.Context, id primitive.ObjectID, now time.Time) (*Booking, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := booking.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare booking for creation: %w", err)
	}
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingForUser(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"_id": id, "user_id": userId})
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) findOneBooking(ctx context.Context, filter bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return nil, err
	}
	var booking Booking
	if err := col.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*Booking, int, error) {
	return mdb.listBookings(ctx, bson.M{"user_id": userId}, offset, limit)
}

func (mdb *MongodbRepo) ListBookingsByVenue(ctx context.Context, venueId uuid.UUID, offset, limit int) ([]*Booking, int, error) {
	return mdb.listBookings(ctx, bson.M{"venue_id": venueId}, offset, limit)
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, filter bson.M, offset, limit int) ([]*Booking, int, error) {
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return nil, 0, err
	}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, 0, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, int(total), nil
}

// HasConfirmedBookingOn checks for an existing confirmed booking on
// the exact event date. Best-effort availability check only; it does
// not consider multi-day overlaps and is not transactional with the
// insert that follows.
func (mdb *MongodbRepo) HasConfirmedBookingOn(ctx context.Context, venueId uuid.UUID, eventDate string) (bool, error) {
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return false, err
	}
	count, err := col.CountDocuments(ctx, bson.M{
		"venue_id":   venueId,
		"event_date": eventDate,
		"status":     BookingConfirmed,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check venue availability: %w", err)
	}
	return count > 0, nil
}

// AcceptBooking moves pending -> (confirmed, payment pending) and arms
// the payment deadline. A booking that already left pending matches
// nothing and the caller gets ErrConflict.
func (mdb *MongodbRepo) AcceptBooking(ctx context.Context, id primitive.ObjectID, deadline time.Time) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id, "status": BookingPending},
		bson.M{
			"status":           BookingConfirmed,
			"payment_status":   PaymentPending,
			"payment_deadline": deadline,
			"updated_at":       time.Now(),
		}, nil)
}

func (mdb *MongodbRepo) RejectBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id, "status": BookingPending},
		bson.M{
			"status":         BookingCancelled,
			"payment_status": PaymentNotRequired,
			"updated_at":     time.Now(),
		}, nil)
}

// CancelBooking is the customer-initiated cancel: any non-cancelled
// state goes to cancelled, payment_status is left as-is.
func (mdb *MongodbRepo) CancelBooking(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, reason string) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{
			"_id":     id,
			"user_id": userId,
			"status":  bson.M{"$ne": BookingCancelled},
		},
		bson.M{
			"status":              BookingCancelled,
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		}, nil)
}

// AttachPaymentOrder binds a freshly created gateway order to the
// booking and restarts the payment window. Only confirmed bookings
// whose payment is pending or previously failed qualify; completed
// payments never match, so a paid booking cannot be re-armed.
func (mdb *MongodbRepo) AttachPaymentOrder(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, orderId string, amount float64, deadline time.Time) (*Booking, error) {
	now := time.Now()
	return mdb.transitionBooking(ctx,
		bson.M{
			"_id":            id,
			"user_id":        userId,
			"status":         BookingConfirmed,
			"payment_status": bson.M{"$in": []PaymentStatus{PaymentPending, PaymentFailed}},
		},
		bson.M{
			"razorpay_order_id":    orderId,
			"payment_amount":       amount,
			"payment_status":       PaymentPending,
			"payment_deadline":     deadline,
			"payment_initiated_at": now,
			"updated_at":           now,
		}, nil)
}

// CompletePayment commits the verified payment: payment_status becomes
// completed, status is re-asserted confirmed, the gateway payment id
// is recorded. The filter requires the matching order id so a callback
// for a stale order cannot complete the wrong charge.
func (mdb *MongodbRepo) CompletePayment(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, orderId, paymentId string) (*Booking, error) {
	now := time.Now()
	return mdb.transitionBooking(ctx,
		bson.M{
			"_id":               id,
			"user_id":           userId,
			"razorpay_order_id": orderId,
			"status":            BookingConfirmed,
			"payment_status":    bson.M{"$ne": PaymentCompleted},
		},
		bson.M{
			"payment_status":       PaymentCompleted,
			"status":               BookingConfirmed,
			"razorpay_payment_id":  paymentId,
			"payment_completed_at": now,
			"payment_error":        "",
			"updated_at":           now,
		}, nil)
}

// MarkPaymentFailed records a failed attempt. Only confirmed bookings
// with an uncompleted payment qualify, so a stray failure report cannot
// touch pending or cancelled bookings.
func (mdb *MongodbRepo) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID, userId uuid.UUID, description string) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{
			"_id":            id,
			"user_id":        userId,
			"status":         BookingConfirmed,
			"payment_status": bson.M{"$ne": PaymentCompleted},
		},
		bson.M{
			"payment_status": PaymentFailed,
			"payment_error":  description,
			"updated_at":     time.Now(),
		}, nil)
}

func (mdb *MongodbRepo) FindExpired(ctx context.Context, now time.Time, limit int64) ([]*Booking, error) {
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return nil, err
	}
	cursor, err := col.Find(ctx, bson.M{
		"status":           BookingConfirmed,
		"payment_status":   PaymentPending,
		"payment_deadline": bson.M{"$lt": now},
	}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find expired bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// ExpireBooking repeats the sweep predicate in the update filter so a
// payment verified between the scan and this write wins the race.
func (mdb *MongodbRepo) ExpireBooking(ctx context.Context, id primitive.ObjectID, now time.Time) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{
			"_id":              id,
			"status":           BookingConfirmed,
			"payment_status":   PaymentPending,
			"payment_deadline": bson.M{"$lt": now},
		},
		bson.M{
			"status":              BookingCancelled,
			"payment_status":      PaymentFailed,
			"cancellation_reason": ExpiryCancellationReason,
			"updated_at":          now,
		}, nil)
}

func (mdb *MongodbRepo) RecordReminder(ctx context.Context, id primitive.ObjectID, now time.Time) (*Booking, error) {
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id},
		bson.M{
			"last_reminder_at": now,
			"updated_at":       now,
		},
		bson.M{"reminder_count": 1})
}

// transitionBooking performs a compare-and-swap style update: FindOne
// AndUpdate with the expected-state filter, returning the post-update
// document. No match means the booking was missing or already past the
// expected state; both surface as ErrConflict.
func (mdb *MongodbRepo) transitionBooking(ctx context.Context, filter, set, inc bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(BookingColName)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": set}
	if inc != nil {
		update["$inc"] = inc
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return &booking, nil
}
