package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VenueRating is a post-event review, one per (venue, user, booking).
// Re-submitting replaces the previous score and comment.
type VenueRating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VenueID   uuid.UUID          `bson:"venue_id" json:"venue_id"`
	UserID    uuid.UUID          `bson:"user_id" json:"user_id"`
	BookingID primitive.ObjectID `bson:"booking_id" json:"booking_id"`
	Score     int                `bson:"score" json:"score" validate:"required,min=1,max=5"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *VenueRating) ValidateRating() error {
	if r.Score < 1 || r.Score > 5 {
		return fmt.Errorf("score must be between 1 and 5")
	}
	if r.UserID == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if r.VenueID == uuid.Nil {
		return fmt.Errorf("invalid venue ID")
	}
	if r.BookingID.IsZero() {
		return fmt.Errorf("invalid booking ID")
	}
	return nil
}
