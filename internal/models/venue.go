package models

import (
	"time"

	"github.com/google/uuid"
)

type VenueStatus string

const (
	StatusPending  VenueStatus = "pending"
	StatusActive   VenueStatus = "active"
	StatusInactive VenueStatus = "inactive"
)

type Venue struct {
	Id      uuid.UUID `bson:"id" json:"id,omitempty"`
	OwnerId uuid.UUID `bson:"owner_id" json:"owner_id,omitempty"`

	Name        string   `bson:"name" json:"name,omitempty" validate:"required"`
	Slug        string   `bson:"slug" json:"slug,omitempty"`
	Description string   `bson:"description" json:"description,omitempty"`
	Location    string   `bson:"location" json:"location,omitempty" validate:"required"`
	VenueType   []string `bson:"venue_type" json:"venue_type,omitempty"`

	Capacity    int     `bson:"capacity" json:"capacity,omitempty" validate:"required,min=1"`
	PricePerDay float64 `bson:"price_per_day" json:"price_per_day,omitempty" validate:"required,gt=0"`

	// TotalBookings counts accepted bookings; bumped on the owner's
	// pending->confirmed transition.
	TotalBookings int `bson:"total_bookings" json:"total_bookings"`

	Status    VenueStatus `bson:"status" json:"status,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

func (v *Venue) IsActive() bool {
	return v.Status == StatusActive
}
