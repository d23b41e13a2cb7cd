package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/server/internal/helpers"
	"github.com/venuebook/server/internal/models"
)

type VenuesService struct {
	venuesRepo models.VenuesRepo
}

func NewVenuesService(venuesRepo models.VenuesRepo) *VenuesService {
	return &VenuesService{
		venuesRepo: venuesRepo,
	}
}

func (vs *VenuesService) CreateVenue(ctx context.Context, venue *models.Venue, ownerId uuid.UUID) (*models.Venue, error) {
	if err := models.Validate.Struct(venue); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	if venue.Id == uuid.Nil {
		venue.Id = uuid.New()
	}
	venue.Name = helpers.StringTrim(venue.Name)
	venue.Location = helpers.StringTrim(venue.Location)
	venue.OwnerId = ownerId
	venue.Slug = helpers.GenerateSlug(venue.Name, venue.Location)
	venue.TotalBookings = 0
	venue.Status = models.StatusPending
	venue.CreatedAt = now
	venue.UpdatedAt = now

	return vs.venuesRepo.CreateVenue(ctx, venue)
}

func (vs *VenuesService) GetVenueByID(ctx context.Context, id uuid.UUID) (*models.Venue, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid venue ID", ErrValidation)
	}
	return vs.venuesRepo.GetVenueByID(ctx, id)
}

func (vs *VenuesService) ListVenues(ctx context.Context, offset, limit int) ([]*models.Venue, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", ErrValidation)
	}
	return vs.venuesRepo.ListVenues(ctx, offset, limit)
}

func (vs *VenuesService) ListVenuesByOwner(ctx context.Context, ownerId uuid.UUID, offset, limit int) ([]*models.Venue, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", ErrValidation)
	}
	if ownerId == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: invalid owner ID", ErrValidation)
	}
	return vs.venuesRepo.ListVenuesByOwner(ctx, ownerId, offset, limit)
}

// UpdateVenue applies a partial update to fields the owner controls.
func (vs *VenuesService) UpdateVenue(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, fields map[string]any) (*models.Venue, error) {
	if id == uuid.Nil || ownerId == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid venue or owner ID", ErrValidation)
	}
	allowed := map[string]bool{
		"name": true, "description": true, "location": true,
		"venue_type": true, "capacity": true, "price_per_day": true,
		"status": true,
	}
	updates := map[string]any{}
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields provided", ErrValidation)
	}
	return vs.venuesRepo.UpdateVenue(ctx, id, ownerId, updates)
}

func (vs *VenuesService) DeleteVenue(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid venue ID", ErrValidation)
	}
	return vs.venuesRepo.DeleteVenue(ctx, id)
}
