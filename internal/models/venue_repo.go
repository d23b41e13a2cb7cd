package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VenuesRepo interface {
	CreateVenue(ctx context.Context, venue *Venue) (*Venue, error)
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListVenues(ctx context.Context, offset, limit int) ([]*Venue, int, error)
	ListVenuesByOwner(ctx context.Context, ownerId uuid.UUID, offset, limit int) ([]*Venue, int, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, fields map[string]any) (*Venue, error)
	DeleteVenue(ctx context.Context, id uuid.UUID) error
	IncrementTotalBookings(ctx context.Context, id uuid.UUID) error
}

func (mdb *MongodbRepo) CreateVenue(ctx context.Context, venue *Venue) (*Venue, error) {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to insert venue: %w", err)
	}
	return venue, nil
}

func (mdb *MongodbRepo) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return nil, err
	}
	var venue Venue
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&venue); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	return &venue, nil
}

func (mdb *MongodbRepo) ListVenues(ctx context.Context, offset, limit int) ([]*Venue, int, error) {
	// Public listing only shows active venues.
	return mdb.listVenues(ctx, bson.M{"status": StatusActive}, offset, limit)
}

func (mdb *MongodbRepo) ListVenuesByOwner(ctx context.Context, ownerId uuid.UUID, offset, limit int) ([]*Venue, int, error) {
	return mdb.listVenues(ctx, bson.M{"owner_id": ownerId}, offset, limit)
}

func (mdb *MongodbRepo) listVenues(ctx context.Context, filter bson.M, offset, limit int) ([]*Venue, int, error) {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return nil, 0, err
	}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count venues: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find venues: %w", err)
	}
	defer cursor.Close(ctx)

	venues := []*Venue{}
	for cursor.Next(ctx) {
		var v Venue
		if err := cursor.Decode(&v); err != nil {
			return nil, 0, fmt.Errorf("failed to decode venue: %w", err)
		}
		venues = append(venues, &v)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return venues, int(total), nil
}

func (mdb *MongodbRepo) UpdateVenue(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, fields map[string]any) (*Venue, error) {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var venue Venue
	err = col.FindOneAndUpdate(ctx,
		bson.M{"id": id, "owner_id": ownerId},
		bson.M{"$set": set}, opts).Decode(&venue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}
	return &venue, nil
}

func (mdb *MongodbRepo) DeleteVenue(ctx context.Context, id uuid.UUID) error {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	// Bookings and ratings cascade with the venue.
	if bookings, err := mdb.GetCollection(BookingColName); err == nil {
		_, _ = bookings.DeleteMany(ctx, bson.M{"venue_id": id})
	}
	if ratings, err := mdb.GetCollection(RatingColName); err == nil {
		_, _ = ratings.DeleteMany(ctx, bson.M{"venue_id": id})
	}
	return nil
}

func (mdb *MongodbRepo) IncrementTotalBookings(ctx context.Context, id uuid.UUID) error {
	col, err := mdb.GetCollection(VenueColName)
	if err != nil {
		return err
	}
	_, err = col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"total_bookings": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment venue bookings: %w", err)
	}
	return nil
}
