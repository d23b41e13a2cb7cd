package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingsRepo interface {
	UpsertRating(ctx context.Context, rating *VenueRating) (*VenueRating, error)
	ListRatingsByVenue(ctx context.Context, venueId uuid.UUID) ([]*VenueRating, error)
}

// UpsertRating keeps one rating per (venue, user, booking): a repeat
// submission replaces score and comment in place.
func (mdb *MongodbRepo) UpsertRating(ctx context.Context, rating *VenueRating) (*VenueRating, error) {
	if err := rating.ValidateRating(); err != nil {
		return nil, fmt.Errorf("invalid rating data: %w", err)
	}
	col, err := mdb.GetCollection(RatingColName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filter := bson.M{
		"venue_id":   rating.VenueID,
		"user_id":    rating.UserID,
		"booking_id": rating.BookingID,
	}
	update := bson.M{
		"$set": bson.M{
			"score":      rating.Score,
			"comment":    rating.Comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"venue_id":   rating.VenueID,
			"user_id":    rating.UserID,
			"booking_id": rating.BookingID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result VenueRating
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) ListRatingsByVenue(ctx context.Context, venueId uuid.UUID) ([]*VenueRating, error) {
	col, err := mdb.GetCollection(RatingColName)
	if err != nil {
		return nil, err
	}
	cursor, err := col.Find(ctx, bson.M{"venue_id": venueId},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	ratings := []*VenueRating{}
	for cursor.Next(ctx) {
		var r VenueRating
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode rating: %w", err)
		}
		ratings = append(ratings, &r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ratings, nil
}
