package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

const DbName = "venuebook"

const (
	VenueColName   = "venues"
	BookingColName = "bookings"
	RatingColName  = "venue_ratings"
)

// ErrNotFound covers both genuinely missing documents and documents
// the caller is not allowed to see; handlers map it to 404 without
// leaking which case applied.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned when a conditional update matched nothing
// because the document was no longer in the expected state.
var ErrConflict = errors.New("document not in expected state")

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(DbName).Collection(colName), nil
}
