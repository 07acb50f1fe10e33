package db

import (
	"context"
	"time"

	"github.com/carsawa/carsawa-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DealerCollection defines the interface for dealer database operations.
type DealerCollection interface {
	InsertDealer(ctx context.Context, dealer models.Dealer) (*models.Dealer, error)
	FindDealerByID(ctx context.Context, id string) (*models.Dealer, error)
	FindDealerByEmail(ctx context.Context, email string) (*models.Dealer, error)
	FindDealers(ctx context.Context, page, pageSize int) ([]models.Dealer, int64, error)
	UpdateDealer(ctx context.Context, id string, dealer models.Dealer) error
}

// MongoDealerCollection implements DealerCollection for MongoDB.
type MongoDealerCollection struct {
	Collection *mongo.Collection
}

// InsertDealer inserts a new dealer and returns it with its assigned id.
func (c *MongoDealerCollection) InsertDealer(ctx context.Context, dealer models.Dealer) (*models.Dealer, error) {
	now := time.Now()
	dealer.CreatedAt = now
	dealer.UpdatedAt = now
	if dealer.ID.IsZero() {
		dealer.ID = primitive.NewObjectID()
	}

	if _, err := c.Collection.InsertOne(ctx, dealer); err != nil {
		return nil, err
	}
	return &dealer, nil
}

// FindDealerByID finds a dealer by id. A malformed id is reported as
// ErrNotFound.
func (c *MongoDealerCollection) FindDealerByID(ctx context.Context, id string) (*models.Dealer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var dealer models.Dealer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&dealer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dealer, nil
}

// FindDealerByEmail finds a dealer by email. Email matching is exact,
// case-sensitive as stored.
func (c *MongoDealerCollection) FindDealerByEmail(ctx context.Context, email string) (*models.Dealer, error) {
	var dealer models.Dealer
	err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&dealer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dealer, nil
}

// FindDealers returns one page of dealers plus the total dealer count.
func (c *MongoDealerCollection) FindDealers(ctx context.Context, page, pageSize int) ([]models.Dealer, int64, error) {
	total, err := c.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetLimit(int64(pageSize)).
		SetSkip(int64(pageSize) * int64(page-1)).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	dealers := []models.Dealer{}
	if err := cursor.All(ctx, &dealers); err != nil {
		return nil, 0, err
	}
	return dealers, total, nil
}

// UpdateDealer replaces the dealer document, refreshing its updatedAt.
func (c *MongoDealerCollection) UpdateDealer(ctx context.Context, id string, dealer models.Dealer) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	dealer.ID = objectID
	dealer.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, dealer)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
