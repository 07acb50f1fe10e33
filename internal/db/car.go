package db

import (
	"context"
	"time"

	"github.com/carsawa/carsawa-api/internal/models"
	"github.com/carsawa/carsawa-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CarCollection defines the interface for car listing database operations.
type CarCollection interface {
	InsertCar(ctx context.Context, car models.Car) (*models.Car, error)
	FindCarByID(ctx context.Context, id string) (*models.Car, error)
	FindCars(ctx context.Context, q query.CarQuery) ([]models.Car, int64, error)
	UpdateCar(ctx context.Context, id string, update models.CarUpdate) (*models.Car, error)
	UpdateCarStatus(ctx context.Context, id, status string) (*models.Car, error)
	DeleteCar(ctx context.Context, id string) error
}

// MongoCarCollection implements CarCollection for MongoDB.
type MongoCarCollection struct {
	Collection *mongo.Collection
}

// InsertCar inserts a new listing and returns it with its assigned id.
func (c *MongoCarCollection) InsertCar(ctx context.Context, car models.Car) (*models.Car, error) {
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}

	if _, err := c.Collection.InsertOne(ctx, car); err != nil {
		return nil, err
	}
	return &car, nil
}

// FindCarByID finds a listing by id. A malformed id is reported as
// ErrNotFound.
func (c *MongoCarCollection) FindCarByID(ctx context.Context, id string) (*models.Car, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var car models.Car
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// FindCars executes a resolved listing query and returns one page of
// listings plus the total count matching the filter before pagination.
func (c *MongoCarCollection) FindCars(ctx context.Context, q query.CarQuery) ([]models.Car, int64, error) {
	total, err := c.Collection.CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(q.Sort).
		SetLimit(q.Limit()).
		SetSkip(q.Skip())

	cursor, err := c.Collection.Find(ctx, q.Filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// UpdateCar applies the set fields of update to a listing, refreshing its
// updatedAt, and returns the updated document.
func (c *MongoCarCollection) UpdateCar(ctx context.Context, id string, update models.CarUpdate) (*models.Car, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := updateDocument(update)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var car models.Car
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// UpdateCarStatus sets only the listing status, refreshing its updatedAt,
// and returns the updated document.
func (c *MongoCarCollection) UpdateCarStatus(ctx context.Context, id, status string) (*models.Car, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"status": status, "updatedAt": time.Now()}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var car models.Car
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// DeleteCar removes a listing by id.
func (c *MongoCarCollection) DeleteCar(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// updateDocument builds the $set document from the update's non-nil fields.
func updateDocument(update models.CarUpdate) bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Make != nil {
		set["make"] = *update.Make
	}
	if update.Model != nil {
		set["model"] = *update.Model
	}
	if update.Year != nil {
		set["year"] = *update.Year
	}
	if update.Transmission != nil {
		set["transmission"] = *update.Transmission
	}
	if update.EngineSize != nil {
		set["engineSize"] = *update.EngineSize
	}
	if update.Condition != nil {
		set["condition"] = *update.Condition
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Mileage != nil {
		set["mileage"] = *update.Mileage
	}
	if update.FuelType != nil {
		set["fuelType"] = *update.FuelType
	}
	if update.BodyType != nil {
		set["bodyType"] = *update.BodyType
	}
	if update.Color != nil {
		set["color"] = *update.Color
	}
	if update.Features != nil {
		set["features"] = *update.Features
	}
	if update.Images != nil {
		set["images"] = *update.Images
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	return set
}
