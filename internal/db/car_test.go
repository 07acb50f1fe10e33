package db

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carsawa/carsawa-api/internal/models"
	"github.com/carsawa/carsawa-api/internal/query"
)

// testCollection connects to the test database and hands back a dropped
// collection, skipping the test when no MongoDB instance is reachable.
func testCollection(t *testing.T, name string) *mongo.Collection {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := ConnectMongo(uri)
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("test_carsawa").Collection(name)
	collection.Drop(context.Background())
	return collection
}

func seedCar(dealerID primitive.ObjectID, name string, price float64, status string) models.Car {
	return models.Car{
		Dealer:       dealerID,
		Name:         name,
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2020,
		Transmission: "Automatic",
		EngineSize:   "1.8L",
		Condition:    "Used",
		Price:        price,
		Mileage:      45000,
		FuelType:     "Petrol",
		BodyType:     "Sedan",
		Color:        "Silver",
		Features:     []string{},
		Images:       []string{},
		Status:       status,
	}
}

func TestMongoCarCollection_InsertCar(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	dealerID := primitive.NewObjectID()
	inserted, err := carCollection.InsertCar(context.Background(), seedCar(dealerID, "Toyota Corolla 2020", 15000, "Available"))
	require.NoError(t, err)
	assert.False(t, inserted.ID.IsZero())
	assert.NotZero(t, inserted.CreatedAt)
	assert.NotZero(t, inserted.UpdatedAt)

	found, err := carCollection.FindCarByID(context.Background(), inserted.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Toyota Corolla 2020", found.Name)
	assert.Equal(t, dealerID, found.Dealer)
}

func TestMongoCarCollection_FindCarByID_NotFound(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	_, err := carCollection.FindCarByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	// malformed ids normalize to the same not-found error
	_, err = carCollection.FindCarByID(context.Background(), "invalid-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoCarCollection_FindCars(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	dealerID := primitive.NewObjectID()
	otherDealer := primitive.NewObjectID()

	fixtures := []models.Car{
		seedCar(dealerID, "Cheap", 5000, "Available"),
		seedCar(dealerID, "Mid", 15000, "Available"),
		seedCar(dealerID, "Expensive", 30000, "Available"),
		seedCar(dealerID, "Gone", 12000, "Sold"),
		seedCar(otherDealer, "Elsewhere", 9000, "Available"),
	}
	for _, car := range fixtures {
		_, err := carCollection.InsertCar(context.Background(), car)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	t.Run("default status filter hides sold listings", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{}, 100)
		cars, total, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, cars, 4)
		for _, car := range cars {
			assert.Equal(t, "Available", car.Status)
		}
	})

	t.Run("price range", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{"minPrice": {"8000"}, "maxPrice": {"20000"}}, 100)
		cars, total, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, cars, 3)
	})

	t.Run("dealer filter", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{"dealer": {otherDealer.Hex()}}, 100)
		cars, total, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, cars, 1)
		assert.Equal(t, "Elsewhere", cars[0].Name)
	})

	t.Run("price sort ascending", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{"sort": {"price"}}, 100)
		cars, _, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, cars, 4)
		for i := 1; i < len(cars); i++ {
			assert.LessOrEqual(t, cars[i-1].Price, cars[i].Price)
		}
	})

	t.Run("default sort is newest first", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{}, 100)
		cars, _, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, cars, 4)
		for i := 1; i < len(cars); i++ {
			assert.False(t, cars[i].CreatedAt.After(cars[i-1].CreatedAt))
		}
	})

	t.Run("pagination preserves total", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{"page": {"2"}, "pageSize": {"3"}}, 100)
		cars, total, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, cars, 1)
	})

	t.Run("no matches returns empty slice not nil", func(t *testing.T) {
		q := query.ParseCarQuery(url.Values{"make": {"Lada"}}, 100)
		cars, total, err := carCollection.FindCars(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.NotNil(t, cars)
		assert.Empty(t, cars)
	})
}

func TestMongoCarCollection_UpdateCar(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	inserted, err := carCollection.InsertCar(context.Background(), seedCar(primitive.NewObjectID(), "Before", 10000, "Available"))
	require.NoError(t, err)

	name := "After"
	price := 12500.0
	updated, err := carCollection.UpdateCar(context.Background(), inserted.ID.Hex(), models.CarUpdate{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, 12500.0, updated.Price)
	// untouched fields keep their stored values
	assert.Equal(t, "Toyota", updated.Make)
	assert.True(t, updated.UpdatedAt.After(inserted.UpdatedAt) || updated.UpdatedAt.Equal(inserted.UpdatedAt))

	_, err = carCollection.UpdateCar(context.Background(), primitive.NewObjectID().Hex(), models.CarUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoCarCollection_UpdateCarStatus(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	inserted, err := carCollection.InsertCar(context.Background(), seedCar(primitive.NewObjectID(), "Listing", 10000, "Available"))
	require.NoError(t, err)

	updated, err := carCollection.UpdateCarStatus(context.Background(), inserted.ID.Hex(), "Sold")
	require.NoError(t, err)
	assert.Equal(t, "Sold", updated.Status)
	assert.Equal(t, "Listing", updated.Name)
}

func TestMongoCarCollection_DeleteCar(t *testing.T) {
	collection := testCollection(t, "cars")
	carCollection := &MongoCarCollection{Collection: collection}

	inserted, err := carCollection.InsertCar(context.Background(), seedCar(primitive.NewObjectID(), "Doomed", 10000, "Available"))
	require.NoError(t, err)

	err = carCollection.DeleteCar(context.Background(), inserted.ID.Hex())
	assert.NoError(t, err)

	_, err = carCollection.FindCarByID(context.Background(), inserted.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again reports not found
	err = carCollection.DeleteCar(context.Background(), inserted.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
