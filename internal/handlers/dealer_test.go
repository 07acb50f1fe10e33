package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/models"
	"github.com/carsawa/carsawa-api/internal/query"
)

func TestDealerHandler_GetDealers(t *testing.T) {
	dealers := new(MockDealerCollection)
	cars := new(MockCarCollection)
	handler := NewDealerHandler(dealers, cars, 100)

	listed := []models.Dealer{
		{ID: primitive.NewObjectID(), Name: "Motors A", Password: "hash-a"},
		{ID: primitive.NewObjectID(), Name: "Motors B", Password: "hash-b"},
	}
	dealers.On("FindDealers", mock.Anything, 1, 10).Return(listed, int64(12), nil)

	req := httptest.NewRequest("GET", "/api/dealers", nil)
	w := httptest.NewRecorder()
	handler.GetDealers(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Dealers []models.Dealer `json:"dealers"`
		Page    int             `json:"page"`
		Pages   int64           `json:"pages"`
		Total   int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Dealers, 2)
	assert.Equal(t, int64(2), resp.Pages)
	assert.Equal(t, int64(12), resp.Total)

	// password hashes never leave the server
	assert.NotContains(t, w.Body.String(), "hash-a")
	assert.NotContains(t, w.Body.String(), "hash-b")
}

func TestDealerHandler_GetDealerByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		dealers := new(MockDealerCollection)
		handler := NewDealerHandler(dealers, new(MockCarCollection), 100)

		dealer := &models.Dealer{ID: primitive.NewObjectID(), Name: "Motors A"}
		dealers.On("FindDealerByID", mock.Anything, dealer.ID.Hex()).Return(dealer, nil)

		req := httptest.NewRequest("GET", "/api/dealers/"+dealer.ID.Hex(), nil)
		req.SetPathValue("id", dealer.ID.Hex())
		w := httptest.NewRecorder()
		handler.GetDealerByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		dealers := new(MockDealerCollection)
		handler := NewDealerHandler(dealers, new(MockCarCollection), 100)

		dealers.On("FindDealerByID", mock.Anything, "bad-id").Return(nil, db.ErrNotFound)

		req := httptest.NewRequest("GET", "/api/dealers/bad-id", nil)
		req.SetPathValue("id", "bad-id")
		w := httptest.NewRecorder()
		handler.GetDealerByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Dealer not found"}`, w.Body.String())
	})
}

func TestDealerHandler_GetDealerCars(t *testing.T) {
	t.Run("restricted to the dealer with status default", func(t *testing.T) {
		dealers := new(MockDealerCollection)
		cars := new(MockCarCollection)
		handler := NewDealerHandler(dealers, cars, 100)

		dealerID := primitive.NewObjectID()
		cars.On("FindCars", mock.Anything, mock.MatchedBy(func(q query.CarQuery) bool {
			return q.Filter["dealer"] == dealerID && q.Filter["status"] == "Available"
		})).Return([]models.Car{*testCar(dealerID)}, int64(1), nil)

		req := httptest.NewRequest("GET", "/api/dealers/"+dealerID.Hex()+"/cars", nil)
		req.SetPathValue("id", dealerID.Hex())
		w := httptest.NewRecorder()
		handler.GetDealerCars(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":1`)
		cars.AssertExpectations(t)
	})

	t.Run("malformed dealer id is not found", func(t *testing.T) {
		handler := NewDealerHandler(new(MockDealerCollection), new(MockCarCollection), 100)

		req := httptest.NewRequest("GET", "/api/dealers/garbage/cars", nil)
		req.SetPathValue("id", "garbage")
		w := httptest.NewRecorder()
		handler.GetDealerCars(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Dealer not found"}`, w.Body.String())
	})
}
