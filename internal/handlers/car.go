package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/events"
	"github.com/carsawa/carsawa-api/internal/middleware"
	"github.com/carsawa/carsawa-api/internal/models"
	"github.com/carsawa/carsawa-api/internal/query"
)

// CarHandler handles car listing requests.
type CarHandler struct {
	cars        db.CarCollection
	publisher   *events.Publisher
	maxPageSize int
}

// NewCarHandler creates a new car listing handler.
func NewCarHandler(cars db.CarCollection, publisher *events.Publisher, maxPageSize int) *CarHandler {
	return &CarHandler{
		cars:        cars,
		publisher:   publisher,
		maxPageSize: maxPageSize,
	}
}

// carListResponse is the paginated listing payload.
type carListResponse struct {
	Cars  []models.Car `json:"cars"`
	Page  int          `json:"page"`
	Pages int64        `json:"pages"`
	Total int64        `json:"total"`
}

// GetCars returns listings filtered, sorted and paginated per the request
// parameters.
func (h *CarHandler) GetCars(w http.ResponseWriter, r *http.Request) {
	q := query.ParseCarQuery(r.URL.Query(), h.maxPageSize)

	cars, total, err := h.cars.FindCars(r.Context(), q)
	if err != nil {
		log.WithError(err).Error("Failed to query cars")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, carListResponse{
		Cars:  cars,
		Page:  q.Page,
		Pages: query.TotalPages(total, q.PageSize),
		Total: total,
	})
}

// GetCarByID returns a single listing.
func (h *CarHandler) GetCarByID(w http.ResponseWriter, r *http.Request) {
	car, err := h.cars.FindCarByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Car not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, car)
}

// CreateCar creates a listing owned by the authenticated dealer. Any
// client-supplied dealer field is ignored; the owner always comes from the
// verified identity.
func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	dealer, ok := middleware.GetDealerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var input models.CarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if errs := input.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	car, err := h.cars.InsertCar(r.Context(), input.ToCar(dealer.ID))
	if err != nil {
		log.WithError(err).Error("Failed to create car")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.WithFields(log.Fields{
		"car_id":    car.ID.Hex(),
		"dealer_id": dealer.ID.Hex(),
	}).Info("Car listing created")
	h.publisher.Publish(events.CarCreated, car)

	respondJSON(w, http.StatusCreated, car)
}

// loadOwnedCar fetches the listing and enforces the ownership contract:
// existence is checked before ownership, so a missing listing is 404 for
// everyone and only a live listing owned by someone else is 403.
func (h *CarHandler) loadOwnedCar(w http.ResponseWriter, r *http.Request, action string) (*models.Car, *models.Dealer, bool) {
	dealer, ok := middleware.GetDealerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return nil, nil, false
	}

	car, err := h.cars.FindCarByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Car not found")
			return nil, nil, false
		}
		respondError(w, http.StatusInternalServerError, "Server error")
		return nil, nil, false
	}

	if car.Dealer != dealer.ID {
		respondError(w, http.StatusForbidden, "Not authorized to "+action+" this car")
		return nil, nil, false
	}

	return car, dealer, true
}

// UpdateCar applies a typed merge-update to a listing. Unknown fields are
// rejected.
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	_, _, ok := h.loadOwnedCar(w, r, "update")
	if !ok {
		return
	}

	var update models.CarUpdate
	if err := decodeStrict(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if errs := update.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	car, err := h.cars.UpdateCar(r.Context(), r.PathValue("id"), update)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to update car")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.publisher.Publish(events.CarUpdated, car)
	respondJSON(w, http.StatusOK, car)
}

// DeleteCar removes a listing.
func (h *CarHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	car, _, ok := h.loadOwnedCar(w, r, "delete")
	if !ok {
		return
	}

	if err := h.cars.DeleteCar(r.Context(), car.ID.Hex()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to delete car")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.publisher.Publish(events.CarDeleted, car)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Car removed"})
}

// UpdateCarStatus sets only the status of a listing. Unlike the query
// filter, the status here is validated against the enum.
func (h *CarHandler) UpdateCarStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.IsValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "Please provide a valid status")
		return
	}

	_, _, ok := h.loadOwnedCar(w, r, "update")
	if !ok {
		return
	}

	car, err := h.cars.UpdateCarStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to update car status")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.publisher.Publish(events.CarStatusChanged, car)
	respondJSON(w, http.StatusOK, car)
}
