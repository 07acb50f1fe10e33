package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/models"
	"github.com/carsawa/carsawa-api/internal/query"
)

// DealerHandler handles the public dealer directory.
type DealerHandler struct {
	dealers     db.DealerCollection
	cars        db.CarCollection
	maxPageSize int
}

// NewDealerHandler creates a new dealer directory handler.
func NewDealerHandler(dealers db.DealerCollection, cars db.CarCollection, maxPageSize int) *DealerHandler {
	return &DealerHandler{
		dealers:     dealers,
		cars:        cars,
		maxPageSize: maxPageSize,
	}
}

type dealerListResponse struct {
	Dealers []models.Dealer `json:"dealers"`
	Page    int             `json:"page"`
	Pages   int64           `json:"pages"`
	Total   int64           `json:"total"`
}

// GetDealers returns one page of the dealer directory.
func (h *DealerHandler) GetDealers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := query.ParsePagination(r.URL.Query(), h.maxPageSize)

	dealers, total, err := h.dealers.FindDealers(r.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to query dealers")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, dealerListResponse{
		Dealers: dealers,
		Page:    page,
		Pages:   query.TotalPages(total, pageSize),
		Total:   total,
	})
}

// GetDealerByID returns a single dealer's public profile.
func (h *DealerHandler) GetDealerByID(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.dealers.FindDealerByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Dealer not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, dealer)
}

// GetDealerCars returns one dealer's listings, newest first, with the same
// status default and paging contract as the main listing query.
func (h *DealerHandler) GetDealerCars(w http.ResponseWriter, r *http.Request) {
	dealerID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Dealer not found")
		return
	}

	q := query.ParseDealerCarsQuery(dealerID, r.URL.Query(), h.maxPageSize)

	cars, total, err := h.cars.FindCars(r.Context(), q)
	if err != nil {
		log.WithError(err).Error("Failed to query dealer cars")
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
