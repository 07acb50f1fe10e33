package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/carsawa/carsawa-api/internal/auth"
	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/middleware"
	"github.com/carsawa/carsawa-api/internal/models"
)

// AuthHandler handles dealer registration, login and profile management.
type AuthHandler struct {
	authService *auth.Service
	dealers     db.DealerCollection
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *auth.Service, dealers db.DealerCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		dealers:     dealers,
	}
}

func authResponse(dealer *models.Dealer, token string) models.AuthResponse {
	return models.AuthResponse{
		ID:           dealer.ID,
		Name:         dealer.Name,
		Email:        dealer.Email,
		Phone:        dealer.Phone,
		Whatsapp:     dealer.Whatsapp,
		Location:     dealer.Location,
		ProfileImage: dealer.ProfileImage,
		Token:        token,
	}
}

// Register handles dealer registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	_, err := h.dealers.FindDealerByEmail(r.Context(), req.Email)
	if err == nil {
		respondError(w, http.StatusBadRequest, "Dealer already exists")
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		log.WithError(err).Error("Failed to check for existing dealer")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	dealer, err := h.dealers.InsertDealer(r.Context(), models.Dealer{
		Name:     req.Name,
		Email:    req.Email,
		Password: passwordHash,
		Phone:    req.Phone,
		Whatsapp: req.Whatsapp,
		Location: req.Location,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create dealer")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.authService.GenerateToken(dealer.ID.Hex())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.WithFields(log.Fields{
		"dealer_id": dealer.ID.Hex(),
		"email":     dealer.Email,
	}).Info("Dealer registered")

	respondJSON(w, http.StatusCreated, authResponse(dealer, token))
}

// Login handles dealer login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.IsValidEmail(req.Email) || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	dealer, err := h.dealers.FindDealerByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if !h.authService.CheckPassword(req.Password, dealer.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.authService.GenerateToken(dealer.ID.Hex())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, authResponse(dealer, token))
}

// GetProfile returns the authenticated dealer's profile.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	dealer, ok := middleware.GetDealerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	respondJSON(w, http.StatusOK, dealer)
}

// UpdateProfile merges the supplied fields into the authenticated dealer's
// profile. The password is re-hashed only when a new plaintext is supplied.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	dealer, ok := middleware.GetDealerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	updated := *dealer
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Email != "" && req.Email != dealer.Email {
		if !models.IsValidEmail(req.Email) {
			respondError(w, http.StatusBadRequest, "Please provide a valid email")
			return
		}
		existing, err := h.dealers.FindDealerByEmail(r.Context(), req.Email)
		if err == nil && existing.ID != dealer.ID {
			respondError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusInternalServerError, "Server error")
			return
		}
		updated.Email = req.Email
	}
	if req.Phone != "" {
		updated.Phone = req.Phone
	}
	if req.Whatsapp != "" {
		updated.Whatsapp = req.Whatsapp
	}
	if req.ProfileImage != "" {
		updated.ProfileImage = req.ProfileImage
	}
	if req.Location != nil {
		if req.Location.Address != "" {
			updated.Location.Address = req.Location.Address
		}
		if req.Location.City != "" {
			updated.Location.City = req.Location.City
		}
		if req.Location.State != "" {
			updated.Location.State = req.Location.State
		}
		if req.Location.Country != "" {
			updated.Location.Country = req.Location.Country
		}
		if req.Location.Coordinates != nil {
			updated.Location.Coordinates = req.Location.Coordinates
		}
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			respondError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
			return
		}
		hash, err := h.authService.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Server error")
			return
		}
		updated.Password = hash
	}

	if err := h.dealers.UpdateDealer(r.Context(), dealer.ID.Hex(), updated); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Dealer not found")
			return
		}
		log.WithError(err).Error("Failed to update dealer profile")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	updated.UpdatedAt = time.Now()
	respondJSON(w, http.StatusOK, &updated)
}

// ChangePassword changes the authenticated dealer's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	dealer, ok := middleware.GetDealerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Please provide current and new password")
		return
	}

	if len(req.NewPassword) < 6 {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	if !h.authService.CheckPassword(req.CurrentPassword, dealer.Password) {
		respondError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	updated := *dealer
	updated.Password = hash
	if err := h.dealers.UpdateDealer(r.Context(), dealer.ID.Hex(), updated); err != nil {
		log.WithError(err).Error("Failed to change dealer password")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
