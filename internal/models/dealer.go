package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates holds an optional lat/lon pair for a dealer location.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Location is a dealer's physical address.
type Location struct {
	Address     string       `bson:"address" json:"address"`
	City        string       `bson:"city" json:"city"`
	State       string       `bson:"state" json:"state"`
	Country     string       `bson:"country" json:"country"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Dealer represents a dealer account. The password hash is never serialized
// to JSON.
type Dealer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	Whatsapp     string             `bson:"whatsapp" json:"whatsapp"`
	Location     Location           `bson:"location" json:"location"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RegisterRequest is the payload for dealer registration.
type RegisterRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Phone    string   `json:"phone"`
	Whatsapp string   `json:"whatsapp"`
	Location Location `json:"location"`
}

// Validate returns the list of field validation failures, empty when the
// payload is acceptable.
func (r *RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "Name is required")
	}
	if !IsValidEmail(r.Email) {
		errs = append(errs, "Please provide a valid email")
	}
	if len(r.Password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long")
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs = append(errs, "Phone number is required")
	}
	if strings.TrimSpace(r.Whatsapp) == "" {
		errs = append(errs, "WhatsApp number is required")
	}
	if strings.TrimSpace(r.Location.Address) == "" {
		errs = append(errs, "Address is required")
	}
	if strings.TrimSpace(r.Location.City) == "" {
		errs = append(errs, "City is required")
	}
	if strings.TrimSpace(r.Location.State) == "" {
		errs = append(errs, "State is required")
	}
	if strings.TrimSpace(r.Location.Country) == "" {
		errs = append(errs, "Country is required")
	}
	return errs
}

// LoginRequest is the payload for dealer login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Whatsapp     string             `json:"whatsapp"`
	Location     Location           `json:"location"`
	ProfileImage string             `json:"profileImage,omitempty"`
	Token        string             `json:"token"`
}

// LocationUpdate carries optional location fields for a profile update.
// Empty fields keep the stored value.
type LocationUpdate struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates"`
}

// UpdateProfileRequest lists the mutable dealer fields. Empty fields keep
// the stored value; a non-empty password is re-hashed before persistence.
type UpdateProfileRequest struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Whatsapp     string          `json:"whatsapp"`
	Location     *LocationUpdate `json:"location"`
	ProfileImage string          `json:"profileImage"`
	Password     string          `json:"password"`
}

// ChangePasswordRequest is the payload for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Claims are the verified contents of a session token.
type Claims struct {
	DealerID string `json:"dealer_id"`
	Exp      int64  `json:"exp"`
}

// IsValidEmail performs a minimal shape check on an email address.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}
