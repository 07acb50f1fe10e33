package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing status values.
const (
	StatusAvailable = "Available"
	StatusSold      = "Sold"
	StatusReserved  = "Reserved"
)

// Closed attribute sets for car listings.
var (
	Transmissions = []string{"Automatic", "Manual", "CVT", "Semi-Automatic"}
	Conditions    = []string{"New", "Used", "Certified Pre-Owned"}
	FuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid", "CNG", "LPG"}
	BodyTypes     = []string{"Sedan", "SUV", "Hatchback", "Coupe", "Convertible", "Wagon", "Van", "Truck"}
	Statuses      = []string{StatusAvailable, StatusSold, StatusReserved}
)

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidTransmission reports whether v is an allowed transmission type.
func IsValidTransmission(v string) bool { return contains(Transmissions, v) }

// IsValidCondition reports whether v is an allowed condition.
func IsValidCondition(v string) bool { return contains(Conditions, v) }

// IsValidFuelType reports whether v is an allowed fuel type.
func IsValidFuelType(v string) bool { return contains(FuelTypes, v) }

// IsValidBodyType reports whether v is an allowed body type.
func IsValidBodyType(v string) bool { return contains(BodyTypes, v) }

// IsValidStatus reports whether v is an allowed listing status.
func IsValidStatus(v string) bool { return contains(Statuses, v) }

// Car represents a car listing owned by a dealer.
type Car struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Dealer       primitive.ObjectID `bson:"dealer" json:"dealer"`
	Name         string             `bson:"name" json:"name"`
	Make         string             `bson:"make" json:"make"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year" json:"year"`
	Transmission string             `bson:"transmission" json:"transmission"`
	EngineSize   string             `bson:"engineSize" json:"engineSize"`
	Condition    string             `bson:"condition" json:"condition"`
	Price        float64            `bson:"price" json:"price"`
	Mileage      float64            `bson:"mileage" json:"mileage"`
	FuelType     string             `bson:"fuelType" json:"fuelType"`
	BodyType     string             `bson:"bodyType" json:"bodyType"`
	Color        string             `bson:"color" json:"color"`
	Features     []string           `bson:"features" json:"features"`
	Images       []string           `bson:"images" json:"images"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CarInput is the payload for creating a listing. The owning dealer is
// always injected server-side from the authenticated identity.
type CarInput struct {
	Name         string   `json:"name"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Transmission string   `json:"transmission"`
	EngineSize   string   `json:"engineSize"`
	Condition    string   `json:"condition"`
	Price        float64  `json:"price"`
	Mileage      float64  `json:"mileage"`
	FuelType     string   `json:"fuelType"`
	BodyType     string   `json:"bodyType"`
	Color        string   `json:"color"`
	Features     []string `json:"features"`
	Images       []string `json:"images"`
	Status       string   `json:"status"`
}

// Validate returns the list of field validation failures for a new listing.
func (c *CarInput) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "Car name is required")
	}
	if strings.TrimSpace(c.Make) == "" {
		errs = append(errs, "Make is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, "Model is required")
	}
	if c.Year < 1900 || c.Year > time.Now().Year()+1 {
		errs = append(errs, "Please provide a valid year")
	}
	if !IsValidTransmission(c.Transmission) {
		errs = append(errs, "Please provide a valid transmission type")
	}
	if strings.TrimSpace(c.EngineSize) == "" {
		errs = append(errs, "Engine size is required")
	}
	if !IsValidCondition(c.Condition) {
		errs = append(errs, "Please provide a valid condition")
	}
	if c.Price < 0 {
		errs = append(errs, "Price must be a non-negative number")
	}
	if c.Mileage < 0 {
		errs = append(errs, "Mileage must be a non-negative number")
	}
	if !IsValidFuelType(c.FuelType) {
		errs = append(errs, "Please provide a valid fuel type")
	}
	if !IsValidBodyType(c.BodyType) {
		errs = append(errs, "Please provide a valid body type")
	}
	if strings.TrimSpace(c.Color) == "" {
		errs = append(errs, "Color is required")
	}
	if c.Status != "" && !IsValidStatus(c.Status) {
		errs = append(errs, "Please provide a valid status")
	}
	return errs
}

// ToCar builds the listing document for the given owner. Status defaults to
// Available when unset.
func (c *CarInput) ToCar(dealerID primitive.ObjectID) Car {
	status := c.Status
	if status == "" {
		status = StatusAvailable
	}
	features := c.Features
	if features == nil {
		features = []string{}
	}
	images := c.Images
	if images == nil {
		images = []string{}
	}
	now := time.Now()
	return Car{
		Dealer:       dealerID,
		Name:         c.Name,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Transmission: c.Transmission,
		EngineSize:   c.EngineSize,
		Condition:    c.Condition,
		Price:        c.Price,
		Mileage:      c.Mileage,
		FuelType:     c.FuelType,
		BodyType:     c.BodyType,
		Color:        c.Color,
		Features:     features,
		Images:       images,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CarUpdate lists the mutable listing fields. Nil fields keep the stored
// value; set fields are validated against the closed attribute sets.
type CarUpdate struct {
	Name         *string   `json:"name"`
	Make         *string   `json:"make"`
	Model        *string   `json:"model"`
	Year         *int      `json:"year"`
	Transmission *string   `json:"transmission"`
	EngineSize   *string   `json:"engineSize"`
	Condition    *string   `json:"condition"`
	Price        *float64  `json:"price"`
	Mileage      *float64  `json:"mileage"`
	FuelType     *string   `json:"fuelType"`
	BodyType     *string   `json:"bodyType"`
	Color        *string   `json:"color"`
	Features     *[]string `json:"features"`
	Images       *[]string `json:"images"`
	Status       *string   `json:"status"`
}

// Validate returns the list of field validation failures for an update.
func (u *CarUpdate) Validate() []string {
	var errs []string
	if u.Year != nil && (*u.Year < 1900 || *u.Year > time.Now().Year()+1) {
		errs = append(errs, "Please provide a valid year")
	}
	if u.Transmission != nil && !IsValidTransmission(*u.Transmission) {
		errs = append(errs, "Please provide a valid transmission type")
	}
	if u.Condition != nil && !IsValidCondition(*u.Condition) {
		errs = append(errs, "Please provide a valid condition")
	}
	if u.Price != nil && *u.Price < 0 {
		errs = append(errs, "Price must be a non-negative number")
	}
	if u.Mileage != nil && *u.Mileage < 0 {
		errs = append(errs, "Mileage must be a non-negative number")
	}
	if u.FuelType != nil && !IsValidFuelType(*u.FuelType) {
		errs = append(errs, "Please provide a valid fuel type")
	}
	if u.BodyType != nil && !IsValidBodyType(*u.BodyType) {
		errs = append(errs, "Please provide a valid body type")
	}
	if u.Status != nil && !IsValidStatus(*u.Status) {
		errs = append(errs, "Please provide a valid status")
	}
	return errs
}

// UpdateStatusRequest is the payload for a status-only update.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// String identifies a car in log output.
func (c *Car) String() string {
	return fmt.Sprintf("%d %s %s (%s)", c.Year, c.Make, c.Model, c.ID.Hex())
}
