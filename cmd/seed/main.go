// Seed registers demo dealers and fills their inventories through the
// public API, for local development and demos.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

var makesByBody = map[string][]string{
	"Sedan":     {"Toyota", "Honda", "BMW", "Mercedes-Benz", "Audi"},
	"SUV":       {"Toyota", "Nissan", "Land Rover", "Mazda", "Subaru"},
	"Hatchback": {"Volkswagen", "Honda", "Suzuki", "Peugeot"},
	"Truck":     {"Ford", "Chevrolet", "Isuzu", "Toyota"},
}

var modelsByMake = map[string][]string{
	"Toyota":        {"Corolla", "Camry", "Land Cruiser", "Hilux", "RAV4"},
	"Honda":         {"Civic", "Accord", "Fit", "CR-V"},
	"BMW":           {"320i", "X5", "520d"},
	"Mercedes-Benz": {"C200", "E350", "GLE"},
	"Audi":          {"A4", "A6", "Q5"},
	"Nissan":        {"X-Trail", "Patrol", "Juke"},
	"Land Rover":    {"Defender", "Discovery", "Range Rover Sport"},
	"Mazda":         {"CX-5", "Demio", "Axela"},
	"Subaru":        {"Forester", "Outback", "Impreza"},
	"Volkswagen":    {"Golf", "Polo", "Tiguan"},
	"Suzuki":        {"Swift", "Vitara"},
	"Peugeot":       {"208", "3008"},
	"Ford":          {"F-150", "Ranger"},
	"Chevrolet":     {"Silverado", "Colorado"},
	"Isuzu":         {"D-Max"},
}

var (
	transmissions = []string{"Automatic", "Manual", "CVT", "Semi-Automatic"}
	conditions    = []string{"New", "Used", "Certified Pre-Owned"}
	fuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid"}
	colors        = []string{"White", "Black", "Silver", "Blue", "Red", "Grey"}
	cities        = []string{"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret"}
)

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func registerDealer(apiURL string, n int) (string, error) {
	city := cities[rand.Intn(len(cities))]
	payload := map[string]interface{}{
		"name":     fmt.Sprintf("Demo Motors %d", n),
		"email":    fmt.Sprintf("demo-motors-%d-%d@example.com", n, time.Now().UnixNano()),
		"password": "demo-password",
		"phone":    fmt.Sprintf("+2547%08d", rand.Intn(100000000)),
		"whatsapp": fmt.Sprintf("+2547%08d", rand.Intn(100000000)),
		"location": map[string]string{
			"address": fmt.Sprintf("%d Demo Street", rand.Intn(200)+1),
			"city":    city,
			"state":   city,
			"country": "Kenya",
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := authorizedPost(apiURL+"/api/auth/register", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to register dealer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("dealer registration failed with status: %d", resp.StatusCode)
	}

	var result struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	authToken = result.Token
	log.WithFields(log.Fields{
		"dealer_id": result.ID,
		"city":      city,
	}).Info("Registered demo dealer")

	return result.ID, nil
}

func randomCar() map[string]interface{} {
	bodies := make([]string, 0, len(makesByBody))
	for b := range makesByBody {
		bodies = append(bodies, b)
	}
	body := bodies[rand.Intn(len(bodies))]
	carMake := makesByBody[body][rand.Intn(len(makesByBody[body]))]
	model := modelsByMake[carMake][rand.Intn(len(modelsByMake[carMake]))]
	year := 2008 + rand.Intn(17)

	return map[string]interface{}{
		"name":         fmt.Sprintf("%d %s %s", year, carMake, model),
		"make":         carMake,
		"model":        model,
		"year":         year,
		"transmission": transmissions[rand.Intn(len(transmissions))],
		"engineSize":   fmt.Sprintf("%.1fL", 1.0+rand.Float64()*3.5),
		"condition":    conditions[rand.Intn(len(conditions))],
		"price":        float64(500000 + rand.Intn(9500000)),
		"mileage":      float64(rand.Intn(220000)),
		"fuelType":     fuelTypes[rand.Intn(len(fuelTypes))],
		"bodyType":     body,
		"color":        colors[rand.Intn(len(colors))],
		"features":     []string{"Alloy wheels", "Reverse camera"},
	}
}

func createCar(apiURL string) error {
	data, err := json.Marshal(randomCar())
	if err != nil {
		return err
	}

	resp, err := authorizedPost(apiURL+"/api/cars", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("car creation failed with status: %d", resp.StatusCode)
	}

	var result struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	log.WithFields(log.Fields{
		"car_id": result.ID,
		"name":   result.Name,
	}).Info("Created demo listing")

	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	dealerCount := envInt("SEED_DEALERS", 3)
	carsPerDealer := envInt("SEED_CARS_PER_DEALER", 8)

	for i := 1; i <= dealerCount; i++ {
		if _, err := registerDealer(apiURL, i); err != nil {
			log.WithError(err).Fatal("Seed aborted")
		}
		for j := 0; j < carsPerDealer; j++ {
			if err := createCar(apiURL); err != nil {
				log.WithError(err).Error("Failed to seed listing")
			}
		}
	}

	log.WithFields(log.Fields{
		"dealers": dealerCount,
		"cars":    dealerCount * carsPerDealer,
	}).Info("Seeding complete")
}
