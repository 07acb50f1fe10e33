package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/carsawa/carsawa-api/internal/auth"
	"github.com/carsawa/carsawa-api/internal/config"
	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/events"
	"github.com/carsawa/carsawa-api/internal/handlers"
	"github.com/carsawa/carsawa-api/internal/middleware"
	"github.com/carsawa/carsawa-api/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.DBName)
	dealers := &db.MongoDealerCollection{Collection: database.Collection("dealers")}
	cars := &db.MongoCarCollection{Collection: database.Collection("cars")}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	authMW := middleware.NewAuthMiddleware(authService, dealers)

	publisher, err := events.NewPublisher(cfg.MQTT)
	if err != nil {
		log.WithError(err).Warn("Listing event publisher disabled")
	} else if publisher != nil {
		defer publisher.Close()
		log.WithField("broker", cfg.MQTT.BrokerURL).Info("Listing event publisher connected")
	}

	authHandler := handlers.NewAuthHandler(authService, dealers)
	carHandler := handlers.NewCarHandler(cars, publisher, cfg.MaxPageSize)
	dealerHandler := handlers.NewDealerHandler(dealers, cars, cfg.MaxPageSize)

	protect := func(h http.HandlerFunc) http.Handler {
		return authMW.Protect(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to Carsawa API"}`))
	})

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", protect(authHandler.GetProfile))
	mux.Handle("PUT /api/auth/update-profile", protect(authHandler.UpdateProfile))
	mux.Handle("PUT /api/auth/change-password", protect(authHandler.ChangePassword))

	mux.HandleFunc("GET /api/cars", carHandler.GetCars)
	mux.HandleFunc("GET /api/cars/{id}", carHandler.GetCarByID)
	mux.Handle("POST /api/cars", protect(carHandler.CreateCar))
	mux.Handle("PUT /api/cars/{id}", protect(carHandler.UpdateCar))
	mux.Handle("DELETE /api/cars/{id}", protect(carHandler.DeleteCar))
	mux.Handle("PUT /api/cars/{id}/status", protect(carHandler.UpdateCarStatus))

	mux.HandleFunc("GET /api/dealers", dealerHandler.GetDealers)
	mux.HandleFunc("GET /api/dealers/{id}", dealerHandler.GetDealerByID)
	mux.HandleFunc("GET /api/dealers/{id}/cars", dealerHandler.GetDealerCars)

	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize image store")
		}
		uploadHandler := handlers.NewUploadHandler(store)
		mux.Handle("POST /api/upload", protect(uploadHandler.UploadImages))
		mux.Handle("DELETE /api/upload/{key...}", protect(uploadHandler.DeleteImage))
		log.WithField("bucket", cfg.S3.Bucket).Info("Image store ready")
	} else {
		log.Warn("S3_BUCKET not set, upload endpoints disabled")
	}

	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSeconds)(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := server.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}
