package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/carsawa/carsawa-api/internal/auth"
	"github.com/carsawa/carsawa-api/internal/db"
	"github.com/carsawa/carsawa-api/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	DealerContextKey contextKey = "dealer"
)

// AuthMiddleware resolves bearer tokens to dealer identities before
// protected routes run.
type AuthMiddleware struct {
	authService *auth.Service
	dealers     db.DealerCollection
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(authService *auth.Service, dealers db.DealerCollection) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		dealers:     dealers,
	}
}

// Protect validates the bearer token, loads the dealer it references and
// attaches it to the request context. Missing, malformed or expired tokens
// are rejected with 401; a valid token whose dealer no longer exists yields
// 404. Verification is read-only: tokens are never refreshed or rotated.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := m.authService.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		dealerID, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		dealer, err := m.dealers.FindDealerByID(r.Context(), dealerID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				jsonError(w, http.StatusNotFound, "Dealer not found")
				return
			}
			jsonError(w, http.StatusInternalServerError, "Server error")
			return
		}

		ctx := context.WithValue(r.Context(), DealerContextKey, dealer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDealerFromContext extracts the authenticated dealer from the request
// context.
func GetDealerFromContext(ctx context.Context) (*models.Dealer, bool) {
	dealer, ok := ctx.Value(DealerContextKey).(*models.Dealer)
	return dealer, ok
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]int64 // IP -> timestamps
	mu       sync.RWMutex       // Mutex for thread-safe access
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
	}
}

// RateLimit applies rate limiting based on IP address
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get client IP
			clientIP := getClientIP(r)

			// Clean old requests outside the window
			now := time.Now().Unix()
			windowStart := now - int64(windowSeconds)

			// Use write lock for map operations
			m.mu.Lock()

			if timestamps, exists := m.requests[clientIP]; exists {
				var validTimestamps []int64
				for _, ts := range timestamps {
					if ts >= windowStart {
						validTimestamps = append(validTimestamps, ts)
					}
				}
				m.requests[clientIP] = validTimestamps
			}

			// Check if rate limit exceeded
			if len(m.requests[clientIP]) >= maxRequests {
				m.mu.Unlock()
				jsonError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later")
				return
			}

			// Add current request
			m.requests[clientIP] = append(m.requests[clientIP], now)

			// Release lock
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check for forwarded headers first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// Fall back to remote address
	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
