// Package api exposes the tracker's read views and rate controls over
// JSON HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. Rate
// mutations require the admin key when one is set.
func NewServer(port string, h *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/summary", h.GetSummary)
	mux.HandleFunc("GET /api/v1/portfolio", h.GetPortfolio)
	mux.HandleFunc("GET /api/v1/tax-report", h.GetTaxReport)
	mux.HandleFunc("GET /api/v1/leases/expiring", h.GetExpiringLeases)
	mux.HandleFunc("GET /api/v1/performance", h.GetPerformance)
	mux.HandleFunc("GET /api/v1/rates", h.GetRates)

	admin := func(next http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return next
		}
		return requireAuth(adminAPIKey, next)
	}
	mux.Handle("PUT /api/v1/rates/{currency}", admin(h.SetRate))
	mux.Handle("POST /api/v1/rates/refresh", admin(h.RefreshRates))
	mux.Handle("POST /api/v1/rates/reset", admin(h.ResetRates))

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
