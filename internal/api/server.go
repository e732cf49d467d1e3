package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. Revaluation is
// a mutating endpoint and requires the admin key when one is set.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /api/v1/baskets/{name}", handler.GetBasket)
	mux.HandleFunc("GET /api/v1/baskets/{name}/value", handler.GetBasketValue)
	mux.HandleFunc("GET /api/v1/baskets/{name}/asset-value", handler.GetAssetValue)
	mux.HandleFunc("GET /api/v1/baskets/{name}/history", handler.ListValuations)
	mux.HandleFunc("GET /api/v1/baskets/{name}/history/latest", handler.GetLatestValuation)

	revalueHandler := http.HandlerFunc(handler.Revalue)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/baskets/{name}/revalue", requireAuth(adminAPIKey, revalueHandler))
	} else {
		mux.Handle("POST /api/v1/baskets/{name}/revalue", revalueHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
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
