package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"bokeeb.kz/site-backend/internal/auth"
	"bokeeb.kz/site-backend/internal/config"
)

// CORSMiddleware sets permissive cross-origin headers on every response
// and answers preflight requests immediately. The widget is embedded on
// the marketing site, so any origin is acceptable.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PublishableKeyMiddleware gates widget-facing routes on the site's
// publishable bearer key. The key is not a secret per caller; it only
// keeps random internet traffic off the endpoints.
func PublishableKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(config.AppConfig.PublishableKey)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const adminEmailKey contextKey = "adminEmail"

// AdminAuthMiddleware validates the back-office JWT and stores the
// admin's email on the request context.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		email, err := auth.ValidateJWT(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), adminEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
