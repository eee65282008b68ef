package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"quiz-service/pkg/httpx"
)

const authenticateHeader = `Basic realm="quiz"`

// Middleware resolves the caller from a bearer token or HTTP Basic credentials
// and stores the caller's email in the request context.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteUnauthorized(w, "Authorization header required")
				return
			}

			var email string
			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				parsed, err := service.ParseToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
				if err != nil {
					WriteUnauthorized(w, "Invalid token")
					return
				}
				email = parsed

			case strings.HasPrefix(authHeader, "Basic "):
				username, password, ok := r.BasicAuth()
				if !ok {
					WriteUnauthorized(w, "Invalid basic credentials")
					return
				}
				user, err := service.Authenticate(r.Context(), username, password)
				if err != nil {
					if !errors.Is(err, ErrInvalidCredentials) {
						log.Printf("Error authenticating %s: %v", username, err)
						httpx.WriteError(w, http.StatusInternalServerError, "request failed")
						return
					}
					WriteUnauthorized(w, "Invalid credentials")
					return
				}
				email = user.Email

			default:
				WriteUnauthorized(w, "Invalid authorization scheme")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}

// WriteUnauthorized writes a 401 with the Basic challenge header.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", authenticateHeader)
	httpx.WriteError(w, http.StatusUnauthorized, message)
}
