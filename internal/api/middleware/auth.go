package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/finrag/internal/api"
)

type contextKey string

const ClientIDKey contextKey = "client_id"

// clientIDHeader is shared with outer middleware, which cannot see the
// context this middleware derives.
const clientIDHeader = "X-Client-ID"

var ErrInvalidAPIKey = errors.New("invalid api key")

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// StaticKey accepts exactly one configured token.
type StaticKey string

func (k StaticKey) ValidateAPIKey(_ context.Context, token string) (string, error) {
	if k == "" || subtle.ConstantTimeCompare([]byte(k), []byte(token)) != 1 {
		return "", ErrInvalidAPIKey
	}
	return "api-key", nil
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			clientID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			r.Header.Set(clientIDHeader, clientID)
			ctx := context.WithValue(r.Context(), ClientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClientID(ctx context.Context) string {
	clientID, _ := ctx.Value(ClientIDKey).(string)
	return clientID
}

func clientID(r *http.Request) string {
	if id := GetClientID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(clientIDHeader)
}
