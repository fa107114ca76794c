package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/identity"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
)

type contextKey string

const (
	identityKey    contextKey = "identity"
	accessTokenKey contextKey = "accessToken"
)

// Auth resolves the bearer access token to an identity before the handler
// runs, storing both the identity and the raw token on the request context.
func Auth(verifier identity.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Missing or invalid authorization token"))
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			id, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			ctx = context.WithValue(ctx, accessTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the verified identity, nil outside an Auth-guarded
// route.
func GetIdentity(ctx context.Context) *identity.Identity {
	id, _ := ctx.Value(identityKey).(*identity.Identity)
	return id
}

// GetUserID extracts the verified uid from context.
func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.UID
	}
	return ""
}

// GetAccessToken returns the raw bearer token the request carried.
func GetAccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
