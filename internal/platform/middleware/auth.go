package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "playfinder/pkg/domain"
	"playfinder/pkg/requestcontext"
)

// TokenValidator resolves an opaque bearer token to a user principal. Tokens
// are server-generated secrets, not structured credentials; validation is a
// store lookup.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (id.UserID, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// resolved user ID into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			userID, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}

// bearerToken extracts the credential from the Authorization header. A bare
// token without the Bearer prefix is accepted for compatibility with clients
// that send the raw secret.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return header
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
