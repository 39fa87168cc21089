package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-advisor/internal/logger"
	"github.com/rs/zerolog"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func RequireAuth(tokens TokenValidator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				WriteMessage(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			userID, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				l := logger.FromContextOr(r.Context(), log)
				l.Debug().Err(err).Msg("Rejected bearer token")
				WriteMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "" outside RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
