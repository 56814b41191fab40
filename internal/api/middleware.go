package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated user id set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// AuthMiddleware verifies the Authorization bearer token and stores the
// resulting user id in the request context. Handlers never see the token.
func AuthMiddleware(verifier auth.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, http.StatusUnauthorized, "Unauthorized", "Not authorized")
				return
			}
			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("token verification failed", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Unauthorized", "Not authorized")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
