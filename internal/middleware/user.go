package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const userIDKey contextKey = "user_id"

// UserHeader carries the authenticated user id set by the upstream gateway.
const UserHeader = "X-User-ID"

// RequireUser rejects requests without a valid user id header and stores
// the id in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserHeader))
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Je bent niet ingelogd.")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), id.String())))
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}
