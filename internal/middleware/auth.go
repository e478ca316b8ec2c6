package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SessionVerifier validates a session artifact and returns the subject id
type SessionVerifier interface {
	Verify(ctx context.Context, artifact string) (string, error)
}

// SessionAuth re-derives the caller's identity from the session cookie and
// attaches the subject id to the request context. Client-supplied ids are
// never trusted.
func SessionAuth(sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				respondWithError(w, http.StatusUnauthorized, "Authentication required.")
				return
			}

			uid, err := sessions.Verify(r.Context(), cookie.Value)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Authentication required.")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated subject id from context
func GetUserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	_ = json.NewEncoder(w).Encode(response)
}
