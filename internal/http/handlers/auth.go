package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aerocall/server/internal/auth"
	"github.com/aerocall/server/internal/middleware"
)

// sessionMaxAge is the cookie lifetime in seconds (5 days)
const sessionMaxAge = int(auth.SessionTTL / time.Second)

// AuthHandler handles session issuance, revocation, and verification
type AuthHandler struct {
	authService *auth.Service
	sessions    *auth.SessionService
	ipLimiter   *middleware.RateLimiter
}

// NewAuthHandler creates a new auth handler. Session issuance is IP rate
// limited to slow credential stuffing.
func NewAuthHandler(authService *auth.Service, sessions *auth.SessionService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		ipLimiter:   middleware.NewRateLimiter(10*time.Minute, 20),
	}
}

// HandleCreateSession handles POST /api/auth/session: exchanges a verified
// identity bearer token for a session cookie.
func (h *AuthHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	idToken, ok := bearerToken(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.ipLimiter.Allow(middleware.GetIPKey(r)) {
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	artifact, err := h.authService.IssueSession(r.Context(), idToken)
	if err != nil {
		respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    artifact,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleDeleteSession handles DELETE /api/auth/session: revokes the session
// server-side when a cookie is present, then unconditionally expires the
// cookie. Idempotent, no error path.
func (h *AuthHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		// Best effort; the cookie is cleared regardless
		_ = h.sessions.Revoke(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{})
}

// HandleVerify handles GET /api/auth/verify: validates the session cookie
// and returns the subject id. Every validation failure collapses to a single
// 401 so session internals don't leak.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	uid, err := h.sessions.Verify(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Authentication service not available.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "uid": uid})
}

// bearerToken extracts the token from an Authorization: Bearer header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
