package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session artifact
const SessionCookieName = "session"

// protectedPrefixes are route prefixes requiring an authenticated session
var protectedPrefixes = []string{
	"/dashboard",
	"/contacts",
	"/messages",
	"/voicemail",
	"/analytics",
	"/settings",
}

// publicRoutes are routes an authenticated user is redirected away from
var publicRoutes = map[string]bool{
	"/login":           true,
	"/signup":          true,
	"/forgot-password": true,
}

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GuardVerifier checks whether a session cookie value is currently valid
type GuardVerifier interface {
	SessionValid(ctx context.Context, artifact string) bool
}

// RouteGuard gates page routes on session state:
//
//	no cookie   + protected       -> redirect to /login
//	no cookie   + public/other    -> pass through
//	valid       + public or "/"   -> redirect to /dashboard
//	valid       + protected/other -> pass through
//	invalid     + protected       -> clear cookie, redirect to /login
//	invalid     + public/other    -> pass through, stale cookie ignored
func RouteGuard(verifier GuardVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				if isProtected(path) {
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if verifier.SessionValid(r.Context(), cookie.Value) {
				if publicRoutes[path] || path == "/" {
					http.Redirect(w, r, "/dashboard", http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if isProtected(path) {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
					Secure:   true,
				})
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VerifyClient validates sessions by calling the verification endpoint over
// HTTP, one round-trip per guarded request. Unreachability counts as
// invalid; the guard redirects rather than erroring.
type VerifyClient struct {
	verifyURL string
	client    *http.Client
}

// NewVerifyClient creates a verifier against the given site base URL
func NewVerifyClient(siteURL string) *VerifyClient {
	return &VerifyClient{
		verifyURL: strings.TrimRight(siteURL, "/") + "/api/auth/verify",
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// SessionValid reports whether the verification endpoint accepts the cookie
func (c *VerifyClient) SessionValid(ctx context.Context, artifact string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return false
	}
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: artifact})

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Session verification failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
