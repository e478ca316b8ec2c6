package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier reports a fixed validity for any session
type stubVerifier struct {
	valid bool
}

func (s stubVerifier) SessionValid(context.Context, string) bool { return s.valid }

func TestRouteGuard(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		cookie       string
		valid        bool
		wantStatus   int
		wantLocation string
		wantCleared  bool
	}{
		{"no cookie, protected", "/dashboard", "", false, http.StatusFound, "/login", false},
		{"no cookie, public", "/login", "", false, http.StatusOK, "", false},
		{"no cookie, other", "/pricing", "", false, http.StatusOK, "", false},
		{"no cookie, root", "/", "", false, http.StatusOK, "", false},
		{"valid cookie, public", "/login", "tok", true, http.StatusFound, "/dashboard", false},
		{"valid cookie, root", "/", "tok", true, http.StatusFound, "/dashboard", false},
		{"valid cookie, protected", "/settings", "tok", true, http.StatusOK, "", false},
		{"valid cookie, nested protected", "/settings/team", "tok", true, http.StatusOK, "", false},
		{"valid cookie, other", "/pricing", "tok", true, http.StatusOK, "", false},
		{"invalid cookie, protected", "/dashboard", "stale", false, http.StatusFound, "/login", true},
		{"invalid cookie, public", "/signup", "stale", false, http.StatusOK, "", false},
		{"invalid cookie, other", "/pricing", "stale", false, http.StatusOK, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := RouteGuard(stubVerifier{valid: tc.valid})(next)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantLocation != "" {
				assert.Equal(t, tc.wantLocation, rec.Header().Get("Location"))
			}

			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == SessionCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tc.wantCleared, cleared, "cookie clearing mismatch")
		})
	}
}

func TestVerifyClient(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/verify", r.URL.Path)
		c, err := r.Cookie(SessionCookieName)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotCookie = c.Value
		if c.Value == "good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewVerifyClient(srv.URL)
	assert.True(t, client.SessionValid(context.Background(), "good"))
	assert.Equal(t, "good", gotCookie)
	assert.False(t, client.SessionValid(context.Background(), "bad"))

	// Unreachable verifier counts as invalid, never as an error
	srv.Close()
	assert.False(t, client.SessionValid(context.Background(), "good"))
}
