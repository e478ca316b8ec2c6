package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocall/server/internal/identity"
	"github.com/aerocall/server/internal/model"
)

// errorResponse matches error JSON bodies
type errorResponse struct {
	Error string `json:"error"`
}

// verifyResponse matches GET /api/auth/verify success bodies
type verifyResponse struct {
	Success bool   `json:"success"`
	UID     string `json:"uid"`
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, testConfig{})
	client := ts.Client()

	// Issue: the cookie must be HTTP-only with a 5-day max age
	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/api/auth/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+SignIDToken(t, "U1", "u1@example.com", "User One"))
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "success", body["status"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie must be set")
	assert.Equal(t, 432000, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	// First login provisions the user record with a deterministic team id
	user, err := ts.Users.GetByID(req.Context(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "team_U1", user.TeamID)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Equal(t, "u1@example.com", user.Email)

	// Verify returns the issued subject
	req, err = http.NewRequest(http.MethodGet, ts.BaseURL()+"/api/auth/verify", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verify := decode[verifyResponse](t, resp)
	assert.True(t, verify.Success)
	assert.Equal(t, "U1", verify.UID)

	// Revoke: cookie is expired and the artifact itself stops verifying
	req, err = http.NewRequest(http.MethodDelete, ts.BaseURL()+"/api/auth/session", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the cookie")

	// A retained cookie value must no longer verify after revocation
	req, err = http.NewRequest(http.MethodGet, ts.BaseURL()+"/api/auth/verify", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode[errorResponse](t, resp).Error)
}

func TestCreateSessionRejectsBadTokens(t *testing.T) {
	ts := newTestServer(t, testConfig{})
	client := ts.Client()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/api/auth/session", nil)
			require.NoError(t, err)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Empty(t, resp.Cookies(), "no cookie on auth failure")
		})
	}
}

func TestCreateSessionIdentityUnavailable(t *testing.T) {
	// Identity provider unconfigured: a distinct 500, not an auth failure
	ts := newTestServer(t, testConfig{identity: identity.Unconfigured{}})

	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/api/auth/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+SignIDToken(t, "U1", "u1@example.com", ""))
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestVerifyWithoutCookie(t *testing.T) {
	ts := newTestServer(t, testConfig{})

	resp, err := ts.Client().Get(ts.BaseURL() + "/api/auth/verify")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	ts := newTestServer(t, testConfig{})

	// No cookie at all still succeeds
	req, err := http.NewRequest(http.MethodDelete, ts.BaseURL()+"/api/auth/session", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
