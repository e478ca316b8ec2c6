package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/telephony"
)

func postCall(t *testing.T, ts *testServer, cookie *http.Cookie, body map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/api/call", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func seedCaller(ts *testServer, withExtension bool) {
	user := model.User{
		ID:                   "U1",
		Email:                "u1@example.com",
		Role:                 model.RoleAdmin,
		TeamID:               "team_U1",
		AssignedPhoneNumbers: []string{"3055550100"},
	}
	if withExtension {
		ext := "ext-1"
		user.RingCentralExtensionID = &ext
	}
	ts.Users.Seed(user)
}

func TestCallMissingFields(t *testing.T) {
	ts := newTestServer(t, testConfig{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing toNumber", map[string]string{"fromNumber": "3055550100"}},
		{"missing fromNumber", map[string]string{"toNumber": "3055551234"}},
		{"empty body", map[string]string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Rejected before auth or any external call: no session needed
			resp := postCall(t, ts, nil, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCallRequiresSession(t *testing.T) {
	ts := newTestServer(t, testConfig{})

	resp := postCall(t, ts, nil, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	stale := &http.Cookie{Name: "session", Value: "stale-artifact"}
	resp = postCall(t, ts, stale, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCallUnassignedCallerID(t *testing.T) {
	ts := newTestServer(t, testConfig{})
	seedCaller(ts, true)
	cookie := ts.CreateSession(t, "U1")

	resp := postCall(t, ts, cookie, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055559999",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You are not authorized to use this caller ID.",
		decode[errorResponse](t, resp).Error)
}

func TestCallWithoutProvisionedExtension(t *testing.T) {
	ts := newTestServer(t, testConfig{})
	seedCaller(ts, false)
	cookie := ts.CreateSession(t, "U1")

	resp := postCall(t, ts, cookie, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCallTelephonyUnconfigured(t *testing.T) {
	ts := newTestServer(t, testConfig{phone: telephony.Unconfigured{}})
	seedCaller(ts, true)
	cookie := ts.CreateSession(t, "U1")

	resp := postCall(t, ts, cookie, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCallSuccess(t *testing.T) {
	// Fake provider: one login, then ring-out
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/restapi/oauth/token":
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
		case "/restapi/v1.0/account/~/extension/~/ring-out":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "ringout-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer provider.Close()

	phone := telephony.NewRingCentral(telephony.Config{
		ServerURL:    provider.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		AdminJWT:     "admin-jwt",
	})

	ts := newTestServer(t, testConfig{phone: phone})
	seedCaller(ts, true)
	cookie := ts.CreateSession(t, "U1")

	resp := postCall(t, ts, cookie, map[string]string{
		"toNumber": "3055551234", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ringout-1", details["id"])
}

func TestCallProviderFailureSurfacesDetails(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/restapi/oauth/token":
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid destination number"})
		}
	}))
	defer provider.Close()

	phone := telephony.NewRingCentral(telephony.Config{
		ServerURL:    provider.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		AdminJWT:     "admin-jwt",
	})

	ts := newTestServer(t, testConfig{phone: phone})
	seedCaller(ts, true)
	cookie := ts.CreateSession(t, "U1")

	resp := postCall(t, ts, cookie, map[string]string{
		"toNumber": "bogus", "fromNumber": "3055550100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Failed to initiate call", body["error"])
	assert.Equal(t, "Invalid destination number", body["details"])
}
