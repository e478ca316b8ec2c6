package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aerocall/server/internal/auth"
	"github.com/aerocall/server/internal/call"
	httphandler "github.com/aerocall/server/internal/http"
	"github.com/aerocall/server/internal/http/handlers"
	"github.com/aerocall/server/internal/identity"
	"github.com/aerocall/server/internal/middleware"
	"github.com/aerocall/server/internal/repo/repotest"
	"github.com/aerocall/server/internal/team"
	"github.com/aerocall/server/internal/telephony"
)

const (
	idTokenSecret = "test-id-token-secret"
	sessionSecret = "test-session-secret"
)

// testConfig selects integration variants for a test server
type testConfig struct {
	identity identity.Verifier
	phone    telephony.Client
}

// testServer wires the real router and services over in-memory repositories.
// The route guard talks to the server's own verify endpoint over HTTP, as in
// production.
type testServer struct {
	Server  *httptest.Server
	Users   *repotest.Users
	Invites *repotest.Invitations
}

func newTestServer(t *testing.T, cfg testConfig) *testServer {
	t.Helper()

	if cfg.identity == nil {
		cfg.identity = identity.NewTokenVerifier(idTokenSecret)
	}
	if cfg.phone == nil {
		cfg.phone = telephony.Unconfigured{}
	}

	users := repotest.NewUsers()
	invites := repotest.NewInvitations()
	sessions := repotest.NewSessions()

	sessionService := auth.NewSessionService(sessionSecret, sessions)
	authService := auth.NewService(cfg.identity, sessionService, users)
	callService := call.NewService(users, cfg.phone)
	teamService := team.NewService(users, invites)

	authHandler := handlers.NewAuthHandler(authService, sessionService)
	callHandler := handlers.NewCallHandler(sessionService, callService)
	teamHandler := handlers.NewTeamHandler(teamService)

	// The guard needs the server's base URL before the router exists, so the
	// server starts on an indirect handler that is swapped in below.
	var router http.Handler
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	guardVerifier := middleware.NewVerifyClient(server.URL)
	router = httphandler.NewRouter(authHandler, callHandler, teamHandler, sessionService, guardVerifier)

	return &testServer{Server: server, Users: users, Invites: invites}
}

// BaseURL returns the server's base URL
func (s *testServer) BaseURL() string { return s.Server.URL }

// Client returns an HTTP client that does not follow redirects, so guard
// behavior can be asserted directly
func (s *testServer) Client() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// SignIDToken mints an identity provider token for the subject
func SignIDToken(t *testing.T, uid, email, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"name":  name,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(idTokenSecret))
	require.NoError(t, err)
	return token
}

// CreateSession exchanges an ID token for a session cookie via the API
func (s *testServer) CreateSession(t *testing.T, uid string) *http.Cookie {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.BaseURL()+"/api/auth/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+SignIDToken(t, uid, uid+"@example.com", "Test User"))

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "session issuance must succeed")

	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
