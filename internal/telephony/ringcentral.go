// Package telephony wraps the RingCentral REST API. The platform login is
// owned by the client: the access token is cached with its expiry and
// refreshed on demand, never shared as process-wide state.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrUnconfigured is returned when telephony credentials are absent
var ErrUnconfigured = errors.New("telephony: not configured")

// tokenSkew renews the cached token slightly before the provider's expiry
const tokenSkew = 30 * time.Second

// CallResult is the provider's ring-out response, passed through to clients
type CallResult map[string]any

// Client submits outbound ring-out calls
type Client interface {
	RingOut(ctx context.Context, fromNumber, toNumber string) (CallResult, error)
}

// APIError is a non-2xx response from the provider, with the
// provider-supplied message when one was present
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("telephony: provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("telephony: provider returned %d", e.StatusCode)
}

// Config holds RingCentral credentials
type Config struct {
	ServerURL    string
	ClientID     string
	ClientSecret string
	AdminJWT     string
}

// Configured reports whether all required credentials are present
func (c Config) Configured() bool {
	return c.ServerURL != "" && c.ClientID != "" && c.ClientSecret != "" && c.AdminJWT != ""
}

// RingCentral is the live client. Safe for concurrent use; a benign race on
// first use just repeats the idempotent login.
type RingCentral struct {
	cfg    Config
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewRingCentral creates a client for the given credentials
func NewRingCentral(cfg Config) *RingCentral {
	return &RingCentral{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// token returns a valid access token, logging in if the cached one is
// missing or expired
func (c *RingCentral) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", c.cfg.AdminJWT)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.ServerURL, "/")+"/restapi/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("platform login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: readProviderMessage(resp)}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("platform login: empty access token")
	}

	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenSkew)
	return c.accessToken, nil
}

// RingOut submits an outbound call: the provider first rings fromNumber's
// extension, then bridges to toNumber with fromNumber as caller id.
func (c *RingCentral) RingOut(ctx context.Context, fromNumber, toNumber string) (CallResult, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"from":       map[string]string{"phoneNumber": fromNumber},
		"to":         map[string]string{"phoneNumber": toNumber},
		"callerId":   map[string]string{"phoneNumber": fromNumber},
		"country":    map[string]string{"id": "1"},
		"playPrompt": true,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode ring-out request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.ServerURL, "/")+"/restapi/v1.0/account/~/extension/~/ring-out",
		bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build ring-out request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ring-out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked out-of-band; drop the cache so the next call re-logs in
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readProviderMessage(resp)}
	}

	var details CallResult
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode ring-out response: %w", err)
	}
	return details, nil
}

// readProviderMessage extracts the provider's error message, if any
func readProviderMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}

// Unconfigured is the explicit variant used when credentials are absent.
// Callers must surface it as a service-unavailable state.
type Unconfigured struct{}

// RingOut always fails with ErrUnconfigured
func (Unconfigured) RingOut(context.Context, string, string) (CallResult, error) {
	return nil, ErrUnconfigured
}
