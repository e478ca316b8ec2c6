package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signIDToken(t *testing.T, secret, uid string, expiresIn time.Duration, extra map[string]any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyIDToken(t *testing.T) {
	v := NewTokenVerifier("id-secret")

	token := signIDToken(t, "id-secret", "U1", time.Hour, map[string]any{
		"email": "u1@example.com",
		"name":  "User One",
	})

	subject, err := v.VerifyIDToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "U1", subject.UID)
	assert.Equal(t, "u1@example.com", subject.Email)
	assert.Equal(t, "User One", subject.Name)
}

func TestVerifyIDTokenFailuresCollapse(t *testing.T) {
	v := NewTokenVerifier("id-secret")
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signIDToken(t, "other-secret", "U1", time.Hour, nil)},
		{"expired", signIDToken(t, "id-secret", "U1", -time.Hour, nil)},
		{"missing subject", signIDToken(t, "id-secret", "", time.Hour, nil)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.VerifyIDToken(ctx, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestUnconfiguredVerifier(t *testing.T) {
	_, err := Unconfigured{}.VerifyIDToken(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}
