package call

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocall/server/internal/apperr"
	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/repo/repotest"
	"github.com/aerocall/server/internal/telephony"
)

// fakePhone records the last ring-out and returns a canned result
type fakePhone struct {
	calls   int
	from    string
	to      string
	failErr error
}

func (p *fakePhone) RingOut(_ context.Context, fromNumber, toNumber string) (telephony.CallResult, error) {
	p.calls++
	p.from = fromNumber
	p.to = toNumber
	if p.failErr != nil {
		return nil, p.failErr
	}
	return telephony.CallResult{"id": "ringout-1"}, nil
}

func seededUsers(extension bool) *repotest.Users {
	users := repotest.NewUsers()
	user := model.User{
		ID:                   "U1",
		Email:                "u1@example.com",
		Role:                 model.RoleAdmin,
		TeamID:               "team_U1",
		AssignedPhoneNumbers: []string{"3055550100"},
	}
	if extension {
		ext := "ext-1"
		user.RingCentralExtensionID = &ext
	}
	users.Seed(user)
	return users
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected a classified error, got %v", err)
	return ae.Kind
}

func TestPlaceCall(t *testing.T) {
	phone := &fakePhone{}
	svc := NewService(seededUsers(true), phone)

	details, err := svc.Place(context.Background(), "U1", "3055551234", "3055550100")
	require.NoError(t, err)
	assert.Equal(t, "ringout-1", details["id"])
	assert.Equal(t, "3055550100", phone.from)
	assert.Equal(t, "3055551234", phone.to)
}

func TestPlaceCallUnknownUser(t *testing.T) {
	phone := &fakePhone{}
	svc := NewService(seededUsers(true), phone)

	_, err := svc.Place(context.Background(), "nobody", "3055551234", "3055550100")
	assert.Equal(t, apperr.NotFound, kindOf(t, err))
	assert.Zero(t, phone.calls, "no provider call for unknown users")
}

func TestPlaceCallUnassignedCallerID(t *testing.T) {
	phone := &fakePhone{}
	svc := NewService(seededUsers(true), phone)

	_, err := svc.Place(context.Background(), "U1", "3055551234", "3055559999")
	assert.Equal(t, apperr.Authorization, kindOf(t, err))
	assert.Zero(t, phone.calls, "entitlement check must precede the provider call")
}

func TestPlaceCallWithoutExtension(t *testing.T) {
	phone := &fakePhone{}
	svc := NewService(seededUsers(false), phone)

	_, err := svc.Place(context.Background(), "U1", "3055551234", "3055550100")
	assert.Equal(t, apperr.Authorization, kindOf(t, err))
	assert.Zero(t, phone.calls)
}

func TestPlaceCallProviderError(t *testing.T) {
	phone := &fakePhone{failErr: &telephony.APIError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "Extension offline",
	}}
	svc := NewService(seededUsers(true), phone)

	_, err := svc.Place(context.Background(), "U1", "3055551234", "3055550100")
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Upstream, ae.Kind)
	assert.Equal(t, "Failed to initiate call", ae.Message)
	assert.Equal(t, "Extension offline", ae.Details, "provider detail must surface")
}

func TestPlaceCallUnconfiguredTelephony(t *testing.T) {
	svc := NewService(seededUsers(true), telephony.Unconfigured{})

	_, err := svc.Place(context.Background(), "U1", "3055551234", "3055550100")
	assert.Equal(t, apperr.Unavailable, kindOf(t, err))
	assert.True(t, errors.Is(err, telephony.ErrUnconfigured))
}
