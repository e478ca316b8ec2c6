// Package call authorizes and proxies outbound call requests
package call

import (
	"context"
	"errors"

	"github.com/aerocall/server/internal/apperr"
	"github.com/aerocall/server/internal/repo"
	"github.com/aerocall/server/internal/telephony"
)

// Service places outbound calls after checking the caller's entitlements
type Service struct {
	users repo.UserRepo
	phone telephony.Client
}

// NewService creates a new call service
func NewService(users repo.UserRepo, phone telephony.Client) *Service {
	return &Service{users: users, phone: phone}
}

// Place checks that the caller may use fromNumber as caller id and is
// provisioned for calling, then submits the ring-out request.
func (s *Service) Place(ctx context.Context, uid, toNumber, fromNumber string) (telephony.CallResult, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found in database.")
		}
		return nil, apperr.Wrap(apperr.Upstream, "Failed to load user.", err)
	}

	if !user.HasPhoneNumber(fromNumber) {
		return nil, apperr.New(apperr.Authorization, "You are not authorized to use this caller ID.")
	}
	if user.RingCentralExtensionID == nil {
		return nil, apperr.New(apperr.Authorization, "User is not provisioned for calling")
	}

	details, err := s.phone.RingOut(ctx, fromNumber, toNumber)
	if err != nil {
		if errors.Is(err, telephony.ErrUnconfigured) {
			return nil, apperr.Wrap(apperr.Unavailable, "Calling service not available.", err)
		}
		var apiErr *telephony.APIError
		if errors.As(err, &apiErr) {
			return nil, apperr.WithDetails(apperr.Upstream, "Failed to initiate call", apiErr.Message, err)
		}
		return nil, apperr.Wrap(apperr.Upstream, "Failed to initiate call", err)
	}
	return details, nil
}
