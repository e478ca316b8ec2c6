package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aerocall/server/internal/middleware"
	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/team"
)

// TeamHandler handles team roster, invitation, and profile endpoints. All of
// these run behind SessionAuth; the subject id always comes from the
// verified session, never from the request.
type TeamHandler struct {
	teams *team.Service
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *team.Service) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// userResponse is the user object in API responses
type userResponse struct {
	UID                    string   `json:"uid"`
	Email                  string   `json:"email"`
	Name                   string   `json:"name"`
	FirstName              string   `json:"firstName"`
	LastName               string   `json:"lastName"`
	BusinessName           string   `json:"businessName,omitempty"`
	State                  string   `json:"state,omitempty"`
	RegisteredCountry      string   `json:"registeredCountry,omitempty"`
	Role                   string   `json:"role"`
	TeamID                 string   `json:"teamId"`
	AssignedPhoneNumbers   []string `json:"assignedPhoneNumbers"`
	RingCentralExtensionID string   `json:"ringcentralExtensionId,omitempty"`
}

func toUserResponse(u model.User) userResponse {
	resp := userResponse{
		UID:                  u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		BusinessName:         u.BusinessName,
		State:                u.State,
		RegisteredCountry:    u.RegisteredCountry,
		Role:                 string(u.Role),
		TeamID:               u.TeamID,
		AssignedPhoneNumbers: u.AssignedPhoneNumbers,
	}
	if resp.AssignedPhoneNumbers == nil {
		resp.AssignedPhoneNumbers = []string{}
	}
	if u.RingCentralExtensionID != nil {
		resp.RingCentralExtensionID = *u.RingCentralExtensionID
	}
	return resp
}

// memberResponse is a roster entry in API responses
type memberResponse struct {
	UID    string  `json:"uid"`
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Role   string  `json:"role"`
	Status string  `json:"status"`
}

// HandleGetProfile handles GET /api/profile
func (h *TeamHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	user, err := h.teams.Profile(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// profileRequest is the request body for PUT /api/profile
type profileRequest struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	BusinessName      string `json:"businessName"`
	State             string `json:"state"`
	RegisteredCountry string `json:"registeredCountry"`
}

// HandleUpdateProfile handles PUT /api/profile
func (h *TeamHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.teams.UpdateProfile(r.Context(), uid, model.ProfileUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		BusinessName:      req.BusinessName,
		State:             req.State,
		RegisteredCountry: req.RegisteredCountry,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// HandleListMembers handles GET /api/team/members
func (h *TeamHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	members, err := h.teams.Members(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		entry := memberResponse{
			UID:    m.ID,
			Email:  m.Email,
			Role:   string(m.Role),
			Status: string(m.Status),
		}
		if m.Status == model.MemberActive {
			name := m.Name
			entry.Name = &name
		}
		resp = append(resp, entry)
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": resp, "currentUserId": uid})
}

// inviteRequest is the request body for POST /api/team/invitations
type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleInvite handles POST /api/team/invitations
func (h *TeamHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if _, err := h.teams.Invite(r.Context(), uid, req.Email, model.Role(req.Role)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{})
}

// roleRequest is the request body for PATCH /api/team/members/{uid}
type roleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles PATCH /api/team/members/{uid}
func (h *TeamHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	memberID := chi.URLParam(r, "uid")
	if err := h.teams.UpdateMemberRole(r.Context(), uid, memberID, model.Role(req.Role)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{})
}

// HandleRemoveMember handles DELETE /api/team/members/{uid}
func (h *TeamHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	memberID := chi.URLParam(r, "uid")
	if err := h.teams.RemoveMember(r.Context(), uid, memberID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{})
}
