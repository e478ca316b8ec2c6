package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aerocall/server/internal/call"
	"github.com/aerocall/server/internal/middleware"
)

// CallHandler handles the outbound call proxy endpoint
type CallHandler struct {
	sessions middleware.SessionVerifier
	calls    *call.Service
}

// NewCallHandler creates a new call handler
func NewCallHandler(sessions middleware.SessionVerifier, calls *call.Service) *CallHandler {
	return &CallHandler{sessions: sessions, calls: calls}
}

// callRequest is the request body for POST /api/call
type callRequest struct {
	ToNumber   string `json:"toNumber"`
	FromNumber string `json:"fromNumber"`
}

// HandleCall handles POST /api/call. Input validation happens before the
// session check so malformed requests never reach an external service.
func (h *CallHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.ToNumber = strings.TrimSpace(req.ToNumber)
	req.FromNumber = strings.TrimSpace(req.FromNumber)

	if req.ToNumber == "" {
		respondWithError(w, http.StatusBadRequest, `Missing "toNumber" in request body`)
		return
	}
	if req.FromNumber == "" {
		respondWithError(w, http.StatusBadRequest, `Missing "fromNumber" (caller ID) in request body`)
		return
	}

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized. Please log in.")
		return
	}
	uid, err := h.sessions.Verify(r.Context(), cookie.Value)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized. Please log in.")
		return
	}

	details, err := h.calls.Place(r.Context(), uid, req.ToNumber, req.FromNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "details": details})
}
