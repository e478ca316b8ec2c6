package handlers

import (
	"fmt"
	"net/http"
)

// PageHandler serves placeholder pages for the guarded routes. Rendering is
// handled by the frontend; these exist so the guard has real routes to gate.
type PageHandler struct{}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Serve returns a handler rendering a minimal page with the given title
func (h *PageHandler) Serve(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><html><head><title>%s | Aerocall</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}
