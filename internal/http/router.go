package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerocall/server/internal/http/handlers"
	"github.com/aerocall/server/internal/middleware"
)

// NewRouter creates the HTTP router. API routes authenticate per-request via
// the session cookie; page routes sit behind the route guard, which redirects
// instead of erroring.
func NewRouter(
	authHandler *handlers.AuthHandler,
	callHandler *handlers.CallHandler,
	teamHandler *handlers.TeamHandler,
	sessions middleware.SessionVerifier,
	guardVerifier middleware.GuardVerifier,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/session", authHandler.HandleCreateSession)
			r.Delete("/session", authHandler.HandleDeleteSession)
			r.Get("/verify", authHandler.HandleVerify)
		})

		r.Post("/call", callHandler.HandleCall)

		// Team and profile endpoints re-derive identity from the cookie
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions))
			r.Get("/profile", teamHandler.HandleGetProfile)
			r.Put("/profile", teamHandler.HandleUpdateProfile)
			r.Route("/team", func(r chi.Router) {
				r.Get("/members", teamHandler.HandleListMembers)
				r.Post("/invitations", teamHandler.HandleInvite)
				r.Patch("/members/{uid}", teamHandler.HandleUpdateRole)
				r.Delete("/members/{uid}", teamHandler.HandleRemoveMember)
			})
		})
	})

	// Page routes behind the guard
	pages := handlers.NewPageHandler()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard(guardVerifier))
		r.Get("/", pages.Serve("Aerocall"))
		r.Get("/login", pages.Serve("Login"))
		r.Get("/signup", pages.Serve("Sign up"))
		r.Get("/forgot-password", pages.Serve("Forgot password"))
		r.Get("/dashboard", pages.Serve("Dashboard"))
		r.Get("/contacts", pages.Serve("Contacts"))
		r.Get("/messages", pages.Serve("Messages"))
		r.Get("/voicemail", pages.Serve("Voicemail"))
		r.Get("/analytics", pages.Serve("Analytics"))
		r.Get("/settings", pages.Serve("Settings"))
	})

	return r
}
