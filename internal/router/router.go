package router

import (
	"log"
	"net/http"

	"github.com/dinetap/api/internal/config"
	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/handler"
	mw "github.com/dinetap/api/internal/middleware"
	"github.com/dinetap/api/internal/service"
	"github.com/dinetap/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, restaurant scoping, and role-based middleware
// as needed.
func New(cfg *config.Config, queries *database.Queries, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // dashboard dev server
			cfg.PublicBaseURL,
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Public staff application, gated by the signup key code in the URL
	applyHandler := handler.NewApplyHandler(queries)
	applyHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Restaurant-scoped routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			// Orders
			lifecycleService := service.NewLifecycleService(queries)
			orderHandler := handler.NewOrderHandler(lifecycleService, queries, hub)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Tables and their QR payloads
			tableHandler := handler.NewTableHandler(queries, cfg.PublicBaseURL)
			r.Route("/tables", tableHandler.RegisterRoutes)

			// Staff roster
			staffHandler := handler.NewStaffHandler(queries)
			r.Route("/staff", staffHandler.RegisterRoutes)

			// Hiring surface: applications and the signup key are
			// management-only.
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole("OWNER", "MANAGER"))

				approvalService := service.NewApprovalService(queries)
				applicationHandler := handler.NewApplicationHandler(approvalService, queries)
				r.Route("/applications", applicationHandler.RegisterRoutes)

				signupKeyService := service.NewSignupKeyService(queries)
				signupKeyHandler := handler.NewSignupKeyHandler(signupKeyService)
				r.Route("/signup-key", signupKeyHandler.RegisterRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
