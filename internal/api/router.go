package api

import (
	"net/http"

	"github.com/dom/jobtracker/internal/api/handlers"
	"github.com/dom/jobtracker/internal/api/middleware"
	"github.com/dom/jobtracker/internal/api/respond"
	"github.com/dom/jobtracker/internal/config"
	"github.com/dom/jobtracker/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const AuthPath = "/api/auth"

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(middleware.CORSPolicy{
		PathMethods: map[string]string{AuthPath: "POST, OPTIONS"},
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	expose := cfg.IsDevelopment()
	authHandler := handlers.NewAuthHandler(services.Auth, expose)
	applicationHandler := handlers.NewApplicationHandler(services.Application, expose)
	resumeHandler := handlers.NewResumeHandler(services.Resume, expose)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, http.StatusNotFound, "Not found")
		})

		// Public auth route
		r.Post("/auth", authHandler.Authenticate)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", applicationHandler.List)
				r.Post("/", applicationHandler.Create)
				r.Get("/{id}", applicationHandler.Get)
				r.Put("/{id}", applicationHandler.Update)
				r.Delete("/{id}", applicationHandler.Delete)
			})

			r.Route("/resumes", func(r chi.Router) {
				r.Get("/", resumeHandler.List)
				r.Post("/", resumeHandler.Upload)
				r.Get("/{id}", resumeHandler.Get)
				r.Delete("/{id}", resumeHandler.Delete)
			})
		})
	})

	// Web app assets
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
