package rest

import (
	"net/http"

	"questnote/application/services"
	"questnote/application/session"
	"questnote/infrastructure/config"
	"questnote/interfaces/http/rest/handlers"
	"questnote/interfaces/http/rest/middleware"
	"questnote/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg       *config.Config
	sessions  *session.Manager
	progress  *services.ProgressService
	validator *auth.JWTValidator
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	sessions *session.Manager,
	progress *services.ProgressService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		sessions:  sessions,
		progress:  progress,
		validator: validator,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.LocalIDHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identify(rt.validator, rt.logger))

		// Note endpoints
		r.Route("/notes", func(r chi.Router) {
			noteHandler := handlers.NewNoteHandler(rt.sessions, rt.progress, rt.logger)
			r.Post("/", noteHandler.CreateNote)
			r.Get("/", noteHandler.ListNotes)
			r.Get("/{noteID}", noteHandler.GetNote)
			r.Put("/{noteID}", noteHandler.UpdateNote)
			r.Delete("/{noteID}", noteHandler.DeleteNote)

			// Checklist endpoints
			r.Post("/{noteID}/tasks", noteHandler.AddTask)
			r.Put("/{noteID}/tasks/{taskID}/toggle", noteHandler.ToggleTask)
			r.Post("/{noteID}/complete-all", noteHandler.CompleteAllTasks)
		})

		// Connection endpoints
		r.Route("/connections", func(r chi.Router) {
			connectionHandler := handlers.NewConnectionHandler(rt.sessions, rt.logger)
			r.Post("/", connectionHandler.CreateConnection)
			r.Get("/", connectionHandler.ListConnections)
			r.Delete("/{connectionID}", connectionHandler.DeleteConnection)
		})

		// Derived graph view
		r.Get("/mindmap", handlers.NewMindMapHandler(rt.sessions, rt.logger).GetGraph)

		// Progression profile
		r.Get("/profile", handlers.NewProfileHandler(rt.sessions, rt.progress, rt.logger).GetProfile)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
