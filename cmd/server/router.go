package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	apimiddleware "github.com/editorialhq/editorial-api/internal/api/middleware"
)

// setupRouter configures the HTTP router with middleware and the full
// route table. Auth routes are public; everything else under /api
// requires a valid access token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/login", app.authHandler.Login)
		r.Post("/auth/refresh", app.authHandler.Refresh)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Get("/tasks", app.taskHandler.ListTasks)
			r.Post("/tasks", app.taskHandler.CreateTask)
			r.Patch("/tasks/{id}", app.taskHandler.UpdateTask)
			r.Get("/tasks/{id}/comments", app.taskHandler.ListComments)
			r.Post("/tasks/{id}/comments", app.taskHandler.AddComment)
			r.Patch("/tasks/{id}/link-post", app.taskHandler.LinkPost)
			r.Post("/tasks/{id}/remind", app.taskHandler.Remind)

			r.Get("/scheduler", app.schedulerHandler.ListScheduled)
			r.Post("/scheduler", app.schedulerHandler.SchedulePost)

			r.Post("/posts/{id}/moderation-result", app.notificationHandler.ModerationResult)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
