package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openkanban/board-api/internal/api"
	apiMiddleware "github.com/openkanban/board-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	authHandler := api.NewAuthHandler(app.userService)
	boardHandler := api.NewBoardHandler(app.boardService, app.activityService)
	listHandler := api.NewListHandler(app.listService)
	taskHandler := api.NewTaskHandler(app.taskService)
	healthHandler := api.NewHealthHandler()
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.RequestLogger)

		// Authentication endpoints (public)
		r.Post("/users/register", authHandler.Register)
		r.Post("/users/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", authHandler.Me)
			r.Get("/users", authHandler.ListUsers)

			r.Get("/boards", boardHandler.List)
			r.Post("/boards", boardHandler.Create)
			r.Get("/boards/{boardID}", boardHandler.Get)
			r.Patch("/boards/{boardID}", boardHandler.Update)
			r.Get("/boards/{boardID}/activity", boardHandler.Activity)

			r.Get("/boards/{boardID}/lists", listHandler.ListByBoard)
			r.Post("/boards/{boardID}/lists", listHandler.Create)
			r.Patch("/lists/{listID}", listHandler.Rename)
			r.Delete("/lists/{listID}", listHandler.Delete)
			r.Patch("/lists/{listID}/reorder", listHandler.Reorder)

			r.Get("/lists/{listID}/tasks", taskHandler.ListByList)
			r.Post("/lists/{listID}/tasks", taskHandler.Create)
			r.Get("/boards/{boardID}/tasks", taskHandler.ListByBoard)
			r.Get("/tasks/{taskID}", taskHandler.Get)
			r.Patch("/tasks/{taskID}", taskHandler.Update)
			r.Delete("/tasks/{taskID}", taskHandler.Delete)
			r.Post("/tasks/{taskID}/move", taskHandler.Move)
			r.Post("/tasks/{taskID}/assign", taskHandler.Assign)
			r.Delete("/tasks/{taskID}/assign/{userID}", taskHandler.Unassign)
		})
	})

	// The websocket endpoint stays outside the request logger group: the
	// logger's status-recording writer does not implement http.Hijacker,
	// which the websocket upgrade requires. The gateway does its own
	// credential check before any room join.
	r.Get("/ws", app.gateway.ServeHTTP)

	r.Get("/health", healthHandler.Check)

	return r
}
