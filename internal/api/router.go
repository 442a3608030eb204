// Package api wires the HTTP surface: routing, middleware, and dependency
// construction for the mentor service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gil-sasi/code-mentor/internal/api/handlers"
	"github.com/gil-sasi/code-mentor/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux    *http.ServeMux
	app    *App
	auth   *handlers.AuthHandler
	mentor *handlers.MentorHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux: http.NewServeMux(),
		app: app,
	}

	r.auth = handlers.NewAuthHandler(app.Auth)
	r.mentor = handlers.NewMentorHandler(
		app.Challenges, app.Submissions, app.Reviews, app.Progress, app.Dispatcher)

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	// Auth
	r.mux.HandleFunc("POST /api/v1/auth/register", r.auth.Register)
	r.mux.HandleFunc("POST /api/v1/auth/login", r.auth.Login)
	r.mux.HandleFunc("POST /api/v1/auth/logout", r.auth.Logout)
	r.mux.HandleFunc("GET /api/v1/auth/me", r.requireAuth(r.auth.Me))

	rateCfg := middleware.DefaultRateLimitConfig()

	// Mentor; challenge generation and submission work anonymously, the
	// generation endpoints carry a stricter rate limit
	r.mux.HandleFunc("POST /api/v1/mentor/challenge",
		r.optionalAuth(middleware.ExpensiveRateLimit(rateCfg, r.mentor.GenerateChallenge)))
	r.mux.HandleFunc("GET /api/v1/mentor/challenges", r.optionalAuth(r.mentor.ListChallenges))
	r.mux.HandleFunc("GET /api/v1/mentor/challenges/{id}", r.mentor.GetChallenge)
	r.mux.HandleFunc("POST /api/v1/mentor/submit-code",
		r.optionalAuth(middleware.ExpensiveRateLimit(rateCfg, r.mentor.SubmitCode)))
	r.mux.HandleFunc("POST /api/v1/mentor/review-code", r.mentor.ReviewCode)
	r.mux.HandleFunc("GET /api/v1/mentor/submissions/{id}", r.mentor.GetSubmission)

	// Progress requires a logged-in user
	r.mux.HandleFunc("GET /api/v1/mentor/progress", r.requireAuth(r.mentor.GetProgress))
	r.mux.HandleFunc("POST /api/v1/mentor/progress", r.requireAuth(r.mentor.UpdateProgress))
}

func (r *Router) buildMiddlewareChain(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Skip general rate limiting in debug mode for easier development
	if !r.app.Config.Debug {
		handler = middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig())(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(r.app.Config.CORSOrigins)(handler)

	return handler
}

// requireAuth rejects requests without a valid bearer token
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token := handlers.BearerToken(req)
		if token == "" {
			r.jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := r.app.Auth.ValidateToken(req.Context(), token)
		if err != nil {
			slog.Warn("invalid bearer token",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			r.jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(req.Context(), handlers.ContextKeyUser, user)
		next(w, req.WithContext(ctx))
	}
}

// optionalAuth attaches the user when a valid bearer token is present, and
// lets the request through anonymously otherwise.
func (r *Router) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token := handlers.BearerToken(req)
		if token == "" {
			next(w, req)
			return
		}

		user, err := r.app.Auth.ValidateToken(req.Context(), token)
		if err != nil {
			r.jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(req.Context(), handlers.ContextKeyUser, user)
		next(w, req.WithContext(ctx))
	}
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	r.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{"database": "healthy"}
	ready := true

	if err := r.app.DB.PingContext(req.Context()); err != nil {
		slog.Error("database health check failed",
			"error", err,
			"request_id", middleware.GetRequestID(req.Context()),
		)
		checks["database"] = "unhealthy"
		ready = false
	}

	// The queue check only applies to broker-backed deployments
	if r.app.Queue != nil {
		checks["queue"] = "healthy"
		if !r.app.Queue.IsConnected() {
			checks["queue"] = "unhealthy"
			ready = false
		}
	}

	if !ready {
		r.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"checks": checks,
		})
		return
	}

	r.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}

// Helper for JSON responses
func (r *Router) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func (r *Router) jsonError(w http.ResponseWriter, status int, message string) {
	handlers.JSONError(w, status, message)
}
