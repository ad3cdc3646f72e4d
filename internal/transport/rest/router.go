package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"suma/internal/service"
	"suma/internal/transport/rest/handler"
	"suma/internal/transport/rest/middleware"
	"suma/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	CommentService   *service.CommentService
	Tracker          *service.Tracker
	Flusher          *service.Flusher
	CollectorService *service.CollectorService
	FileService      *service.FileService
	WSHub            *ws.Hub
	Logger           *slog.Logger

	BufferCapacity int
	RefreshTTL     time.Duration
	SecureCookies  bool
	CORSOrigins    string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.RefreshTTL, c.SecureCookies)
	commentHandler := handler.NewCommentHandler(c.CommentService)
	metricsHandler := handler.NewMetricsHandler(c.Tracker, c.Flusher, c.CollectorService, c.BufferCapacity)
	fileHandler := handler.NewFileHandler(c.FileService)
	wsHandler := ws.NewHandler(c.WSHub, c.CommentService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	v1.HandleFunc("/ai/comment", commentHandler.Resolve).Methods("POST", "OPTIONS")
	v1.HandleFunc("/metrics/events", metricsHandler.Track).Methods("POST", "OPTIONS")
	v1.HandleFunc("/metrics/visibility", metricsHandler.Visibility).Methods("POST", "OPTIONS")
	v1.HandleFunc("/metrics/unload", metricsHandler.Unload).Methods("POST", "OPTIONS")
	v1.HandleFunc("/metrics/collect", metricsHandler.Collect).Methods("POST", "OPTIONS")

	// WebSocket routes
	v1.HandleFunc("/ws/comments", wsHandler.CommentsWS).Methods("GET")

	// Course documents
	r.HandleFunc("/files/{path:.*}", fileHandler.Get).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Console routes (require a signed-in user)
	consoleRoutes := v1.NewRoute().Subrouter()
	consoleRoutes.Use(authMW.RequireAuth)

	consoleRoutes.HandleFunc("/metrics/buffer", metricsHandler.Buffer).Methods("GET", "OPTIONS")
	consoleRoutes.HandleFunc("/metrics/flush", metricsHandler.Flush).Methods("POST", "OPTIONS")
	consoleRoutes.HandleFunc("/metrics/batches", metricsHandler.Batches).Methods("GET", "OPTIONS")
	consoleRoutes.HandleFunc("/metrics/summary", metricsHandler.Summary).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if allowedOrigins != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
