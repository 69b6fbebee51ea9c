// Package api provides the HTTP server for VitalQuest. It is the surface the
// presentation layer talks to: profile, activity ledger, quests,
// achievements, streaks and notifications, all backed by one Engine.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/health"
	"github.com/vitalquest/vitalquest/internal/infra/metrics"
)

// Server is the VitalQuest HTTP API server.
type Server struct {
	eng            *engagement.Engine
	checker        *health.Checker // nil: /health reports liveness only
	metricsEnabled bool
	corsOrigins    []string
	version        string
}

// NewServer creates a new API server.
func NewServer(eng *engagement.Engine) *Server {
	return &Server{eng: eng, corsOrigins: []string{"*"}, version: "dev"}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker reports check results on /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// SetCORSOrigins sets the allowed browser origins. Empty keeps "*".
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// SetVersion sets the version reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(countRequests)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Post("/", s.handleCreateUser)
			r.Post("/reset", s.handleResetUser)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", s.handleListActivities)
			r.Post("/", s.handleLogActivity)
			r.Post("/import", s.handleImportActivities)
			r.Put("/{id}", s.handleUpdateActivity)
			r.Delete("/{id}", s.handleDeleteActivity)
		})
		r.Get("/summary", s.handleSummary)

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", s.handleListQuests)
			r.Post("/", s.handleCreateQuest)
			r.Post("/{id}/complete", s.handleCompleteQuest)
			r.Delete("/{id}", s.handleDeleteQuest)
		})

		r.Get("/achievements", s.handleAchievements)

		r.Route("/streaks", func(r chi.Router) {
			r.Get("/", s.handleStreaks)
			r.Post("/{type}/freeze", s.handleBuyFreeze)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleInventory)
			r.Post("/", s.handleAddItem)
			r.Post("/{id}/use", s.handleUseItem)
			r.Delete("/{id}", s.handleRemoveItem)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleNotifications)
			r.Post("/read", s.handleMarkAllRead)
			r.Post("/{id}/read", s.handleMarkRead)
			r.Delete("/", s.handleClearNotifications)
		})

		r.Post("/maintenance/sweep", s.handleSweep)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.checker.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.checker.Statuses(),
	})
}

// countRequests records every request by its route pattern.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    http.StatusText(status),
		},
	})
}
