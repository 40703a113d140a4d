package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/elyx/internal/pipeline"
	"github.com/MikeSquared-Agency/elyx/internal/store"
)

// Runner starts a generation run.
type Runner interface {
	Run(ctx context.Context, memberID int64) (pipeline.Summary, error)
}

type Server struct {
	router *chi.Mux
	port   int
	store  store.DataStore
	runner Runner
	logger *slog.Logger
	http   *http.Server
}

func NewServer(port int, st store.DataStore, runner Runner, allowedOrigins []string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(metricsMiddleware)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	s := &Server{
		router: router,
		port:   port,
		store:  st,
		runner: runner,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/generate-conversations", s.generateConversations)
		r.Get("/member/{id}", s.getMember)
		r.Get("/conversations", s.listConversations)
		r.Get("/conversations/{memberID}", s.memberConversations)
		r.Get("/search-conversations", s.searchConversations)
		r.Get("/team-members", s.listTeamMembers)

		r.Get("/timeline", s.listTimeline)
		r.Get("/timeline/{memberID}", s.listTimeline)
		r.Get("/filter-timeline", s.filterTimeline)
		r.Get("/health-metrics", s.listHealthMetrics)
		r.Get("/health-metrics/{memberID}", s.listHealthMetrics)
		r.Get("/decisions", s.listDecisions)
		r.Get("/decisions/{memberID}", s.listDecisions)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
