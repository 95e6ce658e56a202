// Package server exposes the fragrance collection, search, battles, and
// insights over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"scentlab/internal/battle"
	"scentlab/internal/config"
	"scentlab/internal/core"
	"scentlab/internal/insights"
	"scentlab/internal/logger"
	"scentlab/internal/store"
	"scentlab/internal/taxonomy"
)

// Searcher runs a free-text fragrance search.
type Searcher interface {
	Search(ctx context.Context, query string) (core.SearchResult, error)
}

// Recommender produces an AI recommendation for one category.
type Recommender interface {
	RecommendForCategory(ctx context.Context, info taxonomy.CategoryInfo, contenders []core.Fragrance, profile *insights.Insights) (*core.Recommendation, error)
}

// Deps bundles everything the server serves. Recommender may be nil when no
// Gemini key is configured.
type Deps struct {
	Store       *store.Store
	Search      Searcher
	Battles     *battle.Service
	Analyzer    *insights.Analyzer
	Recommender Recommender
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(deps Deps, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)

		r.Route("/fragrances", func(r chi.Router) {
			r.Get("/", s.handleListFragrances)
			r.Post("/", s.handleAddFragrance)
			r.Post("/batch", s.handleFragrancesByIDs)
			r.Get("/category/{category}", s.handleFragrancesByCategory)
			r.Get("/{id}", s.handleGetFragrance)
		})

		r.Route("/battles", func(r chi.Router) {
			r.Get("/", s.handleListBattles)
			r.Get("/{category}", s.handleGetBattle)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Post("/{id}/results", s.handleAddResult)
			r.Post("/{id}/complete", s.handleCompleteSession)
		})

		r.Get("/insights", s.handleInsights)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", s.handleListRecommendations)
			r.Post("/{category}", s.handleGenerateRecommendation)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
