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

	"insightcast/internal/config"
	"insightcast/internal/core"
	"insightcast/internal/indexing"
	"insightcast/internal/logger"
)

const defaultRequestTimeout = 180 * time.Second

// Retriever serves the fast retrieval path.
type Retriever interface {
	Fast(ctx context.Context, selection string) []core.Section
}

// InsightGenerator produces the three insight categories for a selection.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, selection string) core.InsightSet
}

// PodcastGenerator produces one conversation per persona.
type PodcastGenerator interface {
	GeneratePersonaPodcasts(ctx context.Context, selection string) core.PodcastSet
}

// Synthesizer renders a conversation to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, conv core.Conversation) (string, error)
}

// DocumentIndexer writes parsed sections to the vector store.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, source string, sections []indexing.ParsedSection) (int, error)
}

// DocumentStore is the part of the vector store the server manages directly.
type DocumentStore interface {
	DeleteDocument(ctx context.Context, documentName string) error
	Count(ctx context.Context) (int64, error)
}

// Deps are the services behind the HTTP API. Synthesizer and Indexer are
// optional; their endpoints answer 503 when unset.
type Deps struct {
	Retriever   Retriever
	Insights    InsightGenerator
	Podcasts    PodcastGenerator
	Synthesizer Synthesizer
	Indexer     DocumentIndexer
	Store       DocumentStore
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
		log:    logger.Get().With("component", "server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	s.router.Use(middleware.Timeout(timeout))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}

	s.router.Use(s.timeRequests)
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Post("/get_retrieved_sections", s.handleRetrievedSections)
	s.router.Post("/get_generated_insights", s.handleGeneratedInsights)
	s.router.Post("/get_persona_podcast", s.handlePersonaPodcast)
	s.router.Post("/generate_podcast", s.handleGeneratePodcast)

	s.router.Post("/index_sections", s.handleIndexSections)
	s.router.Post("/delete_document", s.handleDeleteDocument)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

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
