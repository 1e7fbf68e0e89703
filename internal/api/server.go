// Package api serves the generated report and a small JSON view of the run
// archive. The server is read-only: report generation stays a batch concern.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/archive"
	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
	"github.com/aadamk/OpenPedCan-analysis/internal/middleware"
)

// Server represents the report HTTP server
type Server struct {
	logger *logrus.Logger
	config *domain.Config
	store  *archive.SQLiteStore
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new report server over the output directory and the
// run archive. The store may be nil when the archive is disabled.
func NewServer(logger *logrus.Logger, config *domain.Config, store *archive.SQLiteStore) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())

	server := &Server{
		logger: logger,
		config: config,
		store:  store,
		router: router,
	}
	server.setupRoutes()
	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.WithField("addr", addr).Info("Report server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	// Generated report artifacts
	s.router.Static("/report", s.config.Report.OutputDir)
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/report/"+s.config.Report.HTMLFile)
	})

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(s.config.Server.RateLimit))
	{
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
		v1.GET("/runs/:id/final", s.handleGetFinal)
		v1.GET("/accuracy", s.handleAccuracy)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"archive":   s.store != nil,
	})
}

// handleListRuns returns archived runs, most recent first.
func (s *Server) handleListRuns(c *gin.Context) {
	store, ok := s.requireArchive(c)
	if !ok {
		return
	}
	runs, err := store.ListRuns(c.Request.Context(), 50)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// handleGetRun returns one archived run by id.
func (s *Server) handleGetRun(c *gin.Context) {
	store, ok := s.requireArchive(c)
	if !ok {
		return
	}
	run, err := store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.WithError(err).Error("Failed to load run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleGetFinal returns the archived final table of one run.
func (s *Server) handleGetFinal(c *gin.Context) {
	store, ok := s.requireArchive(c)
	if !ok {
		return
	}
	rows, err := store.GetFinalRows(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.WithError(err).Error("Failed to load final rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load final rows"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// handleAccuracy returns the per-classifier accuracy of the latest run.
func (s *Server) handleAccuracy(c *gin.Context) {
	store, ok := s.requireArchive(c)
	if !ok {
		return
	}
	run, err := store.LatestRun(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load latest run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archived runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":     run.ID,
		"created_at": run.CreatedAt,
		"accuracies": run.Accuracies,
	})
}

// requireArchive aborts with 503 when the run archive is disabled.
func (s *Server) requireArchive(c *gin.Context) (*archive.SQLiteStore, bool) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run archive is disabled"})
		return nil, false
	}
	return s.store, true
}
