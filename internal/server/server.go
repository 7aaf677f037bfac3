// Package server exposes the tracker over HTTP. It is a thin presentation
// layer: parse, dispatch, map errors to statuses.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"theme-tracker/internal/ai"
	"theme-tracker/internal/corpus"
	"theme-tracker/internal/models"
	"theme-tracker/internal/monitoring"
	"theme-tracker/internal/prompt"
	"theme-tracker/internal/tracker"
	"theme-tracker/internal/youtube"
)

// Service is the slice of the tracker the HTTP layer uses.
type Service interface {
	MineWindow(ctx context.Context, window models.Window) (*corpus.Corpus, error)
	MineAll(ctx context.Context) *tracker.MineReport
	Corpus(source models.SourceSelector) (*corpus.Corpus, error)
	MinedWindows() []models.Window
	GenerateThemes(ctx context.Context, source models.SourceSelector, cohort models.AgeCohort) ([]*models.ThemeSuggestion, error)
	EmailDigest(themes []*models.ThemeSuggestion, cohort models.AgeCohort, source models.SourceSelector) error
	DigestConfigured() bool
}

type Server struct {
	engine  *gin.Engine
	service Service
	monitor *monitoring.Monitor
	port    int
}

func New(service Service, monitor *monitoring.Monitor, port int) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{engine: engine, service: service, monitor: monitor, port: port}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.POST("/mine", s.handleMineAll)
		api.POST("/mine/:window", s.handleMineWindow)
		api.GET("/corpus/:source", s.handleGetCorpus)
		api.POST("/themes", s.handleGenerateThemes)
	}

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/status", s.handleStatus)
}

// Run blocks until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on port %d", s.port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleMineWindow(c *gin.Context) {
	window, err := models.ParseWindow(c.Param("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mined, err := s.service.MineWindow(c.Request.Context(), window)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, mined)
}

func (s *Server) handleMineAll(c *gin.Context) {
	report := s.service.MineAll(c.Request.Context())

	status := http.StatusOK
	if len(report.Succeeded) == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"succeeded": report.Succeeded,
		"counts":    report.Counts,
		"failed":    report.FailedMessages(),
	})
}

func (s *Server) handleGetCorpus(c *gin.Context) {
	source, err := models.ParseSource(c.Param("source"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.service.Corpus(source)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type themesRequest struct {
	Source string `json:"source" binding:"required"`
	Cohort string `json:"cohort" binding:"required"`
	Email  bool   `json:"email"`
}

func (s *Server) handleGenerateThemes(c *gin.Context) {
	var req themesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := models.ParseSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cohort, err := models.ParseCohort(req.Cohort)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	themes, err := s.service.GenerateThemes(c.Request.Context(), source, cohort)
	if err != nil {
		s.renderError(c, err)
		return
	}

	emailed := false
	if req.Email && s.service.DigestConfigured() {
		if err := s.service.EmailDigest(themes, cohort, source); err != nil {
			log.Printf("Failed to send theme digest: %v", err)
		} else {
			emailed = true
		}
	}

	c.JSON(http.StatusOK, gin.H{"themes": themes, "emailed": emailed})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.monitor.IsHealthy() {
		c.String(http.StatusOK, "OK - %s", s.monitor.GetStatusSummary())
		return
	}
	c.String(http.StatusServiceUnavailable, "Service unhealthy - %s", s.monitor.GetStatusSummary())
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        s.monitor.GetStatusSummary(),
		"mined_windows": s.service.MinedWindows(),
	})
}

// renderError maps domain failures onto HTTP statuses. Each failure keeps a
// distinct, human-readable message; nothing is swallowed.
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrNoCorpus):
		status = http.StatusNotFound
	case errors.Is(err, prompt.ErrEmptyCorpus):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, tracker.ErrGenerationInProgress):
		status = http.StatusConflict
	case errors.Is(err, youtube.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, youtube.ErrAuthentication):
		status = http.StatusBadGateway
	case errors.Is(err, youtube.ErrMiningFailed):
		status = http.StatusBadGateway
	case errors.Is(err, ai.ErrGenerationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, ai.ErrNoThemesGenerated):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
