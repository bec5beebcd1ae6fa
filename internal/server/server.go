// Package server exposes the migration as an authenticated admin endpoint.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// Runner is the part of the migrator the server drives.
type Runner interface {
	Count(ctx context.Context) (int, error)
	Execute(ctx context.Context, limit int) (*model.Report, error)
}

// Config holds server settings.
type Config struct {
	Addr       string
	AdminToken string
	Debug      bool
	Logger     *slog.Logger
}

// Server serves the admin trigger. At most one migration runs at a time
// per process; concurrent requests are rejected.
type Server struct {
	runner Runner
	cfg    Config
	logger *slog.Logger
	router *gin.Engine

	running sync.Mutex
}

// New builds a Server and its routes.
func New(runner Runner, cfg Config) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{runner: runner, cfg: cfg, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := router.Group("/admin", s.requireToken())
	{
		admin.GET("/escape-ngg", s.handleConvert)
		admin.GET("/escape-ngg/count", s.handleCount)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AdminToken == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin token not configured"})
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AdminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleCount(c *gin.Context) {
	n, err := s.runner.Count(c.Request.Context())
	if err != nil {
		s.logger.Error("count posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleConvert(c *gin.Context) {
	if c.Query("please") != "1" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass please=1 to start the migration"})
		return
	}

	limit := -1
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = n
	}

	if !s.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "a migration is already running"})
		return
	}
	defer s.running.Unlock()

	// The run is bounded by the migrator's time budget, not by the client
	// staying connected.
	report, err := s.runner.Execute(context.WithoutCancel(c.Request.Context()), limit)
	if err != nil && report == nil {
		s.logger.Error("run migration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(RenderHTML(report)))
		return
	}
	c.JSON(http.StatusOK, report)
}

// RenderHTML renders report messages as colored spans, one per line.
func RenderHTML(r *model.Report) string {
	var b strings.Builder
	write := func(color string, msgs []string) {
		for _, msg := range msgs {
			fmt.Fprintf(&b, "<span style=\"color:%s\">%s</span><br />\n", color, html.EscapeString(msg))
		}
	}
	write("green", r.Infos)
	write("orange", r.Warnings)
	write("red", r.Errors)
	return b.String()
}
