// Package api exposes breakdown computation over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-breakdown/internal/breakdown"
	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/internal/domain"
)

const shutdownTimeout = 10 * time.Second

// Defaults fill in request fields the caller left out.
type Defaults struct {
	Scale int64
	Rules domain.RuleTable
	// DefaultRule applies to requested features without a rule. Nil leaves
	// them unresolved, which fails validation.
	DefaultRule *domain.RuleSpec
}

// Server serves the breakdown API.
type Server struct {
	engine    *gin.Engine
	assembler *breakdown.Assembler
	logger    *slog.Logger
	defaults  Defaults
	cfg       configuration.HTTPConfig
}

// NewServer wires routes and middleware.
func NewServer(
	assembler *breakdown.Assembler,
	logger *slog.Logger,
	cfg configuration.HTTPConfig,
	defaults Defaults,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:    gin.New(),
		assembler: assembler,
		logger:    logger,
		defaults:  defaults,
		cfg:       cfg,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	if cfg.RequestsPerSecond > 0 {
		s.engine.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))))
	}

	s.engine.GET("/healthz", s.health)
	v1 := s.engine.Group("/v1")
	v1.POST("/breakdowns", s.createBreakdown)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestLogger logs every request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP Request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"ip", c.ClientIP(),
			"status_code", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RateLimit rejects requests with 429 once limiter runs out of tokens.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Type:  "RateLimited",
			})
			return
		}
		c.Next()
	}
}
