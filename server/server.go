// Package server exposes the ticket picker over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds HTTP settings.
type Config struct {
	Port       string
	BasePath   string
	CookieName string
	SessionTTL time.Duration
	Production bool
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	cfg    Config
	engine *gin.Engine
	logger *zap.Logger
}

// New wires middleware and routes under cfg.BasePath.
func New(cfg Config, handler *TicketHandler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "pricetag_sid"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	base := "/" + strings.Trim(cfg.BasePath, "/")
	if base == "/" {
		base = ""
	}
	SetupValidator()

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(logger), RequestLogger())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cookiePath := base
	if cookiePath == "" {
		cookiePath = "/"
	}
	group := engine.Group(base, Session(cfg.CookieName, cookiePath, cfg.SessionTTL))
	handler.RegisterRoutes(group)

	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("base_path", s.cfg.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
