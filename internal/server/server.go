// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analysis"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/source"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

const (
	healthPath  = "/healthz"
	analyzePath = "/v1/analyze"
	fillersPath = "/v1/fillers"

	defaultShutdownTimeout = 10 * time.Second
)

// Server serves analysis requests backed by one shared engine
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	analysis   *analysis.Engine
	sources    *source.Factory
	config     configs.ServerConfig
	logger     logging.Logger
}

// New creates a server with the standard middleware stack and routes
func New(cfg configs.ServerConfig, engine *analysis.Engine, sources *source.Factory, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{"component": "server"})

	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		analysis: engine,
		sources:  sources,
		config:   cfg,
		logger:   logger,
	}

	s.engine.Use(RequestID())
	s.engine.Use(Recovery(logger))
	s.engine.Use(RequestLogger(logger))
	if cfg.MaxBodyBytes > 0 {
		s.engine.Use(BodySizeLimit(cfg.MaxBodyBytes))
	}

	s.engine.GET(healthPath, s.handleHealth)
	s.engine.POST(analyzePath, s.handleAnalyze)
	s.engine.POST(fillersPath, s.handleFillers)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run binds the address and serves until ctx is cancelled, then shuts down
// gracefully within the configured timeout
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.logger.Info("HTTP server started", logging.Fields{
		"addr": listener.Addr().String(),
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
