package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mgpai22/recut/internal/logging"
	"github.com/mgpai22/recut/internal/subtitle"
)

type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

type ServerConfig struct {
	Bind          string
	MaxBodyBytes  int64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	DefaultFormat subtitle.Format
	Logger        *logging.Logger
	StartTime     time.Time
	Version       string
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = subtitle.FormatSRT
	}
	if c.StartTime.IsZero() {
		c.StartTime = time.Now()
	}
	return c
}

func NewServer(cfg ServerConfig) *Server {
	cfg = cfg.withDefaults()
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Bind,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
