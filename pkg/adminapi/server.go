package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danejoe001/transfer/internal/logger"
	"github.com/danejoe001/transfer/pkg/adminapi/auth"
)

// Config configures the admin API server.
type Config struct {
	ListenAddr      string
	JWTSecret       string
	TokenDuration   time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:7701"
	}
	if c.TokenDuration == 0 {
		c.TokenDuration = time.Hour
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Server is the admin API's HTTP server: read-only introspection over
// the reactor core, gated by a bearer token. It is created in a stopped
// state; call Start to begin serving.
type Server struct {
	server       *http.Server
	config       Config
	registry     *Registry
	shutdownOnce sync.Once
}

// NewServer constructs a Server. mailbox may be nil to disable
// mailbox-depth reporting.
func NewServer(config Config, registry *Registry, mailbox MailboxStats) (*Server, error) {
	config.applyDefaults()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        config.JWTSecret,
		Issuer:        "danejoe-admin",
		TokenDuration: config.TokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("adminapi: %w", err)
	}

	handlers := NewHandlers(registry, mailbox)
	router := NewRouter(jwtService, handlers)

	httpServer := &http.Server{
		Addr:         config.ListenAddr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{server: httpServer, config: config, registry: registry}, nil
}

// Start serves the admin API until ctx is canceled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "addr", s.config.ListenAddr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("admin API shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin API shutdown: %w", err)
			logger.Error("admin API shutdown error", "error", err)
		} else {
			logger.Info("admin API stopped gracefully")
		}
	})
	return shutdownErr
}
