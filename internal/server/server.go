package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"larder/internal/costupdate"
	"larder/internal/handlers"
	applog "larder/internal/log"
	"larder/internal/store"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr     string
	Database *gorm.DB
	// Journal records every recalculation run in the cost run journal.
	Journal bool
}

// Server wraps an http.Server serving the cost recalculation API.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"journal", cfg.Journal,
	)

	if cfg.Database == nil {
		return nil, errors.New("server requires a database")
	}

	st := store.NewGormStore(cfg.Database)
	handlers.Configure(costupdate.New(st, costupdate.WithJournal(cfg.Journal)), st)

	applog.Debug(context.Background(), "handler dependencies configured")

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           newRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
