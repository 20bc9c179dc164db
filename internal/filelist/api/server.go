// Package api serves the snapshot, configuration writes and a change feed
// over HTTP, and provides a client for them.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/metrics"
	"github.com/dimasma0305/filelist/internal/filelist/params"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
	"github.com/dimasma0305/filelist/internal/filelist/serializer"
	"github.com/dimasma0305/filelist/internal/log"
)

// Response headers describing the snapshot payload
const (
	HeaderValidLength = "X-Valid-Length"
	HeaderSequence    = "X-Snapshot-Sequence"
	HeaderCodec       = "X-Snapshot-Codec"
	HeaderCapacity    = "X-Snapshot-Capacity"
)

// Backend is the service the HTTP surface reads from and writes to
type Backend interface {
	Snapshot() serializer.Snapshot
	Names() ([]string, error)
	Config() config.Configuration
	SetConfig(ctx context.Context, field, value string) (*refresh.Result, error)
	Refresh(source refresh.Source) (refresh.Result, error)
	Subscribe(depth int) (<-chan params.Event, func())
}

// Server is the HTTP surface
type Server struct {
	echo    *echo.Echo
	backend Backend
	addr    string
}

// NewServer creates a server for backend listening on addr
func NewServer(addr string, backend Backend) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, backend: backend, addr: addr}

	e.Use(middleware.Recover())
	e.Use(metrics.EchoMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	api.GET("/snapshot", s.getSnapshot)
	api.GET("/snapshot/names", s.getNames)
	api.GET("/config", s.getConfig)
	api.PUT("/config", s.putConfig)
	api.POST("/refresh", s.postRefresh)
	api.GET("/ws", s.changeFeed)

	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
