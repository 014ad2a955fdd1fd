// Package server exposes the access point inventory over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/opteama/wifi-aps/internal/inventory"
	"github.com/opteama/wifi-aps/observability"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Inventory is the set of access point operations served over HTTP.
// *inventory.Service implements it.
type Inventory interface {
	ListAll(ctx context.Context) ([]inventory.AP, error)
	ListSite(ctx context.Context, site string) ([]inventory.AP, error)
	Get(ctx context.Context, site, serial string) (*inventory.AP, error)
	Create(ctx context.Context, site string, in inventory.APInput) error
	CreateMany(ctx context.Context, aps []inventory.APInput) error
	Update(ctx context.Context, site string, in inventory.APInput) error
	Remove(ctx context.Context, site, serial string) error
}

// Compile-time check to ensure Service implements Inventory interface.
var _ Inventory = (*inventory.Service)(nil)

// Server is the HTTP surface of the inventory.
type Server struct {
	engine    *gin.Engine
	inventory Inventory
	logger    observability.Logger
}

// New wires the routes. Every request under /aps is checked by validator
// before reaching its handler.
func New(inv Inventory, validator *Validator, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(logger))

	s := &Server{engine: engine, inventory: inv, logger: logger}

	engine.GET("/healthz", s.health)

	aps := engine.Group("/aps", validator.Middleware())
	aps.GET("", s.getAll)
	aps.POST("", s.createMultiple)
	aps.GET("/:site", s.getBySite)
	aps.POST("/:site", s.create)
	aps.PUT("/:site", s.update)
	aps.GET("/:site/:serial", s.getBySerial)
	aps.DELETE("/:site/:serial", s.remove)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", observability.Field{Key: "addr", Value: addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
