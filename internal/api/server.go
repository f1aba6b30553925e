package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/monitoring"
	"go.uber.org/zap"
)

// InventoryService runs the scrape pipeline for one request.
type InventoryService interface {
	Inventory(ctx context.Context) (*domain.InventoryResult, error)
	Source() string
}

// RunLog answers operational queries about past runs.
type RunLog interface {
	Status(ctx context.Context, source string) (*domain.RunStatusResponse, error)
	Health(ctx context.Context) map[string]string
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	port       string
	router     http.Handler
	httpServer *http.Server
	inventory  InventoryService
	runLog     RunLog
	metrics    *monitoring.Metrics
	gatherer   http.Handler
	logger     *zap.Logger
}

// NewServer wires the router. metricsHandler serves /metrics.
func NewServer(port string, inv InventoryService, rl RunLog, m *monitoring.Metrics, metricsHandler http.Handler, l *zap.Logger) *Server {
	s := &Server{
		port:      port,
		inventory: inv,
		runLog:    rl,
		metrics:   m,
		gatherer:  metricsHandler,
		logger:    l,
	}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.port),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// Upstream fetches may take up to FETCH_TIMEOUT.
		WriteTimeout: 90 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
