// Package api wires the REST and websocket surface of the ANBD core.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IT21259166/anbd-core/internal/api/handlers"
	"github.com/IT21259166/anbd-core/internal/api/middleware"
	"github.com/IT21259166/anbd-core/internal/api/websocket"
	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/detector"
	"github.com/IT21259166/anbd-core/internal/ingest"
	"github.com/IT21259166/anbd-core/internal/rca"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *gin.Engine
	hub        *websocket.Hub
	httpServer *http.Server
}

// Deps are the assembled pipeline components the API exposes.
type Deps struct {
	Detector     *detector.Detector
	Orchestrator *rca.Orchestrator
	Monitor      *ingest.Monitor
	Events       store.EventStore
	Responses    store.ResponseStore
	Hub          *websocket.Hub
}

func NewServer(appCtx context.Context, cfg *config.Config, deps Deps, log logger.Logger) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		logger: log,
		router: gin.New(),
		hub:    deps.Hub,
	}
	s.setupMiddleware()
	s.setupRoutes(appCtx, deps)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORSMiddleware(s.config.CORS))
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.MetricsMiddleware())
}

func (s *Server) setupRoutes(appCtx context.Context, deps Deps) {
	healthHandler := handlers.NewHealthHandler(deps.Detector, deps.Monitor)
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Responses, s.logger)
	detectionHandler := handlers.NewDetectionHandler(deps.Detector, deps.Orchestrator, deps.Events, s.logger)
	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitor, appCtx, s.logger)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws", websocket.ServeWS(s.hub, s.config.WebSocket))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/events", eventsHandler.ListEvents)
		v1.GET("/events/:log_id", eventsHandler.GetEvent)
		v1.GET("/responses", eventsHandler.ListResponses)
		v1.GET("/responses/:log_id", eventsHandler.GetResponse)

		v1.POST("/detect", detectionHandler.Detect)
		v1.GET("/model/status", detectionHandler.ModelStatus)
		v1.PUT("/model/threshold", detectionHandler.SetThreshold)

		v1.POST("/monitoring/start", monitoringHandler.Start)
		v1.POST("/monitoring/stop", monitoringHandler.Stop)
		v1.GET("/monitoring/status", monitoringHandler.Status)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ANBD core API server starting", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down ANBD core gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
