// Package api is the HTTP ops surface of the HUD: health, live state,
// overlay controls, preview, clips, and stats.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadhud-go/internal/api/handlers"
	"roadhud-go/internal/config"
)

// Deps are the subsystems the API exposes. View is required; everything
// else degrades to absent sections when nil.
type Deps struct {
	View      handlers.StateSource
	Preview   handlers.PreviewStreamer
	Feed      handlers.FeedStats
	Stream    handlers.StreamStats
	Recorder  handlers.RecorderStats
	Bus       handlers.BusStats
	Telemetry handlers.TelemetryStats
}

type Server struct {
	cfg    *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler *handlers.HealthHandler
	hudHandler    *handlers.HUDHandler
	systemHandler *handlers.SystemHandler
	clipsHandler  *handlers.ClipsHandler
}

// NewServer builds the API server around the onroad view
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.View == nil {
		return nil, fmt.Errorf("onroad view is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	systemHandler := handlers.NewSystemHandler(cfg.HUDID)
	systemHandler.View = deps.View
	systemHandler.Preview = deps.Preview
	systemHandler.Feed = deps.Feed
	systemHandler.Stream = deps.Stream
	systemHandler.Recorder = deps.Recorder
	systemHandler.Bus = deps.Bus
	systemHandler.Telemetry = deps.Telemetry

	s := &Server{
		cfg:           cfg,
		router:        router,
		healthHandler: handlers.NewHealthHandler(cfg.HUDID, cfg.Version, deps.View, cfg.FrameStaleThreshold),
		hudHandler:    handlers.NewHUDHandler(deps.View, deps.Preview),
		systemHandler: systemHandler,
		clipsHandler:  handlers.NewClipsHandler(cfg),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s, nil
}

// Start serves until Shutdown; http.ErrServerClosed is a clean exit
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree for tests
func (s *Server) Router() http.Handler {
	return s.router
}
