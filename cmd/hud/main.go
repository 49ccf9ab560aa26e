package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roadhud-go/internal/api"
	"roadhud-go/internal/config"
	"roadhud-go/internal/container"
	"roadhud-go/internal/hud"
	"roadhud-go/internal/logging"
	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
	"roadhud-go/internal/services/messaging"
	"roadhud-go/internal/services/publisher/mjpeg"
	"roadhud-go/internal/services/recorder"
	"roadhud-go/internal/services/statefeed"
	"roadhud-go/internal/services/telemetry"
	"roadhud-go/internal/services/videostream"
)

// alertFanout delivers an alert to the telemetry publisher and kicks off an
// alert clip at the same moment, so the clip pre-roll matches what the
// driver saw.
type alertFanout struct {
	*telemetry.Service
	rec *recorder.Service
}

func (f *alertFanout) PublishAlert(a models.Alert, frame *models.ComposedFrame) error {
	if f.rec != nil {
		f.rec.TriggerClip(a.Text)
	}
	return f.Service.PublishAlert(a, frame)
}

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogdyEnabled {
		if w, url, lerr := logging.StartLogdy(cfg); lerr == nil {
			log.Logger = log.Output(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, w))
			log.Info().Str("url", url).Msg("Logdy web log viewer started")
		} else {
			log.Warn().Err(lerr).Msg("Failed to start logdy, continuing without it")
		}
	}

	log.Info().
		Str("hud_id", cfg.HUDID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("video_source", cfg.VideoSource).
		Bool("recording_enabled", cfg.RecordingEnabled).
		Msg("Starting RoadHUD")

	// NATS carries the state feed in and telemetry out
	bus, err := messaging.NewService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}

	telem, err := telemetry.NewService(cfg, bus)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create telemetry service")
	}

	rec := recorder.NewService(cfg)

	preview, err := mjpeg.NewPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MJPEG publisher")
	}

	view := container.NewOnroad(container.Options{
		HUDID: cfg.HUDID,
		Lifecycle: hud.LifecycleOptions{
			Intrinsics: projection.Intrinsics{
				FocalX:  cfg.CameraFocalX,
				FocalY:  cfg.CameraFocalY,
				CenterX: cfg.CameraCenterX,
				CenterY: cfg.CameraCenterY,
			},
			Zoom:             cfg.HUDZoom,
			FPSTimeConstant:  cfg.FPSTimeConstant.Seconds(),
			NominalFrameTime: cfg.NominalFrameTime(),
			FPSThreshold:     cfg.FPSThreshold,
			SkipStride:       cfg.SkipStride,
		},
		Flags: hud.OverlayFlags{
			ShowLaneLines:     cfg.ShowLaneLines,
			ShowRoadEdges:     cfg.ShowRoadEdges,
			ShowLeads:         cfg.ShowLeads,
			ShowHUD:           cfg.ShowHUD,
			ShowDM:            cfg.ShowDM,
			ShowScanner:       cfg.ShowScanner,
			ShowDebugStats:    cfg.ShowDebugStats,
			RenderEmptyAlerts: cfg.RenderEmptyAlerts,
		},
		MinLaneProb: cfg.MinLaneProb,
		StateBuffer: cfg.StateBufferSize,
		FrameBuffer: cfg.FrameBufferSize,
		Sink:        container.MultiSink{preview, rec},
		Telemetry:   &alertFanout{Service: telem, rec: rec},
	})

	feed := statefeed.NewService(cfg, bus, view)
	stream := videostream.NewService(cfg, view)

	if err := view.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start onroad view")
	}
	if err := feed.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start state feed")
	}
	if err := stream.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start video stream")
	}

	server, err := api.NewServer(cfg, api.Deps{
		View:      view,
		Preview:   preview,
		Feed:      feed,
		Stream:    stream,
		Recorder:  rec,
		Bus:       bus,
		Telemetry: telem,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	// Wait for interrupt signal or a fatal paint error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-view.Done():
		log.Error().Err(view.Err()).Msg("Onroad view exited, shutting down")
	}

	// Graceful shutdown: stop the producers first, then the paint goroutine,
	// then everything that still holds buffered output
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("API server forced to shutdown")
	}

	stream.Stop()
	feed.Stop()
	if err := view.Stop(); err != nil {
		log.Warn().Err(err).Msg("Onroad view stop")
	}
	if err := rec.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Recorder shutdown incomplete")
	}
	preview.Shutdown()
	if err := telem.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Telemetry shutdown")
	}
	if err := bus.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("NATS shutdown")
	}

	log.Info().Msg("Shutdown complete")
}
