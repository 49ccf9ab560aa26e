// Package telemetry publishes draw statistics and alert events to NATS.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roadhud-go/internal/config"
	"roadhud-go/internal/helpers"
	"roadhud-go/internal/models"
)

// SnapshotEncoder turns a composed frame into a base64 JPEG for embedding
// in alert events
type SnapshotEncoder func(frame *models.ComposedFrame, maxWidth, maxHeight, quality int) (string, error)

// Service publishes HUD telemetry on the bus. Draw stats are rate limited
// by TelemetryInterval; alert events by a per-alert cooldown.
type Service struct {
	cfg       *config.Config
	publisher models.MessagePublisher
	encoder   SnapshotEncoder

	drawMu   sync.Mutex
	lastDraw time.Time

	cooldownMu sync.RWMutex
	lastSent   map[string]time.Time

	published int64
	throttled int64
}

// NewService creates a new telemetry service
func NewService(cfg *config.Config, publisher models.MessagePublisher) (*Service, error) {
	if publisher == nil {
		return nil, fmt.Errorf("message publisher is required")
	}

	s := &Service{
		cfg:       cfg,
		publisher: publisher,
		encoder:   helpers.SnapshotB64,
		lastSent:  make(map[string]time.Time),
	}

	log.Info().
		Bool("enabled", cfg.TelemetryEnabled).
		Dur("draw_interval", cfg.TelemetryInterval).
		Dur("alerts_cooldown", cfg.AlertsCooldown).
		Str("telemetry_subject", cfg.TelemetrySubject()).
		Str("alerts_subject", cfg.AlertsSubject()).
		Msg("Telemetry service initialized")

	return s, nil
}

// Shutdown stops the service gracefully
func (s *Service) Shutdown(ctx context.Context) error {
	log.Info().
		Int64("published", atomic.LoadInt64(&s.published)).
		Int64("throttled", atomic.LoadInt64(&s.throttled)).
		Msg("Telemetry service shutdown")
	return nil
}

// PublishDraw sends per-frame draw statistics, subject to the configured
// minimum interval. A zero interval publishes every frame.
func (s *Service) PublishDraw(t models.DrawTelemetry) error {
	if !s.cfg.TelemetryEnabled {
		return nil
	}

	if s.cfg.TelemetryInterval > 0 {
		s.drawMu.Lock()
		if time.Since(s.lastDraw) < s.cfg.TelemetryInterval {
			s.drawMu.Unlock()
			atomic.AddInt64(&s.throttled, 1)
			return nil
		}
		s.lastDraw = time.Now()
		s.drawMu.Unlock()
	}

	if t.HUDID == "" {
		t.HUDID = s.cfg.HUDID
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	if err := s.publisher.Publish(s.cfg.TelemetrySubject(), t); err != nil {
		log.Error().
			Err(err).
			Int64("frame_id", t.FrameID).
			Msg("Failed to publish draw telemetry")
		return err
	}
	atomic.AddInt64(&s.published, 1)
	return nil
}

// PublishAlert sends an alert event with an optional frame snapshot.
// Repeats of the same alert within the cooldown window are dropped.
func (s *Service) PublishAlert(alert models.Alert, frame *models.ComposedFrame) error {
	if !s.cfg.TelemetryEnabled || alert.IsZero() {
		return nil
	}

	key := models.AlertCooldownKey{
		HUDID:    s.cfg.HUDID,
		Severity: alert.Severity,
		Text:     alert.Text,
	}
	if !s.checkCooldown(key) {
		atomic.AddInt64(&s.throttled, 1)
		log.Debug().
			Str("text", alert.Text).
			Str("severity", alert.Severity.String()).
			Msg("Alert event blocked by cooldown")
		return nil
	}

	event := models.AlertEvent{
		EventID:   uuid.New().String(),
		HUDID:     s.cfg.HUDID,
		Severity:  alert.Severity,
		Text:      alert.Text,
		Text2:     alert.Text2,
		Size:      alert.Size.String(),
		Timestamp: time.Now(),
	}

	if frame != nil && s.encoder != nil {
		event.FrameID = frame.FrameID
		maxW, maxH := 0, 0
		if s.cfg.ImageCompressionEnabled {
			maxW, maxH = s.cfg.MaxImageWidth, s.cfg.MaxImageHeight
		}
		snapshot, err := s.encoder(frame, maxW, maxH, s.cfg.ImageQuality)
		if err != nil {
			// The event still goes out without the image
			log.Warn().
				Err(err).
				Int64("frame_id", frame.FrameID).
				Msg("Failed to encode alert snapshot")
		} else {
			event.Snapshot = snapshot
		}
	}

	if err := s.publisher.Publish(s.cfg.AlertsSubject(), event); err != nil {
		log.Error().
			Err(err).
			Str("text", alert.Text).
			Msg("Failed to publish alert event")
		return err
	}

	s.updateCooldown(key)
	atomic.AddInt64(&s.published, 1)
	log.Info().
		Str("event_id", event.EventID).
		Str("text", alert.Text).
		Str("severity", alert.Severity.String()).
		Bool("has_snapshot", event.Snapshot != "").
		Msg("🚨 Alert event published")
	return nil
}

// Stats reports publish counters for the ops API
func (s *Service) Stats() (published, throttled int64) {
	return atomic.LoadInt64(&s.published), atomic.LoadInt64(&s.throttled)
}

func (s *Service) checkCooldown(key models.AlertCooldownKey) bool {
	s.cooldownMu.RLock()
	defer s.cooldownMu.RUnlock()

	last, exists := s.lastSent[key.String()]
	if !exists {
		return true
	}
	return time.Since(last) >= s.cfg.AlertsCooldown
}

func (s *Service) updateCooldown(key models.AlertCooldownKey) {
	s.cooldownMu.Lock()
	defer s.cooldownMu.Unlock()
	s.lastSent[key.String()] = time.Now()
}
