// Package statefeed consumes vehicle state snapshots from NATS and feeds
// them to the onroad view. It also owns the onroad/offroad decision: a feed
// that goes stale means the drive is over.
package statefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"roadhud-go/internal/config"
	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
)

// Subscriber is the NATS surface the feed needs
type Subscriber interface {
	Subscribe(subject string, handler func([]byte)) (*nats.Subscription, error)
}

// Sink receives decoded updates; satisfied by the onroad container
type Sink interface {
	UpdateState(s *models.VehicleState)
	UpdateCalibration(c projection.Calibration)
	OffroadTransition(offroad bool)
}

// CalibrationUpdate is the wire format of a live calibration message
type CalibrationUpdate struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Stats is a point-in-time view of the feed for the ops API
type Stats struct {
	Received    int64     `json:"received"`
	Rejected    int64     `json:"rejected"`
	LastStateAt time.Time `json:"last_state_at"`
	Offroad     bool      `json:"offroad"`
}

type Service struct {
	cfg  *config.Config
	subs Subscriber
	sink Sink

	stateSub *nats.Subscription
	calibSub *nats.Subscription

	received int64
	rejected int64

	mu          sync.Mutex
	lastStateAt time.Time
	offroad     bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(cfg *config.Config, subs Subscriber, sink Sink) *Service {
	return &Service{
		cfg:  cfg,
		subs: subs,
		sink: sink,
	}
}

// Start subscribes to the state and calibration subjects and begins the
// staleness watchdog. The view starts offroad until the first snapshot.
func (s *Service) Start() error {
	var err error

	s.stateSub, err = s.subs.Subscribe(s.cfg.StateSubject(), s.handleState)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.StateSubject(), err)
	}

	s.calibSub, err = s.subs.Subscribe(s.cfg.CalibrationSubject(), s.handleCalibration)
	if err != nil {
		_ = s.stateSub.Unsubscribe()
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.CalibrationSubject(), err)
	}

	s.mu.Lock()
	s.offroad = true
	s.mu.Unlock()
	s.sink.OffroadTransition(true)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.watchdog(ctx)

	log.Info().
		Str("state_subject", s.cfg.StateSubject()).
		Str("calibration_subject", s.cfg.CalibrationSubject()).
		Msg("State feed started")
	return nil
}

// Stop unsubscribes and stops the watchdog
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.stateSub != nil {
		_ = s.stateSub.Unsubscribe()
	}
	if s.calibSub != nil {
		_ = s.calibSub.Unsubscribe()
	}
	log.Info().Msg("State feed stopped")
}

// Stats returns feed counters for the ops API
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Received:    atomic.LoadInt64(&s.received),
		Rejected:    atomic.LoadInt64(&s.rejected),
		LastStateAt: s.lastStateAt,
		Offroad:     s.offroad,
	}
}

func (s *Service) handleState(data []byte) {
	var state models.VehicleState
	if err := json.Unmarshal(data, &state); err != nil {
		atomic.AddInt64(&s.rejected, 1)
		log.Warn().Err(err).Str("subject", s.cfg.StateSubject()).Msg("Dropping malformed state snapshot")
		return
	}
	if state.Timestamp.IsZero() {
		state.Timestamp = time.Now()
	}
	atomic.AddInt64(&s.received, 1)

	// A live feed means onroad; flip back immediately rather than waiting
	// for the next watchdog tick
	s.mu.Lock()
	s.lastStateAt = time.Now()
	wasOffroad := s.offroad
	s.offroad = false
	s.mu.Unlock()

	if wasOffroad {
		log.Info().Uint64("seq", state.Seq).Msg("State feed live, going onroad")
		s.sink.OffroadTransition(false)
	}
	s.sink.UpdateState(&state)
}

func (s *Service) handleCalibration(data []byte) {
	var upd CalibrationUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		atomic.AddInt64(&s.rejected, 1)
		log.Warn().Err(err).Str("subject", s.cfg.CalibrationSubject()).Msg("Dropping malformed calibration update")
		return
	}
	s.sink.UpdateCalibration(projection.Calibration{Roll: upd.Roll, Pitch: upd.Pitch, Yaw: upd.Yaw})
}

// watchdog flips the view offroad when the feed goes stale
func (s *Service) watchdog(ctx context.Context) {
	defer close(s.done)

	interval := s.cfg.StateCheckInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			stale := !s.lastStateAt.IsZero() && time.Since(s.lastStateAt) > s.cfg.StateTimeout
			transition := stale && !s.offroad
			if transition {
				s.offroad = true
			}
			s.mu.Unlock()

			if transition {
				log.Warn().Dur("timeout", s.cfg.StateTimeout).Msg("State feed stale, going offroad")
				s.sink.OffroadTransition(true)
			}
		}
	}
}
