package statefeed

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"roadhud-go/internal/config"
	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string]func([]byte)
	failFor  string
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[string]func([]byte))}
}

func (f *fakeSubscriber) Subscribe(subject string, handler func([]byte)) (*nats.Subscription, error) {
	if subject == f.failFor {
		return nil, nats.ErrConnectionClosed
	}
	f.mu.Lock()
	f.handlers[subject] = handler
	f.mu.Unlock()
	return &nats.Subscription{}, nil
}

func (f *fakeSubscriber) deliver(subject string, data []byte) {
	f.mu.Lock()
	h := f.handlers[subject]
	f.mu.Unlock()
	if h != nil {
		h(data)
	}
}

type recordingSink struct {
	mu          sync.Mutex
	states      []*models.VehicleState
	calibs      []projection.Calibration
	transitions []bool
}

func (r *recordingSink) UpdateState(s *models.VehicleState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recordingSink) UpdateCalibration(c projection.Calibration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calibs = append(r.calibs, c)
}

func (r *recordingSink) OffroadTransition(offroad bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, offroad)
}

func (r *recordingSink) stateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *recordingSink) lastTransitions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.transitions))
	copy(out, r.transitions)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		HUDID:                    "hud-test",
		StateSubjectPrefix:       "vehicle.state",
		CalibrationSubjectPrefix: "vehicle.calibration",
		StateTimeout:             60 * time.Millisecond,
		StateCheckInterval:       10 * time.Millisecond,
	}
}

func validStateJSON(t *testing.T, seq uint64) []byte {
	t.Helper()
	data, err := json.Marshal(models.VehicleState{
		Speed:     27,
		SpeedUnit: models.SpeedUnitImperial,
		Status:    models.StatusEngaged,
		Seq:       seq,
	})
	require.NoError(t, err)
	return data
}

func TestStartSubscribesAndReportsOffroad(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.mu.Lock()
	_, hasState := subs.handlers["vehicle.state.hud-test"]
	_, hasCalib := subs.handlers["vehicle.calibration.hud-test"]
	subs.mu.Unlock()
	require.True(t, hasState)
	require.True(t, hasCalib)

	// Until the first snapshot arrives the view is offroad
	require.Equal(t, []bool{true}, sink.lastTransitions())
	require.True(t, svc.Stats().Offroad)
}

func TestStartFailsWhenSubscribeFails(t *testing.T) {
	subs := newFakeSubscriber()
	subs.failFor = "vehicle.calibration.hud-test"
	svc := NewService(testConfig(), subs, &recordingSink{})

	err := svc.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "vehicle.calibration.hud-test")
}

func TestStateDeliveryGoesOnroad(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.state.hud-test", validStateJSON(t, 1))

	require.Equal(t, []bool{true, false}, sink.lastTransitions())
	require.Equal(t, 1, sink.stateCount())
	require.EqualValues(t, 1, svc.Stats().Received)
	require.False(t, svc.Stats().Offroad)

	// A second snapshot while already onroad must not re-transition
	subs.deliver("vehicle.state.hud-test", validStateJSON(t, 2))
	require.Equal(t, []bool{true, false}, sink.lastTransitions())
	require.Equal(t, 2, sink.stateCount())
}

func TestMalformedStateRejected(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.state.hud-test", []byte("{not json"))

	require.Equal(t, 0, sink.stateCount())
	require.EqualValues(t, 1, svc.Stats().Rejected)
	// Garbage never counts as a live feed
	require.True(t, svc.Stats().Offroad)
}

func TestStateWithoutTimestampGetsOne(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.state.hud-test", validStateJSON(t, 1))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.states, 1)
	require.False(t, sink.states[0].Timestamp.IsZero())
}

func TestCalibrationDelivery(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.calibration.hud-test", []byte(`{"roll":0.01,"pitch":-0.02,"yaw":0.03}`))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.calibs, 1)
	require.Equal(t, projection.Calibration{Roll: 0.01, Pitch: -0.02, Yaw: 0.03}, sink.calibs[0])
}

func TestMalformedCalibrationRejected(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.calibration.hud-test", []byte("nope"))

	sink.mu.Lock()
	calibs := len(sink.calibs)
	sink.mu.Unlock()
	require.Zero(t, calibs)
	require.EqualValues(t, 1, svc.Stats().Rejected)
}

func TestWatchdogGoesOffroadWhenStale(t *testing.T) {
	subs := newFakeSubscriber()
	sink := &recordingSink{}
	svc := NewService(testConfig(), subs, sink)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	subs.deliver("vehicle.state.hud-test", validStateJSON(t, 1))
	require.False(t, svc.Stats().Offroad)

	// Let the feed go stale past StateTimeout
	require.Eventually(t, func() bool {
		return svc.Stats().Offroad
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []bool{true, false, true}, sink.lastTransitions())

	// A fresh snapshot brings it straight back
	subs.deliver("vehicle.state.hud-test", validStateJSON(t, 2))
	require.False(t, svc.Stats().Offroad)
	require.Equal(t, []bool{true, false, true, false}, sink.lastTransitions())
}

func TestStopIsIdempotentWithoutStart(t *testing.T) {
	svc := NewService(testConfig(), newFakeSubscriber(), &recordingSink{})
	require.NotPanics(t, func() { svc.Stop() })
}
