package payload

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// fakeClock lets tests advance nowFunc deterministically instead of
// sleeping real wall time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRadio counts transmits and standby transitions without touching
// any hardware.
type fakeRadio struct {
	mu           sync.Mutex
	transmits    int
	standbyCalls int
	failNext     bool
}

func (r *fakeRadio) Init() error               { return nil }
func (r *fakeRadio) Close() error              { return nil }
func (r *fakeRadio) ReceiveContinuous() error   { return nil }
func (r *fakeRadio) SetStandby() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.standbyCalls++
	return nil
}
func (r *fakeRadio) GetTemperature() (float64, error) { return 25.0, nil }
func (r *fakeRadio) CheckForPacket() ([]byte, int16, error) {
	return nil, 0, nil
}
func (r *fakeRadio) Transmit(frame []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return false, nil
	}
	r.transmits++
	return true, nil
}

func (r *fakeRadio) transmitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transmits
}

func (r *fakeRadio) standbyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.standbyCalls
}

func newTestScheduler() *Scheduler {
	return NewScheduler(SchedulerConfig{
		TelemetryIntervalPackets: 1,
		ImageMetaIntervalPackets: 1000,
		Codec:                    fountain.LT,
		SymbolSize:               64,
	}, nil)
}

// TestScenarioS7DutyCycle runs spec.md §8 scenario S7's configuration
// (tx_period_sec=3, tx_pause_sec=10) for 26s of simulated wall time and
// checks that frames were transmitted during the active periods and that
// the radio was put in standby at least once. It does not count the TX
// periods or check for transmissions during pauses.
func TestScenarioS7DutyCycle(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	origNowFunc := nowFunc
	nowFunc = clock.Now
	defer func() { nowFunc = origNowFunc }()

	radioDriver := &fakeRadio{}
	s := NewSupervisor(SupervisorConfig{
		TXPeriod:        3 * time.Second,
		TXPause:         10 * time.Second,
		WatchdogEnabled: false,
	}, radioDriver, nil, nil, newTestScheduler(), nil, nil)

	require.NoError(t, s.Init())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func() protocol.Telemetry { return protocol.Telemetry{} })
	}()

	// Drive the fake clock in small steps so runActivePeriod's and
	// runPausedPeriod's polling loops observe the advancing deadline.
	// One full duty cycle is 3s active + 10s paused = 13s; 26s is
	// exactly two full cycles.
	const step = 50 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < 26*time.Second {
		clock.Advance(step)
		elapsed += step
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	transmitsPerPeriod := radioDriver.transmitCount()
	assert.Greater(t, transmitsPerPeriod, 0, "expected transmissions during the active periods")
	assert.GreaterOrEqual(t, radioDriver.standbyCount(), 1, "expected at least one standby transition during pauses")
}

func TestSupervisorInitTransitionsToTxActive(t *testing.T) {
	radioDriver := &fakeRadio{}
	s := NewSupervisor(SupervisorConfig{}, radioDriver, nil, nil, newTestScheduler(), nil, nil)

	require.NoError(t, s.Init())
	assert.Equal(t, StateTxActive, s.State())
}

func TestSupervisorInitFailurePropagatesToErrorState(t *testing.T) {
	s := NewSupervisor(SupervisorConfig{}, failingRadio{}, nil, nil, newTestScheduler(), nil, nil)

	err := s.Init()
	require.Error(t, err)
	assert.Equal(t, StateError, s.State())
}

// failingRadio always fails Init, exercising the Initializing → Error
// transition (spec.md §4.6).
type failingRadio struct{}

func (failingRadio) Init() error                            { return assertErr }
func (failingRadio) Close() error                           { return nil }
func (failingRadio) ReceiveContinuous() error                { return nil }
func (failingRadio) SetStandby() error                       { return nil }
func (failingRadio) GetTemperature() (float64, error)        { return 0, nil }
func (failingRadio) CheckForPacket() ([]byte, int16, error)  { return nil, 0, nil }
func (failingRadio) Transmit(frame []byte) (bool, error)     { return false, nil }

var assertErr = errTimeout("payload: radio init failed")

// TestSupervisorMaxErrorsEntersErrorState feeds consecutive transmit
// failures and expects the supervisor to stop after max_errors (spec.md
// §4.6, §7).
func TestSupervisorMaxErrorsEntersErrorState(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	origNowFunc := nowFunc
	nowFunc = clock.Now
	defer func() { nowFunc = origNowFunc }()

	radioDriver := &alwaysFailRadio{}
	s := NewSupervisor(SupervisorConfig{
		TXPeriod:        time.Hour,
		MaxErrors:       3,
		WatchdogEnabled: false,
	}, radioDriver, nil, nil, newTestScheduler(), nil, nil)

	require.NoError(t, s.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func() protocol.Telemetry { return protocol.Telemetry{} })
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not reach error state in time")
	}

	assert.Equal(t, StateError, s.State())
	assert.GreaterOrEqual(t, radioDriver.attempts(), 3)
}

type alwaysFailRadio struct {
	mu    sync.Mutex
	count int
}

func (r *alwaysFailRadio) Init() error                     { return nil }
func (r *alwaysFailRadio) Close() error                    { return nil }
func (r *alwaysFailRadio) ReceiveContinuous() error        { return nil }
func (r *alwaysFailRadio) SetStandby() error               { return nil }
func (r *alwaysFailRadio) GetTemperature() (float64, error) { return 0, nil }
func (r *alwaysFailRadio) CheckForPacket() ([]byte, int16, error) {
	return nil, 0, nil
}
func (r *alwaysFailRadio) Transmit(frame []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return false, nil
}

func (r *alwaysFailRadio) attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
