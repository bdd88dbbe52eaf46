package payload

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pingpongshow/raptorhab/internal/protocol"
	"github.com/pingpongshow/raptorhab/internal/radio"
)

// State is one state of the payload supervisor's state machine (spec.md
// §4.6).
type State int

const (
	StateInitializing State = iota
	StateTxActive
	StateTxPaused
	StateError
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateTxActive:
		return "tx_active"
	case StateTxPaused:
		return "tx_paused"
	case StateError:
		return "error"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// SupervisorConfig configures the payload supervisor (spec.md §4.6).
type SupervisorConfig struct {
	TXPeriod         time.Duration // default 3s
	TXPause          time.Duration // 0 means "always active"; no default is applied here (payloadcfg defaults it to 10s)
	MaxErrors        int           // default 10
	WatchdogTimeout  time.Duration // default 60s
	WatchdogEnabled  bool
	RebootOnFatal    bool
	PetEveryNPackets int // default 20
}

func (c SupervisorConfig) withDefaults() SupervisorConfig {
	if c.TXPeriod <= 0 {
		c.TXPeriod = 3 * time.Second
	}
	if c.MaxErrors <= 0 {
		c.MaxErrors = 10
	}
	if c.WatchdogTimeout <= 0 {
		c.WatchdogTimeout = 60 * time.Second
	}
	if c.PetEveryNPackets <= 0 {
		c.PetEveryNPackets = 20
	}
	return c
}

// Rebooter abstracts the host-level reboot side effect so tests never
// actually reboot anything (spec.md §4.6 Error state).
type Rebooter interface {
	Reboot() error
}

// Supervisor drives the payload's Initializing → TxActive ⇄ TxPaused state
// machine with a terminal Error and Shutdown (spec.md §4.6).
type Supervisor struct {
	cfg       SupervisorConfig
	log       *log.Logger
	radio     radio.Driver
	gps       GPS
	camera    Camera
	scheduler *Scheduler
	reboot    Rebooter

	state      State
	errorCount int
	lastError  error

	lastPet time.Time
}

// NewSupervisor constructs a supervisor. reboot may be nil, in which case
// RebootOnFatal is treated as false regardless of config.
func NewSupervisor(cfg SupervisorConfig, r radio.Driver, gps GPS, camera Camera, scheduler *Scheduler, reboot Rebooter, logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		cfg:       cfg.withDefaults(),
		log:       logger,
		radio:     r,
		gps:       gps,
		camera:    camera,
		scheduler: scheduler,
		reboot:    reboot,
		state:     StateInitializing,
	}
}

// State reports the supervisor's current state.
func (s *Supervisor) State() State {
	return s.state
}

// Init opens the radio, GPS, and camera collaborators, transitioning to
// TxActive on success or Error on any failure (spec.md §4.6
// Initializing).
func (s *Supervisor) Init() error {
	if err := s.radio.Init(); err != nil {
		return s.fail(err)
	}
	if s.gps != nil {
		if err := s.gps.Init(); err != nil {
			return s.fail(err)
		}
	}
	if s.camera != nil {
		if err := s.camera.Init(); err != nil {
			return s.fail(err)
		}
	}

	if err := s.radio.ReceiveContinuous(); err != nil {
		return s.fail(err)
	}

	s.lastPet = nowFunc()
	s.state = StateTxActive
	return nil
}

func (s *Supervisor) fail(err error) error {
	s.lastError = err
	s.state = StateError
	s.log.Error("supervisor entering error state", "err", err)
	return err
}

// Run drives the duty cycle until ctx is cancelled, at which point it
// transitions to Shutdown and releases the collaborators in order:
// GPS, camera, radio (spec.md §4.6). The software watchdog is only a
// timestamp and holds nothing to release.
func (s *Supervisor) Run(ctx context.Context, snapshot func() protocol.Telemetry) error {
	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		default:
		}

		switch s.state {
		case StateTxActive:
			s.runActivePeriod(ctx, snapshot)
		case StateTxPaused:
			s.runPausedPeriod(ctx)
		case StateError:
			return s.lastError
		case StateShutdown:
			return nil
		default:
			return nil
		}

		if s.watchdogExpired() {
			s.state = StateError
			s.lastError = errWatchdogTimeout
			s.log.Error("watchdog timeout")
			if s.cfg.RebootOnFatal && s.reboot != nil {
				_ = s.reboot.Reboot()
			}
			return s.lastError
		}
	}
}

func (s *Supervisor) runActivePeriod(ctx context.Context, snapshot func() protocol.Telemetry) {
	deadline := nowFunc().Add(s.cfg.TXPeriod)
	packets := 0

	for nowFunc().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := s.scheduler.NextPacket(snapshot())
		if err != nil {
			s.recordError(err)
			if s.state == StateError {
				return
			}
			continue
		}

		ok, err := s.radio.Transmit(frame)
		if err != nil || !ok {
			s.recordError(err)
			if s.state == StateError {
				return
			}
			continue
		}
		s.errorCount = 0

		packets++
		if packets%s.cfg.PetEveryNPackets == 0 {
			s.pet()
		}
	}

	if s.cfg.TXPause > 0 {
		s.state = StateTxPaused
	}
}

func (s *Supervisor) runPausedPeriod(ctx context.Context) {
	_ = s.radio.SetStandby()

	deadline := nowFunc().Add(s.cfg.TXPause)
	const slice = 100 * time.Millisecond

	for nowFunc().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(slice):
		}
		s.pet()
	}

	s.state = StateTxActive
}

func (s *Supervisor) recordError(err error) {
	s.errorCount++
	if err != nil {
		s.lastError = err
	}
	if s.errorCount >= s.cfg.MaxErrors {
		s.state = StateError
		s.log.Error("max consecutive errors reached", "count", s.errorCount)
	}
}

func (s *Supervisor) pet() {
	s.lastPet = nowFunc()
}

func (s *Supervisor) watchdogExpired() bool {
	if !s.cfg.WatchdogEnabled {
		return false
	}
	return nowFunc().Sub(s.lastPet) > s.cfg.WatchdogTimeout
}

func (s *Supervisor) shutdown() error {
	s.state = StateShutdown
	if s.gps != nil {
		_ = s.gps.Close()
	}
	if s.camera != nil {
		_ = s.camera.Close()
	}
	return s.radio.Close()
}

var nowFunc = time.Now

var errWatchdogTimeout = errTimeout("payload: watchdog timeout")

type errTimeout string

func (e errTimeout) Error() string { return string(e) }
