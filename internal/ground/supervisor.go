package ground

import (
	"time"

	"github.com/charmbracelet/log"
)

// noSignalAfter is how long the supervisor waits without a single valid
// frame before surfacing a "no signal" status (spec.md §4.7).
const noSignalAfter = 30 * time.Second

// SupervisorConfig configures the ground supervisor's periodic tick.
type SupervisorConfig struct {
	SweepInterval time.Duration // default 5s
}

func (c SupervisorConfig) withDefaults() SupervisorConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = 5 * time.Second
	}
	return c
}

// Supervisor owns the dispatcher and image engine on the ground side, and
// runs the periodic tick that sweeps stale reconstructions and tracks
// signal presence (spec.md §4.7). It is deliberately simple compared to
// the payload supervisor's state machine (§4.6): no reboot on error, only
// logging.
type Supervisor struct {
	cfg        SupervisorConfig
	dispatcher *Dispatcher
	log        *log.Logger

	stop chan struct{}
	done chan struct{}

	// noSignal is true once more than noSignalAfter has elapsed since the
	// last valid frame. Read with NoSignal.
	noSignal bool
}

// NewSupervisor wires a supervisor around an already-constructed
// dispatcher (and its engine).
func NewSupervisor(cfg SupervisorConfig, dispatcher *Dispatcher, logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		cfg:        cfg.withDefaults(),
		dispatcher: dispatcher,
		log:        logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run starts the periodic sweep/status tick. It blocks until Shutdown is
// called, so callers typically invoke it with `go supervisor.Run()`.
func (s *Supervisor) Run() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

func (s *Supervisor) tick(now time.Time) {
	if s.dispatcher.Engine != nil {
		s.dispatcher.Engine.Sweep(now)
	}

	silentFor := now.Sub(s.dispatcher.Counters.LastSeenAt)
	wasNoSignal := s.noSignal
	s.noSignal = s.dispatcher.Counters.LastSeenAt.IsZero() || silentFor > noSignalAfter

	if s.noSignal && !wasNoSignal {
		s.log.Warn("no signal", "silent_for", silentFor)
	} else if !s.noSignal && wasNoSignal {
		s.log.Info("signal restored")
	}
}

// NoSignal reports whether the station currently believes it has lost the
// downlink (spec.md §4.7).
func (s *Supervisor) NoSignal() bool {
	return s.noSignal
}

// Shutdown stops the tick loop and waits for it to exit.
func (s *Supervisor) Shutdown() {
	close(s.stop)
	<-s.done
}
