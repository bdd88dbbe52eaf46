// Command hab-ground runs the ground-station receiver: packet
// dispatcher, image reconstruction engine, and telemetry consumer
// (spec.md §4.4, §4.5, §4.7).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/ground"
	"github.com/pingpongshow/raptorhab/internal/groundcfg"
	"github.com/pingpongshow/raptorhab/internal/protocol"
	"github.com/pingpongshow/raptorhab/internal/radio"
	"github.com/pingpongshow/raptorhab/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	simulate := pflag.Bool("simulate", false, "Use a simulated pty-backed radio instead of hardware.")
	callsign := pflag.String("callsign", "", "Station callsign, overrides HAB_CALLSIGN.")
	frequency := pflag.Float64("frequency", 0, "Radio frequency in MHz, overrides HAB_FREQUENCY_MHZ.")
	logLevel := pflag.String("log-level", "info", "Log level: debug, info, warn, error.")
	configFile := pflag.String("config-file", "", "Optional YAML config overlay.")
	device := pflag.String("device", "/dev/ttyUSB0", "Serial device for the radio, when not --simulate.")
	baud := pflag.Int("baud", 9600, "Serial baud rate, when not --simulate.")
	announcePort := pflag.Int("announce-port", 0, "mDNS announcement port; 0 disables announcement.")
	packetLogPath := pflag.String("packet-log", "", "Path to append raw packet log; empty disables logging.")
	pflag.Parse()

	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	cfg, err := groundcfg.Load(*configFile)
	if err != nil {
		logger.Error("loading config", "err", err)
		return 1
	}
	if *callsign != "" {
		cfg.Callsign = *callsign
	}
	if *frequency != 0 {
		cfg.FrequencyMHz = *frequency
	}

	handle := session.New(time.Now())
	logger = logger.With("session", handle)

	var driver radio.Driver
	if *simulate {
		driver = radio.NewSimulated()
	} else {
		driver = radio.NewSerial(*device, *baud)
	}
	if err := driver.Init(); err != nil {
		logger.Error("initializing radio", "err", err)
		return 1
	}
	defer driver.Close()

	if err := driver.ReceiveContinuous(); err != nil {
		logger.Error("entering continuous receive", "err", err)
		return 1
	}

	var packetLog *ground.PacketLog
	if *packetLogPath != "" {
		f, err := os.OpenFile(*packetLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("opening packet log", "err", err)
			return 1
		}
		defer f.Close()
		packetLog = ground.NewPacketLog(f)
	}

	station := ground.GroundStation{Lat: cfg.GroundLatDeg, Lon: cfg.GroundLonDeg}
	telemetrySink := &loggingTelemetrySink{log: logger.With("component", "telemetry"), station: station}

	engine := ground.NewEngine(ground.EngineConfig{
		Codec:             fountain.LT,
		MaxPending:        cfg.MaxPendingImages,
		InactivityTimeout: time.Duration(cfg.ImageTimeoutSec) * time.Second,
	}, func(imageID uint16, data []byte, meta protocol.ImageMeta) {
		logger.Info("image complete", "image_id", imageID, "bytes", len(data))
	}, logger.With("component", "engine"))

	dispatcher := ground.NewDispatcher(engine, telemetrySink, nil, logger.With("component", "dispatcher"))
	dispatcher.Log = packetLog

	supervisor := ground.NewSupervisor(ground.SupervisorConfig{}, dispatcher, logger.With("component", "supervisor"))
	go supervisor.Run()
	defer supervisor.Shutdown()

	if *announcePort > 0 {
		announcer, err := ground.Announce(handle, *announcePort)
		if err != nil {
			logger.Warn("mDNS announcement failed", "err", err)
		} else {
			defer announcer.Shutdown()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("ground station starting", "callsign", cfg.Callsign, "frequency_mhz", cfg.FrequencyMHz)

	receiveLoop(ctx, driver, dispatcher)

	return 0
}

func receiveLoop(ctx context.Context, driver radio.Driver, dispatcher *ground.Dispatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, rssi, err := driver.CheckForPacket()
		if err != nil {
			time.Sleep(radio.PollInterval)
			continue
		}
		if frame == nil {
			time.Sleep(radio.PollInterval)
			continue
		}

		dispatcher.Handle(frame, rssi, time.Now())
	}
}

// loggingTelemetrySink is the default telemetry sink when no storage
// collaborator is wired in: it logs each packet and the enriched
// distance/bearing, per SPEC_FULL.md §4.7 and §12.
type loggingTelemetrySink struct {
	log     *log.Logger
	station ground.GroundStation
}

func (s *loggingTelemetrySink) ProcessPacket(t protocol.Telemetry, rssi int16, seq uint16) {
	if !t.HasFix() {
		s.log.Debug("telemetry (no fix)", "seq", seq, "rssi", rssi)
		return
	}

	fix := s.station.Enrich(t.Lat, t.Lon)
	s.log.Info("telemetry",
		"seq", seq,
		"rssi", rssi,
		"lat", t.Lat,
		"lon", t.Lon,
		"alt_m", t.AltMeters,
		"distance_m", fix.DistanceMeters,
		"bearing_deg", fix.BearingDeg,
	)
}
