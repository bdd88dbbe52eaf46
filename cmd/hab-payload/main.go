// Command hab-payload runs the airborne telemetry/imagery transmitter
// (spec.md §4.3, §4.6).
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
	"github.com/pingpongshow/raptorhab/internal/payload"
	"github.com/pingpongshow/raptorhab/internal/payloadcfg"
	"github.com/pingpongshow/raptorhab/internal/radio"
)

func main() {
	os.Exit(run())
}

func run() int {
	simulate := pflag.Bool("simulate", false, "Use a simulated pty-backed radio, GPS, and camera instead of hardware.")
	callsign := pflag.String("callsign", "", "Station callsign, overrides HAB_CALLSIGN.")
	frequency := pflag.Float64("frequency", 0, "Radio frequency in MHz, overrides HAB_FREQUENCY_MHZ.")
	logLevel := pflag.String("log-level", "info", "Log level: debug, info, warn, error.")
	configFile := pflag.String("config-file", "", "Optional YAML config overlay.")
	device := pflag.String("device", "/dev/ttyUSB0", "Serial device for the radio, when not --simulate.")
	baud := pflag.Int("baud", 9600, "Serial baud rate, when not --simulate.")
	pflag.Parse()

	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	cfg, err := payloadcfg.Load(*configFile)
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

	var driver radio.Driver
	if *simulate {
		driver = radio.NewSimulated()
	} else {
		driver = radio.NewSerial(*device, *baud)
	}

	scheduler := payload.NewScheduler(payload.SchedulerConfig{
		TelemetryIntervalPackets: cfg.TelemetryIntervalPackets,
		ImageMetaIntervalPackets: cfg.ImageMetaIntervalPackets,
		Codec:                    fountain.LT,
		SymbolSize:               cfg.FountainSymbolSize,
		FountainOverheadPercent:  cfg.FountainOverheadPercent,
		ImageQueueCapacity:       cfg.MaxStoredImages,
	}, logger.With("component", "scheduler"))

	assembler := payload.NewTelemetryAssembler()

	var gps payload.GPS
	var camera payload.Camera
	if cfg.SimulateGPS {
		gps = payload.NewSimulatedGPS()
	}
	if cfg.SimulateCamera {
		camera = payload.NewSimulatedCamera(cfg.CaptureIntervalSec)
	}

	supervisor := payload.NewSupervisor(payload.SupervisorConfig{
		TXPeriod:        time.Duration(cfg.TXPeriodSec) * time.Second,
		TXPause:         time.Duration(cfg.TXPauseSec) * time.Second,
		WatchdogEnabled: cfg.WatchdogEnabled,
		RebootOnFatal:   cfg.RebootOnFatalError,
	}, driver, gps, camera, scheduler, nil, logger.With("component", "supervisor"))

	if err := supervisor.Init(); err != nil {
		logger.Error("initializing supervisor", "err", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if gps != nil {
		go pollGPS(ctx, gps, assembler)
	}
	if camera != nil {
		go captureLoop(ctx, camera, scheduler, cfg.CaptureIntervalSec, logger)
	}

	logger.Info("payload starting", "callsign", cfg.Callsign, "frequency_mhz", cfg.FrequencyMHz)

	if err := supervisor.Run(ctx, assembler.Snapshot); err != nil {
		logger.Error("supervisor exited with error", "err", err)
		return 1
	}

	return 0
}

func pollGPS(ctx context.Context, gps payload.GPS, assembler *payload.TelemetryAssembler) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			assembler.UpdateGPS(gps.Snapshot())
		}
	}
}

func captureLoop(ctx context.Context, camera payload.Camera, scheduler *payload.Scheduler, intervalSec int, logger *log.Logger) {
	if intervalSec <= 0 {
		intervalSec = 120
	}
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			img, err := camera.Capture(0, 0, 0)
			if err != nil {
				logger.Warn("capture failed", "err", err)
				continue
			}
			scheduler.EnqueueImage(img.ImageID, img.WebPData)
		}
	}
}
