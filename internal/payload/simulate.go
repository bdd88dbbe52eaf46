package payload

import "time"

// SimulatedGPS produces a fixed, slowly-drifting fix so the rest of the
// stack can be exercised without real hardware (spec.md §6
// "simulate_gps").
type SimulatedGPS struct {
	started time.Time
}

// NewSimulatedGPS constructs a simulated GPS collaborator.
func NewSimulatedGPS() *SimulatedGPS {
	return &SimulatedGPS{}
}

func (g *SimulatedGPS) Init() error {
	g.started = time.Now()
	return nil
}

func (g *SimulatedGPS) Close() error {
	return nil
}

// Snapshot returns a fix that climbs at a constant rate from a fixed
// ground-level starting point, enough to exercise telemetry encoding and
// distance/bearing enrichment on the ground side without hardware.
func (g *SimulatedGPS) Snapshot() GPSFix {
	elapsed := time.Since(g.started)
	return GPSFix{
		LatDeg:     47.1234567,
		LonDeg:     -122.7654321,
		AltMeters:  100 + elapsed.Seconds()*5,
		SpeedMps:   5,
		HeadingDeg: 90,
		Satellites: 9,
		Fix3D:      true,
		UTCUnix:    time.Now().Unix(),
		Valid:      true,
		UpdatedAt:  time.Now(),
	}
}

// SimulatedCamera produces a small synthetic "image" (not real WebP data)
// on each Capture call, for exercising the scheduler and fountain codec
// end to end without a real camera module (spec.md §6 "simulate_camera").
type SimulatedCamera struct {
	nextID      uint16
	approxBytes int
}

// NewSimulatedCamera constructs a simulated camera. captureIntervalSec is
// not used: every capture is 20000 bytes, and the caller drives capture
// cadence.
func NewSimulatedCamera(captureIntervalSec int) *SimulatedCamera {
	return &SimulatedCamera{approxBytes: 20000}
}

func (c *SimulatedCamera) Init() error {
	return nil
}

func (c *SimulatedCamera) Close() error {
	return nil
}

func (c *SimulatedCamera) Capture(latDeg, lonDeg, altMeters float64) (ImageCapture, error) {
	c.nextID++

	data := make([]byte, c.approxBytes)
	seed := byte(c.nextID)
	for i := range data {
		data[i] = seed ^ byte(i)
	}

	return ImageCapture{
		ImageID:   c.nextID,
		WebPData:  data,
		Width:     320,
		Height:    240,
		Timestamp: time.Now(),
	}, nil
}
