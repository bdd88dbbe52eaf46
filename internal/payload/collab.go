// Package payload implements the airborne packet scheduler and
// supervisor (spec.md §4.3, §4.6): the duty-cycled TX loop that builds
// frames from telemetry and queued images and feeds them to a radio
// driver.
package payload

import "time"

// GPSFix is the snapshot the payload reads per telemetry emission
// (spec.md §6 "GPS contract").
type GPSFix struct {
	LatDeg, LonDeg float64
	AltMeters      float64
	SpeedMps       float64
	HeadingDeg     float64
	Satellites     uint8
	Fix3D          bool
	UTCUnix        int64

	Valid     bool
	UpdatedAt time.Time
}

// GPS is the GPS collaborator contract.
type GPS interface {
	Init() error
	Close() error
	Snapshot() GPSFix
}

// ImageCapture is one captured image's metadata and bytes (spec.md §6
// "Camera contract"). ImageID is assigned by the camera module; the
// scheduler treats it as opaque but relies on it being unique.
type ImageCapture struct {
	ImageID   uint16
	WebPData  []byte
	Width     uint16
	Height    uint16
	Timestamp time.Time
}

// Camera is the camera collaborator contract.
type Camera interface {
	Init() error
	Close() error
	Capture(latDeg, lonDeg, altMeters float64) (ImageCapture, error)
}
