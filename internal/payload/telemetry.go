package payload

import (
	"sync"

	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// TelemetryAssembler accumulates the latest reading from each payload
// sensor and assembles a snapshot on demand, grounded on
// original_source/airborne/telemetry.py's TelemetryCollector: GPS,
// system, and transmission-status fields are updated independently as
// they arrive and combined only when the scheduler asks for one.
type TelemetryAssembler struct {
	mu sync.Mutex

	gps GPSFix

	battMillivolts uint16
	cpuTempC       float64
	radioTempC     float64

	imageID       uint16
	imageProgress uint8
	lastRSSIdBm   int8
}

// NewTelemetryAssembler constructs an assembler with all readings zeroed.
func NewTelemetryAssembler() *TelemetryAssembler {
	return &TelemetryAssembler{}
}

// UpdateGPS records the latest GPS snapshot.
func (a *TelemetryAssembler) UpdateGPS(fix GPSFix) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gps = fix
}

// UpdateSystem records the latest battery and temperature readings.
func (a *TelemetryAssembler) UpdateSystem(battMillivolts uint16, cpuTempC, radioTempC float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.battMillivolts = battMillivolts
	a.cpuTempC = cpuTempC
	a.radioTempC = radioTempC
}

// UpdateImageStatus records the currently-transmitting image's id and
// progress, for inclusion in the next telemetry snapshot.
func (a *TelemetryAssembler) UpdateImageStatus(imageID uint16, progressPercent uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.imageID = imageID
	a.imageProgress = progressPercent
}

// UpdateRSSI records the last received frame's RSSI, for payloads that
// also receive ground→air traffic on a shared radio.
func (a *TelemetryAssembler) UpdateRSSI(rssi int8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastRSSIdBm = rssi
}

// Snapshot assembles the current telemetry packet contents. If the GPS
// has never reported a fix, lat/lon/alt/speed/heading read as zero,
// which protocol.Telemetry.HasFix correctly reports as "no fix yet".
func (a *TelemetryAssembler) Snapshot() protocol.Telemetry {
	a.mu.Lock()
	defer a.mu.Unlock()

	fixType := protocol.FixNone
	if a.gps.Valid {
		if a.gps.Fix3D {
			fixType = protocol.Fix3D
		} else {
			fixType = protocol.Fix2D
		}
	}

	return protocol.Telemetry{
		Lat:            a.gps.LatDeg,
		Lon:            a.gps.LonDeg,
		AltMeters:      a.gps.AltMeters,
		SpeedMps:       a.gps.SpeedMps,
		HeadingDeg:     a.gps.HeadingDeg,
		Satellites:     a.gps.Satellites,
		Fix:            fixType,
		GPSTimeUnix:    uint32(a.gps.UTCUnix),
		BattMillivolts: a.battMillivolts,
		CPUTempC:       a.cpuTempC,
		RadioTempC:     a.radioTempC,
		ImageID:        a.imageID,
		ImageProgress:  a.imageProgress,
		RSSIdBm:        a.lastRSSIdBm,
	}
}
