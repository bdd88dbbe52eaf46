package protocol

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Scenario S1 — clean telemetry round-trip. The expected leading words
// are lat 471234567 (0x1C167807), lon -1227654321 (0xB6D37B4F as two's
// complement) and alt 12345678 (0x00BC614E).
func TestTelemetryScenarioS1(t *testing.T) {
	tel := Telemetry{
		Lat:            47.1234567,
		Lon:            -122.7654321,
		AltMeters:      12345.678,
		Satellites:     9,
		Fix:            Fix3D,
		GPSTimeUnix:    1_700_000_000,
		BattMillivolts: 4100,
		CPUTempC:       23.45,
	}

	encoded := tel.Encode()
	require.Len(t, encoded, TelemetryPayloadSize)

	assert.Equal(t, uint32(0x1C167807), binary.BigEndian.Uint32(encoded[0:4]))
	assert.Equal(t, uint32(0xB6D37B4F), binary.BigEndian.Uint32(encoded[4:8]))
	assert.Equal(t, uint32(0x00BC614E), binary.BigEndian.Uint32(encoded[8:12]))

	decoded, err := DecodeTelemetry(encoded)
	require.NoError(t, err)

	assert.InDelta(t, tel.Lat, decoded.Lat, 1e-7)
	assert.InDelta(t, tel.Lon, decoded.Lon, 1e-7)
	assert.InDelta(t, tel.AltMeters, decoded.AltMeters, 0.001)
	assert.InDelta(t, tel.CPUTempC, decoded.CPUTempC, 0.01)
	assert.Equal(t, tel.Satellites, decoded.Satellites)
	assert.Equal(t, tel.Fix, decoded.Fix)
	assert.Equal(t, tel.GPSTimeUnix, decoded.GPSTimeUnix)
	assert.Equal(t, tel.BattMillivolts, decoded.BattMillivolts)
}

// Testable property 4: telemetry fidelity within one fixed-point LSB
// across the representable range, with saturation on out-of-range input.
func TestTelemetryFidelityAndSaturation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tel := Telemetry{
			Lat:            rapid.Float64Range(-90, 90).Draw(t, "lat"),
			Lon:            rapid.Float64Range(-180, 180).Draw(t, "lon"),
			AltMeters:      rapid.Float64Range(-1000, 50000).Draw(t, "alt"),
			SpeedMps:       rapid.Float64Range(0, 1000).Draw(t, "speed"),
			HeadingDeg:     rapid.Float64Range(0, 360).Draw(t, "heading"),
			Satellites:     uint8(rapid.IntRange(0, 255).Draw(t, "sats")),
			Fix:            FixType(rapid.IntRange(0, 2).Draw(t, "fix")),
			GPSTimeUnix:    uint32(rapid.Int64Range(0, 4294967295).Draw(t, "gpstime")),
			BattMillivolts: uint16(rapid.IntRange(0, 65535).Draw(t, "batt")),
			CPUTempC:       rapid.Float64Range(-100, 200).Draw(t, "cputemp"),
			RadioTempC:     rapid.Float64Range(-100, 200).Draw(t, "radiotemp"),
			ImageID:        uint16(rapid.IntRange(0, 65535).Draw(t, "imgid")),
			ImageProgress:  uint8(rapid.IntRange(0, 100).Draw(t, "imgprog")),
			RSSIdBm:        int8(rapid.IntRange(-128, 127).Draw(t, "rssi")),
		}

		decoded, err := DecodeTelemetry(tel.Encode())
		require.NoError(t, err)

		assert.InDelta(t, tel.Lat, decoded.Lat, 1e-7)
		assert.InDelta(t, tel.Lon, decoded.Lon, 1e-7)
		// Negative altitudes are out of range and saturate to 0.
		assert.InDelta(t, math.Max(tel.AltMeters, 0), decoded.AltMeters, 0.001)
		assert.InDelta(t, tel.CPUTempC, decoded.CPUTempC, 0.01)
		assert.InDelta(t, tel.RadioTempC, decoded.RadioTempC, 0.01)
	})

	// Out-of-range altitude saturates to 0 instead of wrapping negative.
	tel := Telemetry{AltMeters: -500}
	decoded, err := DecodeTelemetry(tel.Encode())
	require.NoError(t, err)
	assert.Equal(t, float64(0), decoded.AltMeters)

	// Out-of-range temperature saturates rather than overflowing int16.
	hot := Telemetry{CPUTempC: 1000}
	decoded, err = DecodeTelemetry(hot.Encode())
	require.NoError(t, err)
	assert.InDelta(t, 327.67, decoded.CPUTempC, 0.01)
}

func TestTelemetryNoFixIsZeroZero(t *testing.T) {
	var tel Telemetry
	assert.False(t, tel.HasFix())

	tel.Lat = 0.0000001
	assert.True(t, tel.HasFix())
}
