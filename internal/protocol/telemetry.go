package protocol

import "encoding/binary"

// Telemetry is the decoded form of a TELEMETRY payload (spec.md §3).
// Fixed-point fields are stored here already converted to engineering
// units; Encode reapplies the fixed-point scaling and clamps to the
// representable range so a pathological sensor reading can never produce
// a frame that fails its own Parse.
type Telemetry struct {
	Lat            float64 // degrees
	Lon            float64 // degrees
	AltMeters      float64
	SpeedMps       float64
	HeadingDeg     float64
	Satellites     uint8
	Fix            FixType
	GPSTimeUnix    uint32
	BattMillivolts uint16
	CPUTempC       float64
	RadioTempC     float64
	ImageID        uint16
	ImageProgress  uint8 // 0-100
	RSSIdBm        int8
}

func clampI32(v float64) int32 {
	if v > 2147483647 {
		return 2147483647
	}
	if v < -2147483648 {
		return -2147483648
	}
	return int32(v)
}

func clampU32(v float64) uint32 {
	if v < 0 {
		return 0
	}
	if v > 4294967295 {
		return 4294967295
	}
	return uint32(v)
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func clampI16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func clampU8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampI8(v int) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}

// Encode packs t into the fixed 36-byte TELEMETRY payload.
func (t Telemetry) Encode() []byte {
	buf := make([]byte, 0, TelemetryPayloadSize)

	buf = binary.BigEndian.AppendUint32(buf, uint32(clampI32(t.Lat*1e7)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(clampI32(t.Lon*1e7)))
	buf = binary.BigEndian.AppendUint32(buf, clampU32(t.AltMeters*1e3))
	buf = binary.BigEndian.AppendUint16(buf, clampU16(t.SpeedMps*100))
	buf = binary.BigEndian.AppendUint16(buf, clampU16(t.HeadingDeg*100))
	buf = append(buf, clampU8(int(t.Satellites)))
	buf = append(buf, byte(t.Fix))
	buf = binary.BigEndian.AppendUint32(buf, t.GPSTimeUnix)
	buf = binary.BigEndian.AppendUint16(buf, t.BattMillivolts)
	buf = binary.BigEndian.AppendUint16(buf, uint16(clampI16(t.CPUTempC*100)))
	buf = binary.BigEndian.AppendUint16(buf, uint16(clampI16(t.RadioTempC*100)))
	buf = binary.BigEndian.AppendUint16(buf, t.ImageID)
	buf = append(buf, clampU8(int(t.ImageProgress)))
	buf = append(buf, byte(clampI8(int(t.RSSIdBm))))
	buf = append(buf, 0, 0, 0, 0) // reserved

	return buf
}

// DecodeTelemetry unpacks a 36-byte TELEMETRY payload.
func DecodeTelemetry(payload []byte) (Telemetry, error) {
	if len(payload) < TelemetryPayloadSize {
		return Telemetry{}, &ShortPayloadError{Type: PacketTelemetry, Want: TelemetryPayloadSize, Got: len(payload)}
	}

	var t Telemetry
	t.Lat = float64(int32(binary.BigEndian.Uint32(payload[0:4]))) / 1e7
	t.Lon = float64(int32(binary.BigEndian.Uint32(payload[4:8]))) / 1e7
	t.AltMeters = float64(binary.BigEndian.Uint32(payload[8:12])) / 1e3
	t.SpeedMps = float64(binary.BigEndian.Uint16(payload[12:14])) / 100
	t.HeadingDeg = float64(binary.BigEndian.Uint16(payload[14:16])) / 100
	t.Satellites = payload[16]
	t.Fix = FixType(payload[17])
	t.GPSTimeUnix = binary.BigEndian.Uint32(payload[18:22])
	t.BattMillivolts = binary.BigEndian.Uint16(payload[22:24])
	t.CPUTempC = float64(int16(binary.BigEndian.Uint16(payload[24:26]))) / 100
	t.RadioTempC = float64(int16(binary.BigEndian.Uint16(payload[26:28]))) / 100
	t.ImageID = binary.BigEndian.Uint16(payload[28:30])
	t.ImageProgress = payload[30]
	t.RSSIdBm = int8(payload[31])
	// payload[32:36] reserved, ignored.

	return t, nil
}

// HasFix reports whether the telemetry carries a usable fix. Per spec.md
// §3, (lat,lon)=(0,0) MUST be treated as "no fix yet" regardless of the
// advisory fix_type/sats fields, and consumers must not plot it.
func (t Telemetry) HasFix() bool {
	return t.Lat != 0 || t.Lon != 0
}
