package ground

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// TelemetrySink receives every validated TELEMETRY packet (spec.md §6).
type TelemetrySink interface {
	ProcessPacket(t protocol.Telemetry, rssi int16, seq uint16)
}

// TextSink receives every validated TEXT_MSG packet.
type TextSink interface {
	ProcessText(msg string, rssi int16, seq uint16)
}

// Counters tallies per-type and invalid-frame statistics (spec.md §4.4).
type Counters struct {
	Telemetry  int
	ImageMeta  int
	ImageData  int
	TextMsg    int
	Ignored    int
	Invalid    int
	LastRSSI   int16
	LastSeenAt time.Time
}

// Dispatcher demultiplexes validated frames by packet type and hands them
// to the telemetry consumer or image engine (spec.md §4.4). It is
// single-threaded with respect to the image engine; callers must
// serialize access, same as the engine itself.
type Dispatcher struct {
	SymbolSize int // session's configured fountain symbol size, or 0 if unknown

	Engine    *Engine
	Telemetry TelemetrySink
	Text      TextSink
	Log       *PacketLog // optional

	log *log.Logger

	Counters Counters
}

// NewDispatcher constructs a dispatcher. Telemetry, Text, and Log may be
// nil.
func NewDispatcher(engine *Engine, telemetry TelemetrySink, text TextSink, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{Engine: engine, Telemetry: telemetry, Text: text, log: logger}
}

// Handle validates and routes one candidate frame received at rssi and
// now (spec.md §4.4).
func (d *Dispatcher) Handle(raw []byte, rssi int16, now time.Time) {
	frame, err := protocol.Parse(raw, d.SymbolSize)
	if err != nil {
		d.Counters.Invalid++
		d.log.Debug("dropping invalid frame", "err", err)
		return
	}

	d.Counters.LastRSSI = rssi
	d.Counters.LastSeenAt = now

	if d.Log != nil {
		if err := d.Log.Append(raw, rssi, now); err != nil {
			d.log.Warn("packet log write failed", "err", err)
		}
	}

	switch frame.Type {
	case protocol.PacketTelemetry:
		d.Counters.Telemetry++
		tel, err := protocol.DecodeTelemetry(frame.Payload)
		if err != nil {
			d.Counters.Invalid++
			return
		}
		if d.Telemetry != nil {
			d.Telemetry.ProcessPacket(tel, rssi, frame.Seq)
		}

	case protocol.PacketImageMeta:
		d.Counters.ImageMeta++
		meta, err := protocol.DecodeImageMeta(frame.Payload)
		if err != nil {
			d.Counters.Invalid++
			return
		}
		if d.Engine != nil {
			_ = d.Engine.AddMetadata(meta, now)
		}

	case protocol.PacketImageData:
		d.Counters.ImageData++
		data, err := protocol.DecodeImageData(frame.Payload)
		if err != nil {
			d.Counters.Invalid++
			return
		}
		if d.Engine != nil {
			d.Engine.AddSymbol(data.ImageID, data.SymbolID, data.SymbolData, now)
		}

	case protocol.PacketTextMsg:
		d.Counters.TextMsg++
		if d.Text != nil {
			d.Text.ProcessText(string(frame.Payload), rssi, frame.Seq)
		}

	default:
		d.Counters.Ignored++
	}
}
