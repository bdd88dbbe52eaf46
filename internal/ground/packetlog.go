package ground

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// PacketLog appends a hex-encoded copy of every frame seen, plus RSSI and
// timestamp, to a log file (spec.md §4.4). Grounded on
// original_source/ground/receiver.py's _log_raw_packet, one CSV line per
// packet: timestamp,rssi,length,hex.
type PacketLog struct {
	w io.Writer
}

// NewPacketLog wraps an already-open writer (typically a file opened in
// append mode by the caller).
func NewPacketLog(w io.Writer) *PacketLog {
	return &PacketLog{w: w}
}

// Append writes one line for raw. Write errors are not fatal to the
// dispatcher — a full disk must not stop reception — so they are
// returned for the caller to log rather than panicking.
func (p *PacketLog) Append(raw []byte, rssi int16, now time.Time) error {
	_, err := fmt.Fprintf(p.w, "%s,%d,%d,%s\n", now.UTC().Format(time.RFC3339Nano), rssi, len(raw), hex.EncodeToString(raw))
	return err
}
