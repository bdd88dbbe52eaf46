package ground

import (
	"time"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// Status is the terminal/non-terminal state of an image reconstruction
// (spec.md §3).
type Status int

const (
	StatusReceiving Status = iota
	StatusComplete
	StatusFailed
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusReceiving:
		return "receiving"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Reconstruction is the per-image state the engine maintains: buffered
// symbols keyed by symbol_id (deduplicated), the codec once metadata is
// known, and the status machine from spec.md §3's lifecycle section.
type Reconstruction struct {
	ImageID uint16

	Meta    *protocol.ImageMeta // nil until the first META arrives
	Codec   fountain.Codec
	decoder fountain.Decoder

	buffered map[uint32][]byte // only used before the decoder exists

	Status Status

	FirstReceived time.Time
	LastReceived  time.Time

	SymbolsReceived  int
	SymbolsDuplicate int
}

func newReconstruction(imageID uint16, now time.Time) *Reconstruction {
	return &Reconstruction{
		ImageID:       imageID,
		Status:        StatusReceiving,
		buffered:      make(map[uint32][]byte),
		FirstReceived: now,
		LastReceived:  now,
	}
}

// installDecoder attaches a decoder once META is known and replays any
// symbols buffered before it arrived (spec.md §4.5 "buffer-then-replay").
// It returns true if replay alone completed the reconstruction.
func (r *Reconstruction) installDecoder(meta protocol.ImageMeta, codec fountain.Codec) bool {
	r.Meta = &meta
	r.Codec = codec
	r.decoder = fountain.NewDecoder(codec, int(meta.NumSourceSymbols), int(meta.SymbolSize), int(meta.TotalSize))

	complete := false
	for id, data := range r.buffered {
		if r.decoder.AddSymbol(id, data) {
			complete = true
		}
	}
	r.buffered = nil

	return complete
}

// addSymbol buffers or decodes one symbol, deduplicating by symbol_id.
// Returns (duplicate, complete).
func (r *Reconstruction) addSymbol(now time.Time, symbolID uint32, data []byte) (duplicate, complete bool) {
	r.LastReceived = now

	if r.decoder == nil {
		if _, ok := r.buffered[symbolID]; ok {
			r.SymbolsDuplicate++
			return true, false
		}
		cp := append([]byte(nil), data...)
		r.buffered[symbolID] = cp
		r.SymbolsReceived++
		return false, false
	}

	before := r.decoder.SymbolsReceived()
	complete = r.decoder.AddSymbol(symbolID, data)
	if r.decoder.SymbolsReceived() == before {
		r.SymbolsDuplicate++
		return true, complete
	}
	r.SymbolsReceived++
	return false, complete
}

// Decoded returns the decoder's recovered blob. Valid only once the
// decoder has reported completion.
func (r *Reconstruction) Decoded() []byte {
	if r.decoder == nil {
		return nil
	}
	return r.decoder.Decoded()
}

// ProgressPercent reports decode progress for dashboards/logging, derived
// from original_source/Pi/ground/decoder.py's ImageReconstruction
// progress_percent (a feature the distilled spec dropped; see
// SPEC_FULL.md §12). It is read-only and never feeds protocol decisions.
func (r *Reconstruction) ProgressPercent() float64 {
	if r.Meta == nil || r.Meta.NumSourceSymbols == 0 {
		return 0
	}
	pct := float64(r.SymbolsReceived) / float64(r.Meta.NumSourceSymbols) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
