// Package ground implements the ground-station packet dispatcher and
// per-image reconstruction engine (spec.md §4.4, §4.5).
package ground

import (
	"hash/crc32"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// CompletionFunc is invoked exactly once per successfully reconstructed
// image (spec.md §6 "image completion callback").
type CompletionFunc func(imageID uint16, data []byte, meta protocol.ImageMeta)

// EngineConfig configures the reconstruction engine.
type EngineConfig struct {
	Codec             fountain.Codec
	MaxPending        int           // default 10
	InactivityTimeout time.Duration // default 300s
	CompletedCapacity int           // how many finished image ids to remember for dedup
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.MaxPending <= 0 {
		c.MaxPending = 10
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = 300 * time.Second
	}
	if c.CompletedCapacity <= 0 {
		c.CompletedCapacity = 64
	}
	return c
}

// Engine is the ground-side per-image reconstruction engine (spec.md
// §4.5). It is not safe for concurrent use; the dispatcher serializes
// access to it, per spec.md §4.4.
type Engine struct {
	cfg EngineConfig
	log *log.Logger

	onComplete CompletionFunc

	active    map[uint16]*Reconstruction
	completed map[uint16]struct{}
	// completedOrder is a FIFO of completed ids so the dedup set can be
	// bounded without growing forever across a long flight.
	completedOrder []uint16

	// Stats surfaced for logging/dashboards.
	ImagesCompleted int
	ImagesFailed    int
	ImagesTimedOut  int
	ImagesEvicted   int
}

// NewEngine constructs a reconstruction engine. onComplete may be nil.
func NewEngine(cfg EngineConfig, onComplete CompletionFunc, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:        cfg.withDefaults(),
		log:        logger,
		onComplete: onComplete,
		active:     make(map[uint16]*Reconstruction),
		completed:  make(map[uint16]struct{}),
	}
}

// AddMetadata handles an IMAGE_META packet (spec.md §4.5).
func (e *Engine) AddMetadata(meta protocol.ImageMeta, now time.Time) error {
	if _, done := e.completed[meta.ImageID]; done {
		return nil
	}

	if meta.NumSourceSymbols == 0 || meta.SymbolSize == 0 {
		e.log.Warn("rejecting malformed image metadata", "image_id", meta.ImageID)
		return ErrMalformedMeta
	}

	rec, exists := e.active[meta.ImageID]
	if !exists {
		rec = e.openReconstruction(meta.ImageID, now)
	}

	if rec.Meta != nil {
		if !rec.Meta.Equal(meta) {
			e.log.Warn("conflicting metadata for in-progress image", "image_id", meta.ImageID)
			return ErrConflictingMeta
		}
		return nil
	}

	if !e.metaMatchesBufferedSymbols(rec, meta) {
		rec.Status = StatusFailed
		e.evict(meta.ImageID)
		e.ImagesFailed++
		return ErrSymbolSizeMismatch
	}

	if rec.installDecoder(meta, e.cfg.Codec) {
		e.complete(rec)
	}

	return nil
}

func (e *Engine) metaMatchesBufferedSymbols(rec *Reconstruction, meta protocol.ImageMeta) bool {
	for _, data := range rec.buffered {
		if len(data) != int(meta.SymbolSize) && e.cfg.Codec == fountain.LT {
			return false
		}
	}
	return true
}

// AddSymbol handles an IMAGE_DATA packet (spec.md §4.5).
func (e *Engine) AddSymbol(imageID uint16, symbolID uint32, data []byte, now time.Time) {
	if _, done := e.completed[imageID]; done {
		return
	}

	rec, exists := e.active[imageID]
	if !exists {
		rec = e.openReconstruction(imageID, now)
	}

	_, complete := rec.addSymbol(now, symbolID, data)
	if complete {
		e.complete(rec)
	}
}

// openReconstruction creates a placeholder reconstruction, evicting the
// oldest active one first if at capacity (spec.md §4.5, §5 backpressure).
func (e *Engine) openReconstruction(imageID uint16, now time.Time) *Reconstruction {
	if len(e.active) >= e.cfg.MaxPending {
		e.evictOldest()
	}

	rec := newReconstruction(imageID, now)
	e.active[imageID] = rec
	return rec
}

func (e *Engine) evictOldest() {
	var oldestID uint16
	var oldestTime time.Time
	first := true

	for id, rec := range e.active {
		// Equal first-received times fall back to the lower image id, since
		// ids increase per payload process and the lower one opened first.
		if first || rec.FirstReceived.Before(oldestTime) ||
			(rec.FirstReceived.Equal(oldestTime) && id < oldestID) {
			oldestID = id
			oldestTime = rec.FirstReceived
			first = false
		}
	}

	if first {
		return
	}

	if rec, ok := e.active[oldestID]; ok {
		rec.Status = StatusTimeout
	}
	e.log.Info("evicting reconstruction to make room", "image_id", oldestID)
	e.evict(oldestID)
	e.ImagesEvicted++
}

func (e *Engine) evict(imageID uint16) {
	delete(e.active, imageID)
}

// complete runs the checksum-gated completion path (spec.md §4.5).
func (e *Engine) complete(rec *Reconstruction) {
	data := rec.Decoded()
	checksum := crc32.ChecksumIEEE(data)

	if rec.Meta == nil || checksum != rec.Meta.Checksum {
		rec.Status = StatusFailed
		e.evict(rec.ImageID)
		e.ImagesFailed++
		e.log.Warn("image checksum mismatch", "image_id", rec.ImageID)
		return
	}

	rec.Status = StatusComplete
	e.markCompleted(rec.ImageID)
	e.evict(rec.ImageID)
	e.ImagesCompleted++

	if e.onComplete != nil {
		e.onComplete(rec.ImageID, data, *rec.Meta)
	}
}

func (e *Engine) markCompleted(imageID uint16) {
	e.completed[imageID] = struct{}{}
	e.completedOrder = append(e.completedOrder, imageID)

	if len(e.completedOrder) > e.cfg.CompletedCapacity {
		oldest := e.completedOrder[0]
		e.completedOrder = e.completedOrder[1:]
		delete(e.completed, oldest)
	}
}

// Sweep evicts any reconstruction that has been inactive past the
// configured timeout (spec.md §4.5, §5).
func (e *Engine) Sweep(now time.Time) {
	for id, rec := range e.active {
		if now.Sub(rec.LastReceived) > e.cfg.InactivityTimeout {
			rec.Status = StatusTimeout
			e.log.Info("image reconstruction timed out", "image_id", id)
			e.evict(id)
			e.ImagesTimedOut++
		}
	}
}

// Pending returns a snapshot of currently-active reconstructions, for
// read-only reporting (spec.md §5 shared-resource policy).
func (e *Engine) Pending() []*Reconstruction {
	out := make([]*Reconstruction, 0, len(e.active))
	for _, rec := range e.active {
		out = append(out, rec)
	}
	return out
}
