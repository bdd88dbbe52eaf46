package payload

import (
	"hash/crc32"

	"github.com/charmbracelet/log"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/protocol"
)

// outOfBand is one priority-queue entry: a pre-built frame the scheduler
// emits ahead of anything else (spec.md §4.3 step 1 — text messages,
// reserved for command ACKs).
type outOfBand struct {
	frame []byte
}

// SchedulerConfig configures the packet scheduler's selection rule
// (spec.md §4.3).
type SchedulerConfig struct {
	TelemetryIntervalPackets int // default 10
	ImageMetaIntervalPackets int // default 100
	Codec                    fountain.Codec
	SymbolSize               int
	FountainOverheadPercent  int // default 25
	ImageQueueCapacity       int // default 5
	BaseSeed                 uint64
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.TelemetryIntervalPackets <= 0 {
		c.TelemetryIntervalPackets = 10
	}
	if c.ImageMetaIntervalPackets <= 0 {
		c.ImageMetaIntervalPackets = 100
	}
	if c.SymbolSize <= 0 {
		c.SymbolSize = 200
	}
	if c.FountainOverheadPercent <= 0 {
		c.FountainOverheadPercent = 25
	}
	if c.ImageQueueCapacity <= 0 {
		c.ImageQueueCapacity = 5
	}
	return c
}

// Scheduler owns the monotonic seq counter, the image FIFO, the single
// active image, and the out-of-band priority queue (spec.md §4.3).
type Scheduler struct {
	cfg SchedulerConfig
	log *log.Logger

	seq           uint16
	packetCounter uint64

	queue    *imageQueue
	active   *activeImage
	priority []outOfBand
}

// NewScheduler constructs a scheduler.
func NewScheduler(cfg SchedulerConfig, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.withDefaults()
	return &Scheduler{
		cfg:   cfg,
		log:   logger,
		queue: newImageQueue(cfg.ImageQueueCapacity),
	}
}

// EnqueueImage adds a freshly captured image to the FIFO, dropping it
// with a log entry if the queue is already full (spec.md §5 backpressure).
func (s *Scheduler) EnqueueImage(imageID uint16, data []byte) {
	ok := s.queue.push(queuedImage{
		imageID:  imageID,
		data:     data,
		checksum: crc32.ChecksumIEEE(data),
	})
	if !ok {
		s.log.Warn("image queue full, dropping capture", "image_id", imageID)
	}
}

// EnqueueText schedules a TEXT_MSG packet ahead of everything else.
func (s *Scheduler) EnqueueText(msg string) error {
	frame, err := protocol.Build(protocol.PacketTextMsg, s.nextSeq(), []byte(msg), 0)
	if err != nil {
		return err
	}
	s.priority = append(s.priority, outOfBand{frame: frame})
	return nil
}

func (s *Scheduler) nextSeq() uint16 {
	seq := s.seq
	s.seq++
	return seq
}

// NextPacket builds exactly one frame per spec.md §4.3's seven-step
// selection rule, using snapshot for any TELEMETRY packet this call
// emits.
func (s *Scheduler) NextPacket(snapshot protocol.Telemetry) ([]byte, error) {
	// Step 1: priority queue.
	if len(s.priority) > 0 {
		frame := s.priority[0].frame
		s.priority = s.priority[1:]
		return frame, nil
	}

	// Step 2: advance packet counter.
	s.packetCounter++

	// Step 3: telemetry on interval.
	if s.packetCounter%uint64(s.cfg.TelemetryIntervalPackets) == 0 {
		return s.buildTelemetry(snapshot)
	}

	// Step 4: image meta on interval, if an active image exists.
	if s.packetCounter%uint64(s.cfg.ImageMetaIntervalPackets) == 0 && s.active != nil {
		return s.buildImageMeta()
	}

	// Step 5: draw a fountain symbol from the active image if not exhausted.
	if s.active != nil && !s.active.exhausted() {
		return s.buildImageData()
	}

	// Image exhausted: clear the slot.
	if s.active != nil && s.active.exhausted() {
		s.active = nil
	}

	// Step 6: promote the next queued image.
	if !s.queue.empty() {
		if err := s.promoteNext(); err != nil {
			s.log.Warn("dropping image, encoder construction failed", "err", err)
			return s.buildTelemetry(snapshot)
		}
		return s.buildImageMeta()
	}

	// Step 7: fall back to telemetry.
	return s.buildTelemetry(snapshot)
}

func (s *Scheduler) promoteNext() error {
	img, ok := s.queue.pop()
	if !ok {
		return nil
	}

	encoder, err := fountain.NewEncoder(s.cfg.Codec, img.data, s.cfg.SymbolSize, s.cfg.BaseSeed)
	if err != nil {
		return err
	}

	s.active = &activeImage{
		imageID:     img.imageID,
		checksum:    img.checksum,
		totalSize:   uint32(len(img.data)),
		encoder:     encoder,
		recommended: encoder.RecommendedCount(s.cfg.FountainOverheadPercent),
	}
	return nil
}

func (s *Scheduler) buildTelemetry(snapshot protocol.Telemetry) ([]byte, error) {
	return protocol.Build(protocol.PacketTelemetry, s.nextSeq(), snapshot.Encode(), 0)
}

func (s *Scheduler) buildImageMeta() ([]byte, error) {
	a := s.active
	a.metaSent = true

	meta := protocol.ImageMeta{
		ImageID:          a.imageID,
		TotalSize:        a.totalSize,
		SymbolSize:       a.encoder.SymbolSize(),
		NumSourceSymbols: a.encoder.NumSourceSymbols(),
		Checksum:         a.checksum,
	}
	return protocol.Build(protocol.PacketImageMeta, s.nextSeq(), meta.Encode(), 0)
}

func (s *Scheduler) buildImageData() ([]byte, error) {
	a := s.active
	id, data := a.encoder.GenerateSymbol()
	a.symbolsDrawn++

	payload := protocol.ImageData{ImageID: a.imageID, SymbolID: id, SymbolData: data}
	return protocol.Build(protocol.PacketImageData, s.nextSeq(), payload.Encode(), 0)
}
