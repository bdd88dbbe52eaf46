package payload

import "github.com/pingpongshow/raptorhab/internal/fountain"

// queuedImage is a captured image awaiting its turn to become the
// scheduler's active image.
type queuedImage struct {
	imageID  uint16
	data     []byte
	checksum uint32
}

// activeImage is the scheduler's single in-flight image: its encoder and
// the count of symbols already drawn from it (spec.md §4.3).
type activeImage struct {
	imageID      uint16
	checksum     uint32
	totalSize    uint32
	encoder      fountain.Encoder
	symbolsDrawn uint32
	recommended  uint32
	metaSent     bool
}

// exhausted reports whether the scheduler has drawn recommendedCount
// symbols from this image (spec.md §4.3).
func (a *activeImage) exhausted() bool {
	return a.symbolsDrawn >= a.recommended
}

// imageQueue is the bounded FIFO of captured images awaiting transmission
// (spec.md §4.3, §5 backpressure: default capacity 5, drop-with-log when
// full).
type imageQueue struct {
	capacity int
	items    []queuedImage
}

func newImageQueue(capacity int) *imageQueue {
	if capacity <= 0 {
		capacity = 5
	}
	return &imageQueue{capacity: capacity}
}

// push enqueues img, reporting false (dropped) if the queue is already at
// capacity.
func (q *imageQueue) push(img queuedImage) bool {
	if len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, img)
	return true
}

func (q *imageQueue) empty() bool {
	return len(q.items) == 0
}

// pop removes and returns the head of the queue.
func (q *imageQueue) pop() (queuedImage, bool) {
	if len(q.items) == 0 {
		return queuedImage{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}
