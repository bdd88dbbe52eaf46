package fountain

// ltDecoder implements Decoder with belief-propagation decoding over the
// same Robust Soliton neighbor derivation the encoder uses (spec.md §4.5).
type ltDecoder struct {
	k          int
	symbolSize int
	totalSize  int
	seed       uint64
	dist       *robustSoliton

	decoded map[int][]byte             // source index -> bytes
	encoded map[uint32]*pendingSymbol  // symbol id -> reduced symbol, pending
	seen    map[uint32]struct{}        // symbol ids already applied (for idempotency)
	count   int
}

type pendingSymbol struct {
	data      []byte
	remaining map[int]struct{}
}

// newLTDecoder builds a decoder for k source symbols. It always derives
// neighbors with seed 0, the payload's base-seed convention, so it only
// decodes streams from an encoder built with baseSeed 0.
func newLTDecoder(k, symbolSize, totalSize int) *ltDecoder {
	if k < 1 {
		k = 1
	}
	return &ltDecoder{
		k:          k,
		symbolSize: symbolSize,
		totalSize:  totalSize,
		seed:       0,
		dist:       newRobustSoliton(k, 0.1, 0.5),
		decoded:    make(map[int][]byte),
		encoded:    make(map[uint32]*pendingSymbol),
		seen:       make(map[uint32]struct{}),
	}
}

func (d *ltDecoder) AddSymbol(symbolID uint32, data []byte) bool {
	if _, dup := d.seen[symbolID]; dup {
		return d.complete()
	}
	d.seen[symbolID] = struct{}{}
	d.count++

	_, indices := symbolNeighbors(d.seed, symbolID, d.k, d.dist)

	reduced := append([]byte(nil), data...)
	remaining := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if src, ok := d.decoded[idx]; ok {
			xorInto(reduced, src)
		} else {
			remaining[idx] = struct{}{}
		}
	}

	switch len(remaining) {
	case 0:
		// Redundant symbol; nothing new learned.
	case 1:
		var only int
		for idx := range remaining {
			only = idx
		}
		d.decodeAndPropagate(only, reduced)
	default:
		d.encoded[symbolID] = &pendingSymbol{data: reduced, remaining: remaining}
	}

	return d.complete()
}

// decodeAndPropagate records src as decoded and walks a worklist of
// encoded symbols it can now reduce, rather than recursing, to avoid
// stack growth on pathological propagation graphs (spec.md §4.5).
func (d *ltDecoder) decodeAndPropagate(src int, data []byte) {
	type work struct {
		idx  int
		data []byte
	}

	queue := []work{{src, data}}

	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]

		if _, already := d.decoded[w.idx]; already {
			continue
		}
		d.decoded[w.idx] = w.data

		for symID, pending := range d.encoded {
			if _, refs := pending.remaining[w.idx]; !refs {
				continue
			}
			xorInto(pending.data, w.data)
			delete(pending.remaining, w.idx)

			switch len(pending.remaining) {
			case 0:
				delete(d.encoded, symID)
			case 1:
				var next int
				for idx := range pending.remaining {
					next = idx
				}
				delete(d.encoded, symID)
				queue = append(queue, work{next, pending.data})
			}
		}
	}
}

func xorInto(dst, src []byte) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] ^= src[i]
	}
}

func (d *ltDecoder) complete() bool {
	return len(d.decoded) >= d.k
}

func (d *ltDecoder) Decoded() []byte {
	out := make([]byte, 0, d.k*d.symbolSize)
	for i := 0; i < d.k; i++ {
		out = append(out, d.decoded[i]...)
	}
	if len(out) > d.totalSize {
		out = out[:d.totalSize]
	}
	return out
}

func (d *ltDecoder) SymbolsReceived() int { return d.count }
