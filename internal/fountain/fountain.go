package fountain

import "fmt"

// Codec selects which fountain code backend an Encoder/Decoder pair uses.
// A deployment commits to one codec; the two are wire-incompatible
// (spec.md §9 Open Questions).
type Codec int

const (
	LT Codec = iota
	RaptorQ
)

func (c Codec) String() string {
	switch c {
	case LT:
		return "LT"
	case RaptorQ:
		return "RaptorQ"
	default:
		return "unknown"
	}
}

// ErrImageTooLarge is returned by NewEncoder when the blob would produce
// more source symbols than fits in a uint16 num_source_symbols field.
var ErrImageTooLarge = fmt.Errorf("fountain: image produces too many source symbols")

// ErrInvalidSymbolSize is returned when symbolSize is not positive.
var ErrInvalidSymbolSize = fmt.Errorf("fountain: symbol size must be positive")

// Encoder turns an image blob into an unbounded, lazily-generated stream
// of (symbol_id, symbol_bytes) pairs (spec.md §4.2). GenerateSymbol is
// infallible once the encoder is constructed.
type Encoder interface {
	GenerateSymbol() (id uint32, data []byte)
	RecommendedCount(overheadPercent int) uint32
	NumSourceSymbols() uint16
	SymbolSize() uint16
	Codec() Codec
}

// Decoder accumulates symbols for one image and reports when it has
// recovered the original blob.
type Decoder interface {
	// AddSymbol feeds one received symbol. It returns true once the
	// decoder has recovered the full blob; later calls continue to return
	// true (a new symbol id is still counted by SymbolsReceived).
	AddSymbol(symbolID uint32, data []byte) (complete bool)
	// Decoded returns the recovered blob, trimmed to totalSize. Valid
	// only once AddSymbol has returned true.
	Decoded() []byte
	SymbolsReceived() int
}

// NewEncoder constructs an Encoder for the given codec. baseSeed should be
// 0 for LT in normal operation so the transform is deterministic across
// payload restarts (spec.md §4.2); it is accepted as a parameter mainly to
// let tests exercise other seeds.
func NewEncoder(codec Codec, data []byte, symbolSize int, baseSeed uint64) (Encoder, error) {
	if symbolSize <= 0 {
		return nil, ErrInvalidSymbolSize
	}

	switch codec {
	case RaptorQ:
		return newRaptorQEncoder(data, symbolSize)
	default:
		return newLTEncoder(data, symbolSize, baseSeed)
	}
}

// NewDecoder constructs a Decoder for the given codec, K source symbols,
// symbolSize bytes each, and totalSize bytes of original data.
func NewDecoder(codec Codec, k int, symbolSize int, totalSize int) Decoder {
	if codec == RaptorQ {
		return newRaptorQDecoder(k, symbolSize, totalSize)
	}
	return newLTDecoder(k, symbolSize, totalSize)
}
