package ground

import "fmt"

// Errors surfaced by the image reconstruction engine. None of these ever
// panics its way out of a malformed wire input (spec.md §9).
var (
	ErrMalformedMeta    = fmt.Errorf("ground: malformed image metadata (K=0 or symbol_size=0)")
	ErrConflictingMeta  = fmt.Errorf("ground: conflicting metadata for in-progress image")
	ErrSymbolSizeMismatch = fmt.Errorf("ground: metadata symbol_size disagrees with buffered symbols")
)
