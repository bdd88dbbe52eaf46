// Package session generates the per-flight session handle that
// hab-ground uses as its mDNS announcement instance name and as context
// on its log lines (SPEC_FULL.md §10, grounded on original_source/ground/storage.py's
// session_id and the teacher's use of lestrrat-go/strftime in
// src/xmit.go and src/tq.go for timestamp formatting).
package session

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

// Pattern is the strftime pattern the original Python implementation used
// for its session_id (original_source/ground/storage.py).
const Pattern = "%Y%m%d_%H%M%S"

// New formats a session handle from now using Pattern. The teacher
// ignores strftime.Format's error for a fixed, known-valid pattern
// (src/xmit.go, src/tq.go); Pattern is a compile-time constant so the
// same is safe here.
func New(now time.Time) string {
	handle, _ := strftime.Format(Pattern, now)
	return handle
}
