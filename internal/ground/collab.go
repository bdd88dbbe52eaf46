package ground

import "github.com/pingpongshow/raptorhab/internal/protocol"

// Storage is the out-of-scope persistence collaborator (spec.md §1 names
// SQLite persistence as an external collaborator): one implementation
// caller-supplied to Supervisor/Engine wiring, invoked from
// ImageCompletionFunc and a TelemetrySink implementation. Nothing in this
// package implements Storage; it exists so cmd/hab-ground can wire one in
// without the ground package depending on a concrete database driver.
type Storage interface {
	SaveImage(imageID uint16, data []byte, meta protocol.ImageMeta) error
	SaveTelemetry(t protocol.Telemetry, rssi int16, seq uint16) error
}
