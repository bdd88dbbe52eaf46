// Package radio defines the radio driver contract (spec.md §6) and ships
// the concrete backends the payload and ground supervisors select between
// at startup: a length-prefixed serial link, a GPIO-keyed PTT, CAT rig control,
// an AFSK soundcard modem, a USB hotplug watcher, and a pty-backed
// simulated radio for tests.
package radio

import "time"

// Driver is the collaborator contract every radio backend implements
// (spec.md §6). The protocol layer never depends on a concrete backend,
// only on this interface, matching spec.md §9's preference for
// interfaces over concrete collaborator types.
type Driver interface {
	// Init opens the underlying device. It must be called before any
	// other method.
	Init() error

	// Close releases the underlying device.
	Close() error

	// Transmit sends one frame, blocking for up to the TX duration. It
	// reports whether the transmission completed.
	Transmit(frame []byte) (bool, error)

	// ReceiveContinuous puts the driver into a mode where CheckForPacket
	// will surface inbound frames. Backends that are always receiving
	// may treat this as a no-op.
	ReceiveContinuous() error

	// CheckForPacket polls for one candidate frame. It returns (nil, 0,
	// nil) if nothing is available within its internal poll interval.
	CheckForPacket() (frame []byte, rssi int16, err error)

	// SetStandby places the radio in its lowest-power idle mode.
	SetStandby() error

	// GetTemperature reports the radio module's advisory temperature in
	// degrees Celsius.
	GetTemperature() (float64, error)
}

// PollInterval is the default interval backends should use internally
// between CheckForPacket attempts when their hardware has no blocking
// receive primitive.
const PollInterval = 20 * time.Millisecond
