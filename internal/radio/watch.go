package radio

import (
	"context"

	"github.com/jochenvg/go-udev"
)

// USBWatcher watches for a configured radio's USB device node appearing
// or disappearing and reports each change as an Event. The payload
// supervisor does not consume these events; nothing in this repository
// connects them to its Initializing/Error transitions.
type USBWatcher struct {
	// Subsystem and DevType identify which udev events are relevant,
	// e.g. "tty" devices for a USB-serial radio adapter.
	Subsystem string
	DevType   string

	cancel context.CancelFunc
}

// Event reports a USB device add/remove relevant to the watched radio.
type Event struct {
	Action  string // "add" or "remove"
	DevNode string
	Removed bool
}

// NewUSBWatcher constructs a watcher for the given subsystem/devtype
// (e.g. Subsystem: "tty").
func NewUSBWatcher(subsystem, devType string) *USBWatcher {
	return &USBWatcher{Subsystem: subsystem, DevType: devType}
}

// Watch starts monitoring udev events and sends one Event per relevant
// device change on the returned channel. The channel is closed when ctx
// is cancelled or Stop is called.
func (w *USBWatcher) Watch(ctx context.Context) (<-chan Event, error) {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem(w.Subsystem); err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	deviceCh, _, err := monitor.DeviceChan(watchCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-watchCtx.Done():
				return
			case dev, ok := <-deviceCh:
				if !ok {
					return
				}
				if w.DevType != "" && dev.Devtype() != w.DevType {
					continue
				}
				action := dev.Action()
				events <- Event{
					Action:  action,
					DevNode: dev.Devnode(),
					Removed: action == "remove",
				}
			}
		}
	}()

	return events, nil
}

// Stop ends the watch started by the most recent Watch call.
func (w *USBWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}
