package radio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOPTT drives a single GPIO line as a PTT/standby control for radios
// that are keyed by a hardware line rather than a serial command —
// typical of bare transmitter modules wired directly to an SBC-class
// payload computer's header pins. It wraps a Serial for the actual data
// path and only overrides Transmit/SetStandby to toggle the line around
// the underlying transmit call.
type GPIOPTT struct {
	Chip   string // e.g. "/dev/gpiochip0"
	Offset int    // line offset for the PTT signal

	data *Serial
	line *gpiocdev.Line
}

// NewGPIOPTT wraps data with GPIO-keyed PTT on chip/offset.
func NewGPIOPTT(chip string, offset int, data *Serial) *GPIOPTT {
	return &GPIOPTT{Chip: chip, Offset: offset, data: data}
}

func (g *GPIOPTT) Init() error {
	if g.data == nil {
		return errors.New("radio: GPIOPTT requires a data path")
	}
	if err := g.data.Init(); err != nil {
		return err
	}

	line, err := gpiocdev.RequestLine(g.Chip, g.Offset, gpiocdev.AsOutput(0))
	if err != nil {
		_ = g.data.Close()
		return fmt.Errorf("radio: requesting PTT line %s:%d: %w", g.Chip, g.Offset, err)
	}
	g.line = line
	return nil
}

func (g *GPIOPTT) Close() error {
	if g.line != nil {
		_ = g.line.SetValue(0)
		_ = g.line.Close()
		g.line = nil
	}
	return g.data.Close()
}

// Transmit keys the PTT line high, sends frame over the serial data path,
// then drops PTT low.
func (g *GPIOPTT) Transmit(frame []byte) (bool, error) {
	if g.line == nil {
		return false, errNotOpen
	}
	if err := g.line.SetValue(1); err != nil {
		return false, fmt.Errorf("radio: asserting PTT: %w", err)
	}
	defer g.line.SetValue(0) //nolint:errcheck

	return g.data.Transmit(frame)
}

func (g *GPIOPTT) ReceiveContinuous() error {
	return g.data.ReceiveContinuous()
}

func (g *GPIOPTT) CheckForPacket() ([]byte, int16, error) {
	return g.data.CheckForPacket()
}

func (g *GPIOPTT) SetStandby() error {
	if g.line != nil {
		return g.line.SetValue(0)
	}
	return nil
}

func (g *GPIOPTT) GetTemperature() (float64, error) {
	return g.data.GetTemperature()
}
