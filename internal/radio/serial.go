package radio

import (
	"errors"
	"fmt"
	"time"

	"github.com/pkg/term"
)

// frameMarker is a 0x00 delimiter byte value. Transmit and CheckForPacket
// neither write nor expect it: frames on the serial wire are delimited
// only by their 2-byte big-endian length prefix. The application frame
// itself carries its own sync word and CRC (spec.md §3).
const frameMarker = 0x00

var errNotOpen = errors.New("radio: serial port not open")

// Serial is the default radio backend: a framed serial link over
// github.com/pkg/term, adapted from the teacher's serial_port.go (the one
// module in src/ with no cgo dependency, reused nearly verbatim for the
// open/write/read/close primitives and wrapped to satisfy Driver).
type Serial struct {
	Device string
	Baud   int

	fd   *term.Term
	temp float64 // advisory temperature; nothing updates it, so GetTemperature reports 0
}

// NewSerial constructs an unopened serial backend for device at baud.
func NewSerial(device string, baud int) *Serial {
	return &Serial{Device: device, Baud: baud}
}

func (s *Serial) Init() error {
	fd, err := term.Open(s.Device, term.RawMode)
	if err != nil {
		return fmt.Errorf("radio: opening serial port %s: %w", s.Device, err)
	}

	switch s.Baud {
	case 0:
		// leave alone
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := fd.SetSpeed(s.Baud); err != nil {
			_ = fd.Close()
			return fmt.Errorf("radio: setting speed %d: %w", s.Baud, err)
		}
	default:
		if err := fd.SetSpeed(4800); err != nil {
			_ = fd.Close()
			return fmt.Errorf("radio: setting fallback speed: %w", err)
		}
	}

	s.fd = fd
	return nil
}

func (s *Serial) Close() error {
	if s.fd == nil {
		return nil
	}
	err := s.fd.Close()
	s.fd = nil
	return err
}

// Transmit writes frame preceded by a 2-byte big-endian length prefix, so
// the ground receiver can delimit frames on a byte stream that has no
// other framing of its own.
func (s *Serial) Transmit(frame []byte) (bool, error) {
	if s.fd == nil {
		return false, errNotOpen
	}

	header := []byte{byte(len(frame) >> 8), byte(len(frame))}
	n, err := s.fd.Write(append(header, frame...))
	if err != nil {
		return false, fmt.Errorf("radio: serial write: %w", err)
	}
	return n == len(header)+len(frame), nil
}

func (s *Serial) ReceiveContinuous() error {
	return nil
}

// CheckForPacket reads one length-prefixed frame if available. RSSI is
// not available over a plain serial link, so it always reports 0 (the
// radio driver contract, spec.md §6, treats rssi as advisory).
func (s *Serial) CheckForPacket() ([]byte, int16, error) {
	if s.fd == nil {
		return nil, 0, errNotOpen
	}

	header := make([]byte, 2)
	n, err := s.fd.Read(header)
	if err != nil || n < 2 {
		return nil, 0, nil
	}

	length := int(header[0])<<8 | int(header[1])
	frame := make([]byte, length)
	read := 0
	for read < length {
		got, err := s.fd.Read(frame[read:])
		if err != nil {
			return nil, 0, fmt.Errorf("radio: serial read: %w", err)
		}
		if got == 0 {
			time.Sleep(PollInterval)
			continue
		}
		read += got
	}

	return frame, 0, nil
}

func (s *Serial) SetStandby() error {
	return nil
}

func (s *Serial) GetTemperature() (float64, error) {
	return s.temp, nil
}
