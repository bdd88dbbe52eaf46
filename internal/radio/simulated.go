package radio

import (
	"os"
	"time"

	"github.com/creack/pty"
)

// Simulated is a loopback radio backed by a pty pair: Transmit writes to
// the master side, and CheckForPacket reads those frames back from the
// slave side in the order they were written, so the full serial protocol stack can be
// exercised without real hardware (spec.md §6 "--simulate"). Grounded on
// the teacher's dependency on github.com/creack/pty, never actually wired
// to anything in the copied teacher tree.
type Simulated struct {
	master *os.File
	slave  *os.File
}

// NewSimulated constructs an unopened simulated radio.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Init() error {
	master, slave, err := pty.Open()
	if err != nil {
		return err
	}
	s.master = master
	s.slave = slave
	return nil
}

func (s *Simulated) Close() error {
	if s.slave != nil {
		_ = s.slave.Close()
	}
	if s.master != nil {
		return s.master.Close()
	}
	return nil
}

// Transmit writes frame, length-prefixed, to the master side; a peer
// reading the slave side (e.g. a test harness standing in for the other
// station) sees exactly what a real serial link would deliver.
func (s *Simulated) Transmit(frame []byte) (bool, error) {
	if s.master == nil {
		return false, errNotOpen
	}
	header := []byte{byte(len(frame) >> 8), byte(len(frame))}
	n, err := s.master.Write(append(header, frame...))
	if err != nil {
		return false, err
	}
	return n == len(header)+len(frame), nil
}

func (s *Simulated) ReceiveContinuous() error {
	return nil
}

// CheckForPacket reads one length-prefixed frame from the slave side if
// the peer has written one, non-blocking from the caller's perspective
// (it returns promptly with nil if nothing is queued).
func (s *Simulated) CheckForPacket() ([]byte, int16, error) {
	if s.slave == nil {
		return nil, 0, errNotOpen
	}

	header := make([]byte, 2)
	// A short read deadline keeps the poll from blocking when nothing is
	// queued; it is cleared before the frame body is read.
	_ = s.slave.SetReadDeadline(time.Now().Add(PollInterval))
	n, err := s.slave.Read(header)
	_ = s.slave.SetReadDeadline(time.Time{})
	if err != nil || n < 2 {
		return nil, 0, nil
	}

	length := int(header[0])<<8 | int(header[1])
	frame := make([]byte, length)
	read := 0
	for read < length {
		got, err := s.slave.Read(frame[read:])
		if err != nil {
			return nil, 0, err
		}
		read += got
	}

	return frame, 0, nil
}

func (s *Simulated) SetStandby() error {
	return nil
}

func (s *Simulated) GetTemperature() (float64, error) {
	return 20.0, nil
}
