package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// Frame is a parsed on-air packet. It is built once by Build and consumed
// once by Parse; nothing mutates a Frame after construction.
type Frame struct {
	Type    PacketType
	Seq     uint16
	Flags   Flags
	Payload []byte
}

// crcTable is the IEEE 802.3 polynomial (0xEDB88320), the same table the
// standard library's crc32.ChecksumIEEE uses. The spec pins this exact
// polynomial, so the table is named explicitly rather than relying on the
// package-level default staying IEEE.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Build assembles an on-air frame: sync || type || seq_be || flags ||
// payload || crc32_be. It fails with ErrPayloadTooLarge if payload exceeds
// MaxPayload (243 bytes).
func Build(typ PacketType, seq uint16, payload []byte, flags Flags) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, 0, len(Sync)+headerSize+len(payload)+crcSize)
	buf = append(buf, Sync...)
	buf = append(buf, byte(typ))
	buf = binary.BigEndian.AppendUint16(buf, seq)
	buf = append(buf, byte(flags))
	buf = append(buf, payload...)

	crc := crc32.Checksum(buf, crcTable)
	buf = binary.BigEndian.AppendUint32(buf, crc)

	return buf, nil
}

// Parse validates and decodes a candidate frame. It tolerates trailing
// padding bytes after the declared packet, since physical-layer drivers
// commonly hand back a fixed-size receive buffer.
//
// symbolSize is the session's configured fountain symbol size, used to
// determine how many trailing bytes belong to an IMAGE_DATA payload; pass
// 0 if unknown, in which case the payload runs to the end of the buffer
// (minus CRC).
func Parse(raw []byte, symbolSize int) (Frame, error) {
	if len(raw) < len(Sync)+headerSize+crcSize {
		return Frame{}, ErrShortFrame
	}

	if string(raw[:len(Sync)]) != Sync {
		return Frame{}, ErrBadSync
	}

	typ := PacketType(raw[len(Sync)])
	seq := binary.BigEndian.Uint16(raw[len(Sync)+1:])
	flags := Flags(raw[len(Sync)+3])

	payloadLen, err := expectedPayloadLen(typ, len(raw)-len(Sync)-headerSize-crcSize, symbolSize)
	if err != nil {
		// The declared type does not fit this buffer. If the trailing four
		// bytes are not a valid CRC of everything before them, the frame is
		// corrupt (e.g. a flipped type bit) and is reported as such.
		tail := len(raw) - crcSize
		if binary.BigEndian.Uint32(raw[tail:]) != crc32.Checksum(raw[:tail], crcTable) {
			return Frame{}, ErrBadCRC
		}
		return Frame{}, err
	}

	end := len(Sync) + headerSize + payloadLen
	if len(raw) < end+crcSize {
		return Frame{}, ErrShortFrame
	}

	want := binary.BigEndian.Uint32(raw[end : end+crcSize])
	got := crc32.Checksum(raw[:end], crcTable)
	if want != got {
		return Frame{}, ErrBadCRC
	}

	payload := make([]byte, payloadLen)
	copy(payload, raw[len(Sync)+headerSize:end])

	return Frame{Type: typ, Seq: seq, Flags: flags, Payload: payload}, nil
}

// expectedPayloadLen determines how many payload bytes to consume for a
// given packet type, per the shapes in spec.md §3. residual is the number
// of bytes available after the header and before any trailing padding;
// for TEXT_MSG and unknown-symbol-size IMAGE_DATA the whole residual is
// treated as payload.
func expectedPayloadLen(typ PacketType, residual int, symbolSize int) (int, error) {
	switch typ {
	case PacketTelemetry:
		if residual < TelemetryPayloadSize {
			return 0, ErrShortFrame
		}
		return TelemetryPayloadSize, nil
	case PacketImageMeta:
		if residual < ImageMetaPayloadSize {
			return 0, ErrShortFrame
		}
		return ImageMetaPayloadSize, nil
	case PacketCmdAck:
		if residual < CmdAckPayloadSize {
			return 0, ErrShortFrame
		}
		return CmdAckPayloadSize, nil
	case PacketImageData:
		if symbolSize > 0 {
			want := imageDataHeaderSize + symbolSize
			if residual < want {
				return 0, ErrShortFrame
			}
			return want, nil
		}
		return residual, nil
	case PacketTextMsg:
		return residual, nil
	default:
		return 0, ErrUnknownType
	}
}
