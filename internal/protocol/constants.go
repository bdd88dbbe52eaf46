// Package protocol implements the on-air frame format shared by the
// payload and ground station: sync-word framing, packet type codes, the
// fixed telemetry and image-metadata payload layouts, and CRC-32 framing.
package protocol

// PacketType identifies the shape of a frame's payload (§3 of the spec).
type PacketType byte

const (
	PacketTelemetry PacketType = 0x00
	PacketImageMeta PacketType = 0x01
	PacketImageData PacketType = 0x02
	PacketTextMsg   PacketType = 0x03
	PacketCmdAck    PacketType = 0x10
	// 0x80-0x83 are reserved ground->air command codes. The core never
	// builds or parses them; see spec.md §9 Open Questions.
)

// Flags is the frame's 1-byte bitfield. RETRANSMIT and the command codes
// above are reserved for the (out-of-scope) command/ACK path; the core
// never inspects them.
type Flags byte

const (
	FlagNone       Flags = 0
	FlagUrgent     Flags = 1
	FlagRetransmit Flags = 2
	FlagLastPacket Flags = 4
	FlagCompressed Flags = 8
)

// FixType is the GPS fix quality carried in telemetry.
type FixType byte

const (
	FixNone FixType = 0
	Fix2D   FixType = 1
	Fix3D   FixType = 2
)

const (
	// Sync is the fixed 4-byte frame opener.
	Sync = "RAPT"

	headerSize = 1 + 2 + 1 // type + seq + flags
	crcSize    = 4

	// MaxPayload is the largest payload a single frame can carry.
	MaxPayload = 243

	// MaxFrame is the largest possible on-air frame.
	MaxFrame = len(Sync) + headerSize + MaxPayload + crcSize

	// TelemetryPayloadSize is the fixed size of a TELEMETRY payload.
	TelemetryPayloadSize = 36

	// ImageMetaPayloadSize is the fixed size of an IMAGE_META payload.
	ImageMetaPayloadSize = 22

	// CmdAckPayloadSize is the minimum size of a CMD_ACK payload.
	CmdAckPayloadSize = 4

	// imageDataHeaderSize is the image_id:u16 + symbol_id:u32 prefix of
	// an IMAGE_DATA payload, before the symbol bytes.
	imageDataHeaderSize = 2 + 4
)
