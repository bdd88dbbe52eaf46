package protocol

import "encoding/binary"

// ImageMeta is the decoded IMAGE_META payload (22 bytes, spec.md §3). For
// any given ImageID, SymbolSize, NumSourceSymbols, TotalSize and Checksum
// are immutable once the first META was emitted on-air.
type ImageMeta struct {
	ImageID          uint16
	TotalSize        uint32
	SymbolSize       uint16
	NumSourceSymbols uint16
	Checksum         uint32
	Width            uint16
	Height           uint16
	TimestampUnix    uint32
}

// Encode packs m into the fixed 22-byte IMAGE_META payload.
func (m ImageMeta) Encode() []byte {
	buf := make([]byte, 0, ImageMetaPayloadSize)
	buf = binary.BigEndian.AppendUint16(buf, m.ImageID)
	buf = binary.BigEndian.AppendUint32(buf, m.TotalSize)
	buf = binary.BigEndian.AppendUint16(buf, m.SymbolSize)
	buf = binary.BigEndian.AppendUint16(buf, m.NumSourceSymbols)
	buf = binary.BigEndian.AppendUint32(buf, m.Checksum)
	buf = binary.BigEndian.AppendUint16(buf, m.Width)
	buf = binary.BigEndian.AppendUint16(buf, m.Height)
	buf = binary.BigEndian.AppendUint32(buf, m.TimestampUnix)
	return buf
}

// DecodeImageMeta unpacks a 22-byte IMAGE_META payload.
func DecodeImageMeta(payload []byte) (ImageMeta, error) {
	if len(payload) < ImageMetaPayloadSize {
		return ImageMeta{}, &ShortPayloadError{Type: PacketImageMeta, Want: ImageMetaPayloadSize, Got: len(payload)}
	}

	var m ImageMeta
	m.ImageID = binary.BigEndian.Uint16(payload[0:2])
	m.TotalSize = binary.BigEndian.Uint32(payload[2:6])
	m.SymbolSize = binary.BigEndian.Uint16(payload[6:8])
	m.NumSourceSymbols = binary.BigEndian.Uint16(payload[8:10])
	m.Checksum = binary.BigEndian.Uint32(payload[10:14])
	m.Width = binary.BigEndian.Uint16(payload[14:16])
	m.Height = binary.BigEndian.Uint16(payload[16:18])
	m.TimestampUnix = binary.BigEndian.Uint32(payload[18:22])

	return m, nil
}

// Equal reports whether two ImageMeta values describe the same image in
// every field a reconstruction engine must treat as immutable.
func (m ImageMeta) Equal(o ImageMeta) bool {
	return m == o
}

// ImageData is the decoded IMAGE_DATA payload: image_id, symbol_id, and
// the symbol's raw bytes (either a fixed symbol_size LT symbol or an
// opaque, self-describing RaptorQ codec packet; see spec.md §3).
type ImageData struct {
	ImageID    uint16
	SymbolID   uint32
	SymbolData []byte
}

// Encode packs d into an IMAGE_DATA payload.
func (d ImageData) Encode() []byte {
	buf := make([]byte, 0, imageDataHeaderSize+len(d.SymbolData))
	buf = binary.BigEndian.AppendUint16(buf, d.ImageID)
	buf = binary.BigEndian.AppendUint32(buf, d.SymbolID)
	buf = append(buf, d.SymbolData...)
	return buf
}

// DecodeImageData unpacks an IMAGE_DATA payload.
func DecodeImageData(payload []byte) (ImageData, error) {
	if len(payload) < imageDataHeaderSize {
		return ImageData{}, &ShortPayloadError{Type: PacketImageData, Want: imageDataHeaderSize, Got: len(payload)}
	}

	var d ImageData
	d.ImageID = binary.BigEndian.Uint16(payload[0:2])
	d.SymbolID = binary.BigEndian.Uint32(payload[2:6])
	d.SymbolData = append([]byte(nil), payload[imageDataHeaderSize:]...)

	return d, nil
}
