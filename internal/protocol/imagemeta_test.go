package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageMetaRoundTrip(t *testing.T) {
	m := ImageMeta{
		ImageID:          42,
		TotalSize:        10_000,
		SymbolSize:       200,
		NumSourceSymbols: 50,
		Checksum:         0xDEADBEEF,
		Width:            640,
		Height:           480,
		TimestampUnix:    1_700_000_000,
	}

	encoded := m.Encode()
	require.Len(t, encoded, ImageMetaPayloadSize)

	decoded, err := DecodeImageMeta(encoded)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
	assert.True(t, m.Equal(decoded))
}

func TestImageDataRoundTrip(t *testing.T) {
	d := ImageData{ImageID: 7, SymbolID: 123456, SymbolData: []byte("some-symbol-bytes")}

	decoded, err := DecodeImageData(d.Encode())
	require.NoError(t, err)
	assert.Equal(t, d, decoded)
}

func TestImageMetaShortPayload(t *testing.T) {
	_, err := DecodeImageMeta(make([]byte, 5))
	require.Error(t, err)
	var shortErr *ShortPayloadError
	assert.ErrorAs(t, err, &shortErr)
}
