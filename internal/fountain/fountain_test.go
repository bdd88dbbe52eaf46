package fountain

import (
	"hash/crc32"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBlob(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b) //nolint:errcheck // math/rand.Rand.Read never errors
	return b
}

// Testable property 5: for a fixed (blob, symbol_size, base_seed), LT's
// generate_symbol(t) is the same across independently constructed
// encoders (standing in for "across implementations and restarts").
func TestLTEncoderDeterministic(t *testing.T) {
	blob := randomBlob(2000, 1)

	e1, err := NewEncoder(LT, blob, 200, 0)
	require.NoError(t, err)
	e2, err := NewEncoder(LT, blob, 200, 0)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		id1, data1 := e1.GenerateSymbol()
		id2, data2 := e2.GenerateSymbol()
		assert.Equal(t, id1, id2)
		assert.Equal(t, data1, data2)
	}
}

func TestLTEncoderIDsContiguous(t *testing.T) {
	e, err := NewEncoder(LT, randomBlob(1000, 2), 200, 0)
	require.NoError(t, err)

	for i := uint32(0); i < 20; i++ {
		id, _ := e.GenerateSymbol()
		assert.Equal(t, i, id)
	}
}

// Testable property 6 / scenario S2: LT decodes with near-certain
// probability once ceil(1.25*K) symbols are collected, for a range of K.
func TestLTDecodeAtThreshold(t *testing.T) {
	for _, k := range []int{10, 50, 200} {
		k := k
		t.Run(intToName(k), func(t *testing.T) {
			symbolSize := 64
			blob := randomBlob(k*symbolSize, int64(k))

			enc, err := NewEncoder(LT, blob, symbolSize, 0)
			require.NoError(t, err)

			successes := 0
			const trials = 20
			needed := (k*125 + 99) / 100 // ceil(1.25*K)

			for trial := 0; trial < trials; trial++ {
				dec := NewDecoder(LT, int(enc.NumSourceSymbols()), symbolSize, len(blob))
				complete := false
				for i := 0; i < needed*3 && !complete; i++ {
					id, data := enc.GenerateSymbol()
					complete = dec.AddSymbol(id, data)
				}
				if complete && crc32.ChecksumIEEE(dec.Decoded()) == crc32.ChecksumIEEE(blob) {
					successes++
				}
				enc, err = NewEncoder(LT, blob, symbolSize, 0)
				require.NoError(t, err)
			}

			assert.GreaterOrEqual(t, successes, trials*99/100-1, "expected near-certain decode success at K=%d", k)
		})
	}
}

func intToName(k int) string {
	switch k {
	case 10:
		return "K=10"
	case 50:
		return "K=50"
	default:
		return "K=200"
	}
}

// Scenario S2 exactly: blob of 10000 bytes, symbol_size=200, K=50, fed
// symbols 0..67 in order.
func TestScenarioS2(t *testing.T) {
	blob := randomBlob(10_000, 42)

	enc, err := NewEncoder(LT, blob, 200, 0)
	require.NoError(t, err)
	require.EqualValues(t, 50, enc.NumSourceSymbols())

	dec := NewDecoder(LT, 50, 200, len(blob))

	var complete bool
	for i := 0; i <= 67; i++ {
		id, data := enc.GenerateSymbol()
		complete = dec.AddSymbol(id, data)
	}

	require.True(t, complete)
	assert.Equal(t, crc32.ChecksumIEEE(blob), crc32.ChecksumIEEE(dec.Decoded()))
}

// Testable property 8 / scenario S3: idempotent symbol ingestion.
func TestDuplicateSymbolIdempotent(t *testing.T) {
	blob := randomBlob(2000, 3)
	enc, err := NewEncoder(LT, blob, 200, 0)
	require.NoError(t, err)

	dec1 := NewDecoder(LT, int(enc.NumSourceSymbols()), 200, len(blob))
	dec2 := NewDecoder(LT, int(enc.NumSourceSymbols()), 200, len(blob))

	symbols := make([]struct {
		id   uint32
		data []byte
	}, 0, 60)
	for i := 0; i < 60; i++ {
		id, data := enc.GenerateSymbol()
		symbols = append(symbols, struct {
			id   uint32
			data []byte
		}{id, data})
	}

	var c1, c2 bool
	for _, s := range symbols {
		c1 = dec1.AddSymbol(s.id, s.data)
	}
	for _, s := range symbols {
		dec2.AddSymbol(s.id, s.data)
		c2 = dec2.AddSymbol(s.id, s.data) // feed each symbol twice
	}

	assert.Equal(t, c1, c2)
	assert.Equal(t, dec1.Decoded(), dec2.Decoded())
}

func TestRaptorQRoundTrip(t *testing.T) {
	blob := randomBlob(5000, 7)
	enc, err := NewEncoder(RaptorQ, blob, 200, 0)
	require.NoError(t, err)

	dec := NewDecoder(RaptorQ, int(enc.NumSourceSymbols()), 200, len(blob))

	var complete bool
	for i := 0; i < int(enc.RecommendedCount(0)); i++ {
		id, data := enc.GenerateSymbol()
		complete = dec.AddSymbol(id, data)
		if complete {
			break
		}
	}

	require.True(t, complete)
	assert.Equal(t, crc32.ChecksumIEEE(blob), crc32.ChecksumIEEE(dec.Decoded()))
}

func TestRecommendedCount(t *testing.T) {
	enc, err := NewEncoder(LT, randomBlob(1000, 9), 200, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, enc.RecommendedCount(25)) // K=5, ceil(5*1.25)=7
}
