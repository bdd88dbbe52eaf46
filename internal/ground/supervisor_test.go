package ground

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pingpongshow/raptorhab/internal/fountain"
	"github.com/pingpongshow/raptorhab/internal/protocol"
)

func TestSupervisorTickDetectsNoSignal(t *testing.T) {
	engine := NewEngine(EngineConfig{Codec: fountain.LT}, nil, nil)
	d := NewDispatcher(engine, nil, nil, nil)
	s := NewSupervisor(SupervisorConfig{SweepInterval: time.Second}, d, nil)

	start := time.Now()
	d.Handle(mustTelemetryFrame(t), 0, start)
	assert.False(t, s.NoSignal())

	s.tick(start.Add(45 * time.Second))
	assert.True(t, s.NoSignal())
}

func TestSupervisorTickRecoversSignal(t *testing.T) {
	engine := NewEngine(EngineConfig{Codec: fountain.LT}, nil, nil)
	d := NewDispatcher(engine, nil, nil, nil)
	s := NewSupervisor(SupervisorConfig{SweepInterval: time.Second}, d, nil)

	start := time.Now()
	s.tick(start.Add(60 * time.Second))
	assert.True(t, s.NoSignal())

	d.Handle(mustTelemetryFrame(t), 0, start.Add(61*time.Second))
	s.tick(start.Add(62 * time.Second))
	assert.False(t, s.NoSignal())
}

func mustTelemetryFrame(t *testing.T) []byte {
	t.Helper()
	tel := protocol.Telemetry{Lat: 10, Lon: 20}
	frame, err := protocol.Build(protocol.PacketTelemetry, 1, tel.Encode(), 0)
	if err != nil {
		t.Fatalf("building telemetry frame: %v", err)
	}
	return frame
}
