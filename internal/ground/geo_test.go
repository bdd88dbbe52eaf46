package ground

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichNoFixReturnsZeroValue(t *testing.T) {
	station := GroundStation{Lat: 47.6, Lon: -122.3}
	fix := station.Enrich(0, 0)
	assert.Zero(t, fix.DistanceMeters)
	assert.Zero(t, fix.BearingDeg)
	assert.False(t, fix.UTMValid)
}

func TestEnrichSamePointIsZeroDistance(t *testing.T) {
	station := GroundStation{Lat: 47.6, Lon: -122.3}
	fix := station.Enrich(47.6, -122.3)
	assert.InDelta(t, 0, fix.DistanceMeters, 1.0)
}

func TestEnrichDueNorthBearing(t *testing.T) {
	station := GroundStation{Lat: 47.0, Lon: -122.0}
	fix := station.Enrich(48.0, -122.0)
	assert.InDelta(t, 0, fix.BearingDeg, 1.0)
	assert.Greater(t, fix.DistanceMeters, 0.0)
}

func TestEnrichDueEastBearing(t *testing.T) {
	station := GroundStation{Lat: 0, Lon: 0}
	fix := station.Enrich(0, 1)
	assert.InDelta(t, 90, fix.BearingDeg, 1.0)
}

func TestEnrichValidUTM(t *testing.T) {
	station := GroundStation{Lat: 47.6, Lon: -122.3}
	fix := station.Enrich(47.65, -122.31)
	assert.True(t, fix.UTMValid)
}
