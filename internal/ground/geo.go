package ground

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// Fix is an enrichment of one telemetry sample's position: distance and
// bearing from the ground station, and the equivalent UTM coordinate.
// This supplements the distilled spec (SPEC_FULL.md §4.7, §12) — it is
// read-only reporting and never affects protocol or reconstruction
// semantics, matching original_source/RaptorHABGS_Python's bearing/distance
// enrichment that the distillation dropped.
type Fix struct {
	DistanceMeters float64
	BearingDeg     float64
	UTM            coordconv.UTMCoord
	UTMValid       bool
}

// GroundStation is the ground station's own fixed antenna location, used
// as the origin for distance/bearing computations.
type GroundStation struct {
	Lat, Lon float64
}

// earthRadiusMeters matches the mean radius convention s2's LatLng
// distance (an angle) is typically scaled by for terrestrial use.
const earthRadiusMeters = 6371008.8

// Enrich computes distance/bearing from the ground station to (lat, lon)
// and the point's UTM coordinate. lat==0 && lon==0 is treated as "no fix"
// per spec.md §3 and returns the zero Fix.
func (g GroundStation) Enrich(lat, lon float64) Fix {
	if lat == 0 && lon == 0 {
		return Fix{}
	}

	origin := s2.LatLngFromDegrees(g.Lat, g.Lon)
	point := s2.LatLngFromDegrees(lat, lon)

	angle := origin.Distance(point)
	distance := float64(angle) * earthRadiusMeters

	bearing := initialBearing(g.Lat, g.Lon, lat, lon)

	utmLatLng := s2.LatLng{Lat: s1.Angle(degToRad(lat)), Lng: s1.Angle(degToRad(lon))}
	utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(utmLatLng, 0)

	return Fix{
		DistanceMeters: distance,
		BearingDeg:     bearing,
		UTM:            utm,
		UTMValid:       err == nil,
	}
}

// initialBearing computes the forward azimuth in degrees [0, 360) from
// (lat1, lon1) to (lat2, lon2).
func initialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dLambda := degToRad(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	theta := math.Atan2(y, x)
	deg := radToDeg(theta)

	return math.Mod(deg+360, 360)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }
