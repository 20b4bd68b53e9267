package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeOverviewEmpty(t *testing.T) {
	ov := ComputeOverview(nil, DefaultOptions())
	require.Equal(t, 3.0, ov.Zoom)
	require.Equal(t, LatLng{}, ov.Center)
}

func TestComputeOverviewSingleMarker(t *testing.T) {
	ov := ComputeOverview([]LatLng{{Lat: 37.7749, Lng: -122.4194}}, DefaultOptions())
	require.InDelta(t, 37.7749, ov.Center.Lat, 1e-6)
	require.InDelta(t, -122.4194, ov.Center.Lng, 1e-6)
	// Degenerate span clamps to max zoom.
	require.Equal(t, 16.0, ov.Zoom)
}

func TestSphericalCentroidAntimeridian(t *testing.T) {
	// Two markers either side of the date line: the centroid must sit near
	// ±180, not near 0 as a naive mean would put it.
	markers := []LatLng{
		{Lat: 0, Lng: 179},
		{Lat: 0, Lng: -179},
	}
	c := sphericalCentroid(markers)
	require.InDelta(t, 0, c.Lat, 1e-6)
	require.InDelta(t, 180, math.Abs(c.Lng), 1e-6)
}

func TestLongitudeSpanWraparound(t *testing.T) {
	markers := []LatLng{
		{Lat: 0, Lng: 178},
		{Lat: 0, Lng: -178},
	}
	span := longitudeSpan(markers)
	// True separation is 4 degrees, not ~356.
	require.InDelta(t, 4, span, 1e-9)
}

func TestLongitudeSpanNoWrap(t *testing.T) {
	markers := []LatLng{
		{Lat: 0, Lng: -122},
		{Lat: 0, Lng: -74},
		{Lat: 0, Lng: -90},
	}
	require.InDelta(t, 48, longitudeSpan(markers), 1e-9)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.InDelta(t, 1.45, percentile(sorted, 5), 1e-9)
	require.InDelta(t, 9.55, percentile(sorted, 95), 1e-9)
	require.InDelta(t, 5.5, percentile(sorted, 50), 1e-9)
}

func TestTrimOutliers(t *testing.T) {
	// A tight cluster plus one far outlier, above the trim threshold.
	markers := []LatLng{
		{37.77, -122.41}, {37.78, -122.42}, {37.76, -122.40},
		{37.79, -122.43}, {37.75, -122.39}, {37.77, -122.41},
		{37.78, -122.42},
		{-33.86, 151.21}, // Sydney
	}
	kept := trimOutliers(markers, 6)
	require.Less(t, len(kept), len(markers))
	for _, m := range kept {
		require.Greater(t, m.Lat, 0.0, "outlier should be trimmed")
	}
}

func TestTrimOutliersBelowThreshold(t *testing.T) {
	markers := []LatLng{{1, 1}, {2, 2}}
	require.Equal(t, markers, trimOutliers(markers, 6))
}

func TestTrimOutliersFallback(t *testing.T) {
	// Every marker is a strict extreme on one axis: the lat percentiles trim
	// the first and last, the lng percentiles trim the middle two. Trimming
	// would empty the set, so the untrimmed set comes back instead.
	markers := []LatLng{
		{Lat: 0, Lng: 50},
		{Lat: 10, Lng: 0},
		{Lat: 20, Lng: 100},
		{Lat: 30, Lng: 60},
	}
	require.Equal(t, markers, trimOutliers(markers, 3))
}

func TestComputeOverviewZoomMonotonicWithSpread(t *testing.T) {
	tight := []LatLng{
		{37.77, -122.41}, {37.78, -122.42},
	}
	wide := []LatLng{
		{37.77, -122.41}, {40.71, -74.00},
	}
	opts := DefaultOptions()
	tightOv := ComputeOverview(tight, opts)
	wideOv := ComputeOverview(wide, opts)
	require.Greater(t, tightOv.Zoom, wideOv.Zoom)
}

func TestComputeOverviewAnchorOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.Anchor = &LatLng{Lat: 37.7749, Lng: -122.4194}
	markers := []LatLng{{40.71, -74.00}, {40.72, -74.01}}

	ov := ComputeOverview(markers, opts)
	// Rendered center is the anchor; the computed centroid stays observable.
	require.Equal(t, *opts.Anchor, ov.Center)
	require.InDelta(t, 40.715, ov.Centroid.Lat, 0.01)
	require.InDelta(t, -74.005, ov.Centroid.Lng, 0.01)
}

func TestComputeOverviewZoomClamped(t *testing.T) {
	// Markers spread across the whole globe: zoom clamps at the minimum.
	markers := []LatLng{
		{-60, -150}, {60, 150}, {0, 0}, {30, -90}, {-30, 90},
	}
	ov := ComputeOverview(markers, DefaultOptions())
	require.GreaterOrEqual(t, ov.Zoom, 3.0)
	require.LessOrEqual(t, ov.Zoom, 16.0)
}
