// Package viewport computes a representative center and zoom for a marker
// set, used to frame static overview imagery. The centroid is spherical and
// the longitude span is wraparound-aware, so marker sets straddling the
// antimeridian frame correctly.
package viewport

import (
	"math"
	"sort"
)

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Options tunes overview framing.
type Options struct {
	Width  int // target image width in px
	Height int // target image height in px

	MinZoom  float64
	MaxZoom  float64
	ZoomBias float64 // added after the span-derived zoom for a closer view

	// TrimThreshold is the marker count above which percentile trimming
	// kicks in.
	TrimThreshold int

	// Anchor, when set, overrides the rendered center. The computed
	// centroid is still reported on the Overview so callers can tell the
	// two apart.
	Anchor *LatLng
}

// DefaultOptions are tuned for a 1200x630 social card.
func DefaultOptions() Options {
	return Options{
		Width:         1200,
		Height:        630,
		MinZoom:       3,
		MaxZoom:       16,
		ZoomBias:      1,
		TrimThreshold: 6,
	}
}

// Overview is the framing result.
type Overview struct {
	Center   LatLng  `json:"center"`   // rendered center (anchor-overridable)
	Centroid LatLng  `json:"centroid"` // always the computed spherical centroid
	Zoom     float64 `json:"zoom"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

const tileSize = 256

// ComputeOverview frames the given markers. Empty input yields a world view
// centered on the null island at MinZoom; it never errors.
func ComputeOverview(markers []LatLng, opts Options) Overview {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		if opts.Width <= 0 {
			opts.Width = d.Width
		}
		if opts.Height <= 0 {
			opts.Height = d.Height
		}
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 16
	}
	if opts.MinZoom <= 0 {
		opts.MinZoom = 3
	}
	if opts.TrimThreshold <= 0 {
		opts.TrimThreshold = 6
	}

	ov := Overview{Width: opts.Width, Height: opts.Height, Zoom: opts.MinZoom}
	if len(markers) == 0 {
		if opts.Anchor != nil {
			ov.Center = *opts.Anchor
		}
		return ov
	}

	trimmed := trimOutliers(markers, opts.TrimThreshold)

	ov.Centroid = sphericalCentroid(trimmed)
	ov.Center = ov.Centroid
	if opts.Anchor != nil {
		ov.Center = *opts.Anchor
	}

	latSpan := latitudeSpan(trimmed)
	lngSpan := longitudeSpan(trimmed)

	// Slippy-map zoom per axis; the tighter axis dominates.
	latZoom := zoomForSpan(180, opts.Height, latSpan)
	lngZoom := zoomForSpan(360, opts.Width, lngSpan)
	zoom := math.Min(latZoom, lngZoom) + opts.ZoomBias
	ov.Zoom = clamp(zoom, opts.MinZoom, opts.MaxZoom)

	return ov
}

// trimOutliers keeps markers inside [p5, p95] on both axes once the set is
// large enough that extremes would warp the frame. If trimming removes
// everything the untrimmed set is used instead.
func trimOutliers(markers []LatLng, threshold int) []LatLng {
	if len(markers) <= threshold {
		return markers
	}

	lats := make([]float64, len(markers))
	lngs := make([]float64, len(markers))
	for i, m := range markers {
		lats[i] = m.Lat
		lngs[i] = m.Lng
	}
	sort.Float64s(lats)
	sort.Float64s(lngs)

	latLo, latHi := percentile(lats, 5), percentile(lats, 95)
	lngLo, lngHi := percentile(lngs, 5), percentile(lngs, 95)

	kept := make([]LatLng, 0, len(markers))
	for _, m := range markers {
		if m.Lat < latLo || m.Lat > latHi || m.Lng < lngLo || m.Lng > lngHi {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return markers
	}
	return kept
}

// percentile interpolates linearly between ranks of an already sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// sphericalCentroid averages positions as 3D unit vectors. A naive lat/lng
// mean misbehaves at the antimeridian; the vector mean does not.
func sphericalCentroid(markers []LatLng) LatLng {
	var x, y, z float64
	for _, m := range markers {
		latRad := m.Lat * math.Pi / 180
		lngRad := m.Lng * math.Pi / 180
		x += math.Cos(latRad) * math.Cos(lngRad)
		y += math.Cos(latRad) * math.Sin(lngRad)
		z += math.Sin(latRad)
	}
	n := float64(len(markers))
	x, y, z = x/n, y/n, z/n

	hyp := math.Sqrt(x*x + y*y)
	return LatLng{
		Lat: math.Atan2(z, hyp) * 180 / math.Pi,
		Lng: math.Atan2(y, x) * 180 / math.Pi,
	}
}

func latitudeSpan(markers []LatLng) float64 {
	minLat, maxLat := markers[0].Lat, markers[0].Lat
	for _, m := range markers[1:] {
		minLat = math.Min(minLat, m.Lat)
		maxLat = math.Max(maxLat, m.Lat)
	}
	return maxLat - minLat
}

// longitudeSpan finds the tightest angular span covering all longitudes:
// sort normalized (0-360) values, find the largest gap between neighbors
// (including the wrap gap), and the span is 360 minus that gap.
func longitudeSpan(markers []LatLng) float64 {
	if len(markers) == 1 {
		return 0
	}
	lngs := make([]float64, len(markers))
	for i, m := range markers {
		lngs[i] = math.Mod(m.Lng+360, 360)
	}
	sort.Float64s(lngs)

	largestGap := 360 - lngs[len(lngs)-1] + lngs[0]
	for i := 1; i < len(lngs); i++ {
		if gap := lngs[i] - lngs[i-1]; gap > largestGap {
			largestGap = gap
		}
	}
	return 360 - largestGap
}

// zoomForSpan is the standard slippy-map fit: how far in can we zoom before
// angularDiff degrees no longer fit in dimension pixels.
func zoomForSpan(worldSpan float64, dimension int, angularDiff float64) float64 {
	if angularDiff <= 0 {
		return math.Inf(1) // degenerate span: clamp decides
	}
	return math.Log2(worldSpan * float64(dimension) / (tileSize * angularDiff))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
