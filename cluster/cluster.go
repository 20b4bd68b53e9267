// Package cluster groups nearby job markers into map clusters. The marker
// set is indexed once per dataset refresh; clustering is recomputed per
// viewport (zoom + bounds) request and is a pure function of its inputs.
package cluster

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/stapply-ai/jobmap/record"
)

// Marker is one renderable job position. The record is shared, read-only.
type Marker struct {
	ID     uint32
	Lat    float64
	Lng    float64
	Record *record.JobRecord
}

// Cluster is a transient viewport-dependent grouping of markers. A count of
// 1 is just an unclustered marker.
type Cluster struct {
	ID      uint32
	Lat     float64
	Lng     float64
	Count   int
	Members []Marker
}

// Bounds is a lat/lng axis-aligned box.
type Bounds struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// Extend expands bounds to include another position.
func (b *Bounds) Extend(lat, lng float64) {
	b.MinLat = math.Min(b.MinLat, lat)
	b.MinLng = math.Min(b.MinLng, lng)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MaxLng = math.Max(b.MaxLng, lng)
}

// Contains reports whether the position falls inside the box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// World covers every valid coordinate.
func World() Bounds {
	return Bounds{MinLat: -90, MinLng: -180, MaxLat: 90, MaxLng: 180}
}

// Options tunes clustering behavior.
type Options struct {
	MinZoom int
	MaxZoom int

	// BaseRadiusKm is the clustering radius at BaseZoom; it halves with
	// every zoom step so higher zoom never produces larger clusters.
	BaseRadiusKm float64
	BaseZoom     int

	// NoClusterZoom disables clustering entirely at and above this zoom.
	// A rendering decision for street-level crispness, not a shortcut.
	NoClusterZoom int

	// NodeSize is the KD-tree leaf size.
	NodeSize int
}

// DefaultOptions validates and fills in option defaults.
func DefaultOptions(options Options) Options {
	if options.MinZoom < 0 {
		options.MinZoom = 0
	}
	if options.MaxZoom <= 0 {
		options.MaxZoom = 16
	}
	if options.BaseRadiusKm <= 0 {
		options.BaseRadiusKm = 50
	}
	if options.NoClusterZoom <= 0 {
		options.NoClusterZoom = 10
	}
	if options.NodeSize <= 0 {
		options.NodeSize = 64
	}
	if options.MinZoom > options.MaxZoom {
		options.MinZoom = options.MaxZoom
	}
	if options.MaxZoom > 16 {
		options.MaxZoom = 16
	}
	return options
}

// RadiusKm is the clustering radius at the given zoom: BaseRadiusKm at
// BaseZoom, halving per step, 0 at and above NoClusterZoom. Monotonically
// non-increasing in zoom.
func (o Options) RadiusKm(zoom int) float64 {
	if zoom >= o.NoClusterZoom {
		return 0
	}
	return o.BaseRadiusKm / math.Pow(2, float64(zoom-o.BaseZoom))
}

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two positions.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// MarkersFromRecords wraps normalized records as markers. IDs are assigned
// by position, so marker order (and therefore clustering order) follows
// dataset order.
func MarkersFromRecords(records []record.JobRecord) []Marker {
	markers := make([]Marker, len(records))
	for i := range records {
		markers[i] = Marker{
			ID:     uint32(i + 1),
			Lat:    records[i].Lat,
			Lng:    records[i].Lng,
			Record: &records[i],
		}
	}
	return markers
}

// ClusterMarkers partitions markers into clusters at the given zoom: each
// yet-unclaimed marker, in input order, absorbs every other unclaimed
// marker within the zoom's radius of itself. Every marker lands in exactly
// one cluster; at or above NoClusterZoom every marker is a singleton.
func ClusterMarkers(markers []Marker, zoom int, options Options) []Cluster {
	options = DefaultOptions(options)
	radius := options.RadiusKm(zoom)

	clusters := make([]Cluster, 0, len(markers))
	if radius <= 0 {
		for _, m := range markers {
			clusters = append(clusters, singleton(m))
		}
		return clusters
	}

	claimed := make([]bool, len(markers))
	for i, anchor := range markers {
		if claimed[i] {
			continue
		}
		claimed[i] = true

		members := []Marker{anchor}
		for j := i + 1; j < len(markers); j++ {
			if claimed[j] {
				continue
			}
			other := markers[j]
			if HaversineKm(anchor.Lat, anchor.Lng, other.Lat, other.Lng) <= radius {
				claimed[j] = true
				members = append(members, other)
			}
		}

		if len(members) == 1 {
			clusters = append(clusters, singleton(anchor))
			continue
		}
		clusters = append(clusters, makeCluster(members))
	}

	return clusters
}

func singleton(m Marker) Cluster {
	return Cluster{
		ID:      m.ID,
		Lat:     m.Lat,
		Lng:     m.Lng,
		Count:   1,
		Members: []Marker{m},
	}
}

// makeCluster centers a multi-member cluster on the centroid of its members.
func makeCluster(members []Marker) Cluster {
	var sumLat, sumLng float64
	for _, m := range members {
		sumLat += m.Lat
		sumLng += m.Lng
	}
	n := float64(len(members))
	return Cluster{
		ID:      uuid.New().ID(),
		Lat:     sumLat / n,
		Lng:     sumLng / n,
		Count:   len(members),
		Members: members,
	}
}

// KDNode is one node of the marker index. Leaves cover a contiguous marker
// range; interior nodes split on alternating axes at the median.
type KDNode struct {
	MarkerIdx int32 // median marker for interior nodes, range start for leaves
	Count     int32 // leaf range length; 1 for interior nodes
	Left      int32
	Right     int32
	Axis      uint8
}

// MarkerTree is a KD-tree over the full marker set, built once per dataset
// refresh and queried per viewport change.
type MarkerTree struct {
	Nodes    []KDNode
	Markers  []Marker
	NodeSize int
	Bounds   Bounds
}

// NewMarkerTree copies markers and builds the index.
func NewMarkerTree(markers []Marker, nodeSize int) *MarkerTree {
	if nodeSize <= 0 {
		nodeSize = 64
	}
	tree := &MarkerTree{
		Nodes:    make([]KDNode, 0, 2*len(markers)),
		Markers:  make([]Marker, len(markers)),
		NodeSize: nodeSize,
	}
	copy(tree.Markers, markers)

	bounds := Bounds{
		MinLat: math.Inf(1), MinLng: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLng: math.Inf(-1),
	}
	for _, m := range markers {
		bounds.Extend(m.Lat, m.Lng)
	}
	tree.Bounds = bounds

	if len(markers) > 0 {
		tree.buildNodes(0, len(markers)-1, 0)
	}
	return tree
}

func (t *MarkerTree) buildNodes(start, end, depth int) int32 {
	if start > end {
		return -1
	}

	nodeIdx := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, KDNode{})

	if end-start <= t.NodeSize {
		t.Nodes[nodeIdx] = KDNode{
			MarkerIdx: int32(start),
			Count:     int32(end - start + 1),
			Left:      -1,
			Right:     -1,
		}
		return nodeIdx
	}

	axis := depth % 2
	median := (start + end) / 2
	sortMarkersRange(t.Markers[start:end+1], axis)

	left := t.buildNodes(start, median-1, depth+1)
	right := t.buildNodes(median+1, end, depth+1)

	t.Nodes[nodeIdx] = KDNode{
		MarkerIdx: int32(median),
		Count:     1,
		Left:      left,
		Right:     right,
		Axis:      uint8(axis),
	}
	return nodeIdx
}

func sortMarkersRange(markers []Marker, axis int) {
	if axis == 0 {
		sort.Slice(markers, func(i, j int) bool {
			return markers[i].Lng < markers[j].Lng
		})
	} else {
		sort.Slice(markers, func(i, j int) bool {
			return markers[i].Lat < markers[j].Lat
		})
	}
}

// Range returns every marker inside bounds, in tree order. Tree order is
// deterministic for a given dataset, which keeps clustering stable across
// identical viewport requests.
func (t *MarkerTree) Range(b Bounds) []Marker {
	if len(t.Nodes) == 0 {
		return nil
	}
	var out []Marker
	t.rangeSearch(0, b, &out)
	return out
}

func (t *MarkerTree) rangeSearch(nodeIdx int32, b Bounds, out *[]Marker) {
	if nodeIdx < 0 || int(nodeIdx) >= len(t.Nodes) {
		return
	}
	node := t.Nodes[nodeIdx]

	// Leaf: scan the covered range.
	if node.Left == -1 && node.Right == -1 {
		end := int(node.MarkerIdx + node.Count)
		for i := int(node.MarkerIdx); i < end; i++ {
			m := t.Markers[i]
			if b.Contains(m.Lat, m.Lng) {
				*out = append(*out, m)
			}
		}
		return
	}

	median := t.Markers[node.MarkerIdx]
	if b.Contains(median.Lat, median.Lng) {
		*out = append(*out, median)
	}

	var medianVal, lo, hi float64
	if node.Axis == 0 {
		medianVal, lo, hi = median.Lng, b.MinLng, b.MaxLng
	} else {
		medianVal, lo, hi = median.Lat, b.MinLat, b.MaxLat
	}
	if lo <= medianVal {
		t.rangeSearch(node.Left, b, out)
	}
	if hi >= medianVal {
		t.rangeSearch(node.Right, b, out)
	}
}

// Clusters is the viewport recomputation entry point: range-query the
// visible subset, then partition it at the given zoom. Full recomputation
// per call; marker counts are bounded, not millions.
func (t *MarkerTree) Clusters(b Bounds, zoom int, options Options) []Cluster {
	return ClusterMarkers(t.Range(b), zoom, options)
}
