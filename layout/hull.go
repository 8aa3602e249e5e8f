package layout

import (
	"math"

	"github.com/quartercastle/vector"
	"golang.org/x/exp/slices"
)

// smallest clearance used by SmoothHull, keeps degenerate hulls visible
const minHullPadding = 1.0

// ConvexHull returns the extreme points of points in counter-clockwise order
// (monotone chain). Duplicate, collinear and NaN points are dropped, so
// fewer than 3 distinct points, or only collinear ones, yield a hull of 0, 1
// or 2 vertices.
func ConvexHull(points []vector.Vector) []vector.Vector {
	pts := make([]vector.Vector, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X()) || math.IsNaN(p.Y()) {
			continue
		}
		pts = append(pts, vector.Vector{p.X(), p.Y()})
	}
	slices.SortFunc(pts, func(a, b vector.Vector) int {
		switch {
		case a[0] < b[0] || (a[0] == b[0] && a[1] < b[1]):
			return -1
		case a[0] == b[0] && a[1] == b[1]:
			return 0
		}
		return 1
	})
	uniq := pts[:0]
	for _, p := range pts {
		if len(uniq) == 0 || p[0] != uniq[len(uniq)-1][0] || p[1] != uniq[len(uniq)-1][1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}
	hull := make([]vector.Vector, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// the last point repeats the first one
	return hull[:len(hull)-1]
}

// cross is the z component of (a - o) x (b - o), positive for a
// counter-clockwise turn o -> a -> b.
func cross(o, a, b vector.Vector) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// SmoothHull pads hull by padding units and rounds its corners, yielding a
// closed curve whose last point equals the first one. The result is the
// Minkowski sum of the hull with a regular polygon of `segments` sides that
// circumscribes a circle of radius padding: every input point keeps at
// least padding clearance, the curve is convex and thus never intersects
// itself. A single point turns into a small circle, two points into a
// capsule. An empty hull yields an empty curve.
func SmoothHull(hull []vector.Vector, padding float64, segments int) []vector.Vector {
	if len(hull) == 0 {
		return []vector.Vector{}
	}
	segments = max(segments, 3)
	padding = max(padding, minHullPadding)
	r := padding / math.Cos(math.Pi/float64(segments))
	offsets := make([]vector.Vector, segments)
	for k := range offsets {
		angle := 2 * math.Pi * float64(k) / float64(segments)
		offsets[k] = vector.Vector{r * math.Cos(angle), r * math.Sin(angle)}
	}
	pts := make([]vector.Vector, 0, len(hull)*segments)
	for _, p := range hull {
		for _, o := range offsets {
			pts = append(pts, p.Add(o))
		}
	}
	curve := ConvexHull(pts)
	if len(curve) == 0 {
		return curve
	}
	return append(curve, vector.Vector{curve[0][0], curve[0][1]})
}

// CategoryHulls computes the smoothed hull of every category that has at
// least one node.
func CategoryHulls(nodes []*Node, padding float64, segments int) map[int][]vector.Vector {
	byCategory := map[int][]vector.Vector{}
	for _, node := range nodes {
		if len(node.Pos) < 2 {
			continue
		}
		byCategory[node.Category] = append(byCategory[node.Category], node.Pos)
	}
	hulls := make(map[int][]vector.Vector, len(byCategory))
	for category, points := range byCategory {
		hulls[category] = SmoothHull(ConvexHull(points), padding, segments)
	}
	return hulls
}
