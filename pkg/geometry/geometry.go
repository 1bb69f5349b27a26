// Package geometry computes planar areas of closed, possibly
// self-intersecting rings.
//
// The enclosed-area computation splits a ring's boundary at every
// self-intersection, rebuilds the resulting planar arrangement, and sums
// the areas of the simple polygons bounded by it. A figure eight therefore
// contributes both lobes instead of letting their signed areas cancel.
package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Point is a point in the plane.
type Point struct {
	X, Y float64
}

// quantum is the coordinate resolution used to merge vertices. Two points
// closer than this along both axes are treated as the same vertex.
const quantum = 1e-9

type vertexKey [2]int64

func keyOf(p Point) vertexKey {
	return vertexKey{int64(math.Round(p.X / quantum)), int64(math.Round(p.Y / quantum))}
}

func lessKey(a, b vertexKey) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// EnclosedArea treats points as a closed ring (the first point is appended
// as the last if the ring is open) and returns the total area enclosed by
// its boundary. Non-finite points are dropped. Fewer than three distinct
// points enclose nothing.
func EnclosedArea(points []Point) float64 {
	ring := sanitize(points)
	if len(ring) < 3 {
		return 0
	}
	if keyOf(ring[0]) != keyOf(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}

	segs := make([]segment, 0, len(ring)-1)
	for i := 0; i+1 < len(ring); i++ {
		segs = append(segs, segment{ring[i], ring[i+1]})
	}

	return floats.Sum(faceAreas(node(segs)))
}

// sanitize drops non-finite points and collapses consecutive duplicates.
func sanitize(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		if len(out) > 0 && keyOf(out[len(out)-1]) == keyOf(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

type segment struct {
	a, b Point
}

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// param locates p along s as a fraction of the segment, projected on the
// dominant axis. Only meaningful for points on (or very near) the segment.
func (s segment) param(p Point) float64 {
	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	if math.Abs(rx) >= math.Abs(ry) {
		return (p.X - s.a.X) / rx
	}
	return (p.Y - s.a.Y) / ry
}

func (s segment) at(u float64) Point {
	return Point{s.a.X + u*(s.b.X-s.a.X), s.a.Y + u*(s.b.Y-s.a.Y)}
}

// intersections returns the points where t meets s, including endpoints of
// a collinear overlap that fall inside s. Touching at shared endpoints is
// not reported; it does not require a split.
func (s segment) intersections(t segment) []Point {
	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	dx, dy := t.b.X-t.a.X, t.b.Y-t.a.Y
	qpx, qpy := t.a.X-s.a.X, t.a.Y-s.a.Y

	denom := cross(rx, ry, dx, dy)
	if denom == 0 {
		scale := math.Hypot(rx, ry) * math.Hypot(qpx, qpy)
		if math.Abs(cross(qpx, qpy, rx, ry)) > quantum*scale {
			return nil // parallel, disjoint
		}
		// collinear overlap: split s at t's endpoints when they fall inside
		var pts []Point
		for _, p := range []Point{t.a, t.b} {
			if u := s.param(p); u > 0 && u < 1 {
				pts = append(pts, p)
			}
		}
		return pts
	}

	u := cross(qpx, qpy, dx, dy) / denom
	v := cross(qpx, qpy, rx, ry) / denom
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return nil
	}
	return []Point{s.at(u)}
}

// node splits every segment at its intersections with the others, so the
// returned segments meet only at shared endpoints.
func node(segs []segment) []segment {
	out := make([]segment, 0, len(segs))
	for i, s := range segs {
		if keyOf(s.a) == keyOf(s.b) {
			continue
		}
		params := []float64{0, 1}
		for j, t := range segs {
			if i == j {
				continue
			}
			for _, p := range s.intersections(t) {
				if u := s.param(p); u > 0 && u < 1 {
					params = append(params, u)
				}
			}
		}
		sort.Float64s(params)
		for k := 0; k+1 < len(params); k++ {
			a, b := s.at(params[k]), s.at(params[k+1])
			if keyOf(a) != keyOf(b) {
				out = append(out, segment{a, b})
			}
		}
	}
	return out
}

// faceAreas polygonizes a noded arrangement and returns the unsigned areas
// of its bounded faces. Each directed edge is walked once, always turning
// as sharply clockwise as possible at every vertex; bounded faces come out
// counterclockwise (positive area) and the unbounded face clockwise, which
// is how the two are told apart.
func faceAreas(segs []segment) []float64 {
	verts := make(map[vertexKey]Point)
	edges := make(map[[2]vertexKey]struct{})
	adj := make(map[vertexKey][]vertexKey)

	for _, s := range segs {
		ka, kb := keyOf(s.a), keyOf(s.b)
		if ka == kb {
			continue
		}
		ek := [2]vertexKey{ka, kb}
		if lessKey(kb, ka) {
			ek = [2]vertexKey{kb, ka}
		}
		if _, dup := edges[ek]; dup {
			continue
		}
		edges[ek] = struct{}{}
		verts[ka], verts[kb] = s.a, s.b
		adj[ka] = append(adj[ka], kb)
		adj[kb] = append(adj[kb], ka)
	}

	// sort neighbors counterclockwise around each vertex
	for k, nbrs := range adj {
		p := verts[k]
		sort.Slice(nbrs, func(i, j int) bool {
			pi, pj := verts[nbrs[i]], verts[nbrs[j]]
			return math.Atan2(pi.Y-p.Y, pi.X-p.X) < math.Atan2(pj.Y-p.Y, pj.X-p.X)
		})
	}

	type dedge struct {
		from, to vertexKey
	}
	visited := make(map[dedge]bool, 2*len(edges))
	maxSteps := 2*len(edges) + 1

	var areas []float64
	trace := func(start dedge) {
		ring := make([]Point, 0, 8)
		e := start
		for steps := 0; steps < maxSteps; steps++ {
			visited[e] = true
			ring = append(ring, verts[e.from])
			nbrs := adj[e.to]
			idx := 0
			for i, n := range nbrs {
				if n == e.from {
					idx = i
					break
				}
			}
			// next clockwise from the edge we arrived on
			e = dedge{e.to, nbrs[(idx-1+len(nbrs))%len(nbrs)]}
			if e == start {
				if a := ringArea(ring); a > 0 {
					areas = append(areas, a)
				}
				return
			}
		}
	}

	for ek := range edges {
		for _, d := range []dedge{{ek[0], ek[1]}, {ek[1], ek[0]}} {
			if !visited[d] {
				trace(d)
			}
		}
	}
	return areas
}

// ringArea is the shoelace signed area of a closed ring.
func ringArea(ring []Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	terms := make([]float64, len(ring))
	for i := range ring {
		j := (i + 1) % len(ring)
		terms[i] = ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return floats.Sum(terms) / 2
}
