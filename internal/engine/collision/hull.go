package collision

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/almond/pkg/math"
)

// Hull construction errors.
var (
	ErrEmptyHull       = errors.New("collision: hull needs at least 4 points")
	ErrIndexOutOfRange = errors.New("collision: triangle index out of range")
)

// Hull tolerances in world units.
const (
	weldEpsilon  = 1e-4
	planeEpsilon = 1e-4
)

// hullPlane holds dot(normal, p) <= dist for every point p of the hull.
type hullPlane struct {
	normal math.Vec3
	dist   float32
}

// ConvexHull is a static convex collider.
type ConvexHull struct {
	points []math.Vec3
	planes []hullPlane
	bounds AABB
}

// NewConvexHull builds a hull from a triangle mesh. Duplicate points are
// welded and coplanar triangles share one plane. Every plane faces away
// from the centroid, so triangle winding does not matter.
func NewConvexHull(positions []math.Vec3, indices []uint16) (*ConvexHull, error) {
	h := &ConvexHull{}

	for _, p := range positions {
		h.addPoint(p)
	}
	if len(h.points) < 4 {
		return nil, ErrEmptyHull
	}
	h.bounds = BoundsOf(h.points)

	var centroid math.Vec3
	for _, p := range h.points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Div(float32(len(h.points)))

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= len(positions) || b >= len(positions) || c >= len(positions) {
			return nil, ErrIndexOutOfRange
		}

		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		if n.Length() == 0 {
			continue
		}
		n = n.Normalize()
		d := n.Dot(positions[a])
		if n.Dot(centroid) > d {
			n, d = n.Scale(-1), -d
		}
		h.addPlane(hullPlane{normal: n, dist: d})
	}
	if len(h.planes) < 4 {
		return nil, ErrEmptyHull
	}

	return h, nil
}

func (h *ConvexHull) addPoint(p math.Vec3) {
	for _, q := range h.points {
		if q.ApproxEqual(p, weldEpsilon) {
			return
		}
	}
	h.points = append(h.points, p)
}

func (h *ConvexHull) addPlane(p hullPlane) {
	for _, q := range h.planes {
		if q.normal.ApproxEqual(p.normal, planeEpsilon) && math32.Abs(q.dist-p.dist) <= planeEpsilon {
			return
		}
	}
	h.planes = append(h.planes, p)
}

// Bounds returns the axis-aligned bounds.
func (h *ConvexHull) Bounds() AABB {
	return h.bounds
}

// Points returns the welded hull points. The slice must not be modified.
func (h *ConvexHull) Points() []math.Vec3 {
	return h.points
}

// PlaneCount returns the number of distinct face planes.
func (h *ConvexHull) PlaneCount() int {
	return len(h.planes)
}

// Support returns the hull point furthest along dir.
func (h *ConvexHull) Support(dir math.Vec3) math.Vec3 {
	best := h.points[0]
	bestDot := best.Dot(dir)
	for _, p := range h.points[1:] {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}

// ContainsPoint reports whether p lies inside or on the hull.
func (h *ConvexHull) ContainsPoint(p math.Vec3) bool {
	if !h.bounds.Expand(planeEpsilon).Contains(p) {
		return false
	}
	for _, pl := range h.planes {
		if pl.normal.Dot(p)-pl.dist > planeEpsilon {
			return false
		}
	}
	return true
}

// Overlaps reports whether the hull and box overlap. It tests the box axes
// and the hull face planes; edge-edge axes are not tested, so a box close
// to a hull edge may report a false overlap.
func (h *ConvexHull) Overlaps(box AABB) bool {
	if !h.bounds.Intersects(box) {
		return false
	}
	for _, pl := range h.planes {
		// Box corner furthest against the plane normal.
		corner := math.Vec3{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z}
		if pl.normal.X > 0 {
			corner.X = box.Min.X
		}
		if pl.normal.Y > 0 {
			corner.Y = box.Min.Y
		}
		if pl.normal.Z > 0 {
			corner.Z = box.Min.Z
		}
		if pl.normal.Dot(corner)-pl.dist > planeEpsilon {
			return false
		}
	}
	return true
}

// Raycast returns the distance at which r enters the hull. A ray starting
// inside hits at 0.
func (h *ConvexHull) Raycast(r Ray) (float32, bool) {
	if _, ok := r.IntersectAABB(h.bounds.Expand(planeEpsilon)); !ok {
		return 0, false
	}

	enter := float32(0)
	exit := float32(math32.MaxFloat32)
	for _, pl := range h.planes {
		denom := pl.normal.Dot(r.Direction)
		dist := pl.dist - pl.normal.Dot(r.Origin)
		if denom == 0 {
			if dist < -planeEpsilon {
				return 0, false
			}
			continue
		}
		t := dist / denom
		if denom < 0 {
			enter = math32.Max(enter, t)
		} else {
			exit = math32.Min(exit, t)
		}
		if enter > exit {
			return 0, false
		}
	}
	return enter, true
}
