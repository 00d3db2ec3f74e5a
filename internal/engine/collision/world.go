package collision

import (
	"github.com/Faultbox/almond/pkg/math"
)

// BodyID identifies a body in a World.
type BodyID int

// Body is a static collider with an opaque user value.
type Body struct {
	ID       BodyID
	Hull     *ConvexHull
	UserData any
}

// World holds static bodies. It has no dynamics; it answers overlap and
// ray queries. It is not safe for concurrent use.
type World struct {
	bodies []Body
	bounds AABB
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{}
}

// AddStatic adds a hull and returns its id.
func (w *World) AddStatic(hull *ConvexHull, userData any) BodyID {
	id := BodyID(len(w.bodies))
	w.bodies = append(w.bodies, Body{ID: id, Hull: hull, UserData: userData})
	if id == 0 {
		w.bounds = hull.Bounds()
	} else {
		w.bounds = w.bounds.Union(hull.Bounds())
	}
	return id
}

// Body returns the body with the given id.
func (w *World) Body(id BodyID) (Body, bool) {
	if id < 0 || int(id) >= len(w.bodies) {
		return Body{}, false
	}
	return w.bodies[id], true
}

// Len returns the number of bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Bounds returns the union of all body bounds.
func (w *World) Bounds() AABB {
	return w.bounds
}

// Clear removes every body.
func (w *World) Clear() {
	w.bodies = w.bodies[:0]
	w.bounds = AABB{}
}

// QueryAABB returns the bodies overlapping box, in insertion order.
func (w *World) QueryAABB(box AABB) []BodyID {
	var out []BodyID
	for _, b := range w.bodies {
		if b.Hull.Overlaps(box) {
			out = append(out, b.ID)
		}
	}
	return out
}

// QueryPoint returns the bodies containing p, in insertion order.
func (w *World) QueryPoint(p math.Vec3) []BodyID {
	var out []BodyID
	for _, b := range w.bodies {
		if b.Hull.ContainsPoint(p) {
			out = append(out, b.ID)
		}
	}
	return out
}

// Raycast returns the closest body hit by r within maxDist.
func (w *World) Raycast(r Ray, maxDist float32) (BodyID, float32, bool) {
	hitID := BodyID(-1)
	hitT := maxDist
	for _, b := range w.bodies {
		if t, ok := b.Hull.Raycast(r); ok && t <= hitT {
			hitID, hitT = b.ID, t
		}
	}
	if hitID < 0 {
		return 0, 0, false
	}
	return hitID, hitT, true
}
