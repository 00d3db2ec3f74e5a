// Package collision provides static convex colliders built from brush
// meshes, with box, point and ray queries.
package collision

import (
	"github.com/Faultbox/almond/pkg/math"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// BoundsOf returns the bounds of points. It returns a zero box for no points.
func BoundsOf(points []math.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// Intersects reports whether the boxes overlap or touch.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Contains reports whether p lies inside or on the box.
func (a AABB) Contains(p math.Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Union returns the smallest box holding both.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float32) AABB {
	m := math.Vec3{X: margin, Y: margin, Z: margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() math.Vec3 {
	return a.Min.Lerp(a.Max, 0.5)
}

// Size returns the extent along each axis.
func (a AABB) Size() math.Vec3 {
	return a.Max.Sub(a.Min)
}
