// Package csg converts convex brushes into indexed triangle meshes.
//
// A brush is the intersection of the inside half-spaces of its planes, as in
// Quake-family level editors. Building a brush clips an oversized cube by
// every plane in turn, then fans the resulting convex faces into triangles
// with per-face texture coordinates. All vertex positions are snapped to a
// GridSize grid so equal points compare equal.
package csg

import (
	"errors"

	"github.com/Faultbox/almond/pkg/math"
)

// Geometry constants.
const (
	// GridSize is the snapping step for every emitted position. Larger values
	// hide more float noise but also merge genuinely close vertices.
	GridSize = 0.01

	// DistEpsilon bounds near-parallel edge solves and point equality.
	DistEpsilon = 1e-6

	// BoundingCubeSize is the edge length of the initial polyhedron.
	BoundingCubeSize = 8192

	// TextureSize is the reference texture size, in world units, UVs are
	// normalized by.
	TextureSize = 32

	// RotationEpsilon is the texture rotation, in degrees, below which no
	// rotation is applied.
	RotationEpsilon = 0.001

	// MinNormalRatio is the smallest sine of the angle between the two edges
	// NewPlane accepts.
	MinNormalRatio = 1e-5
)

// ErrDegeneratePlane is returned by NewPlane for (nearly) collinear points.
var ErrDegeneratePlane = errors.New("csg: degenerate plane")

// TexInfo holds per-face texture mapping parameters.
type TexInfo struct {
	Offset   math.Vec2
	Scale    math.Vec2
	Rotation float32 // degrees
}

// Plane is an oriented half-space. Points p with dot(p-Anchor, Normal) >= 0
// are inside.
type Plane struct {
	Normal   math.Vec3
	Anchor   math.Vec3
	Tex      TexInfo
	Material string
}

// Distance returns the signed distance of p from the plane. It is positive
// on the inside.
func (p Plane) Distance(x math.Vec3) float32 {
	return x.Sub(p.Anchor).Dot(p.Normal)
}

// Inside reports whether x lies in the plane's inside half-space.
func (p Plane) Inside(x math.Vec3) bool {
	return p.Distance(x) >= 0
}

// Brush is an ordered list of planes whose inside half-spaces intersect to
// form a convex solid. Boundedness is not checked: an under-constrained brush
// yields faces of the bounding cube.
type Brush struct {
	Planes []Plane
}

// PlaneFromPoints builds a plane through a, b and c with
// normal = normalize(cross(b-a, c-a)) and anchor a. Collinear points produce
// a zero normal; use NewPlane to reject them.
func PlaneFromPoints(a, b, c math.Vec3) Plane {
	return Plane{
		Normal: b.Sub(a).Cross(c.Sub(a)).Normalize(),
		Anchor: a,
	}
}

// NewPlane is PlaneFromPoints with validation. It returns ErrDegeneratePlane
// when the two edges are (nearly) parallel or zero length.
func NewPlane(a, b, c math.Vec3) (Plane, error) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	area := ab.Cross(ac).Length()
	if area == 0 || area < MinNormalRatio*ab.Length()*ac.Length() {
		return Plane{}, ErrDegeneratePlane
	}
	return PlaneFromPoints(a, b, c), nil
}
