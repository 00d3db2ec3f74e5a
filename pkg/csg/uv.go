package csg

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/almond/pkg/math"
)

// Axis identifies one of the six texture projection bases.
type Axis int

// Projection bases, in selection order.
const (
	AxisFloor Axis = iota
	AxisCeiling
	AxisWest
	AxisEast
	AxisSouth
	AxisNorth
)

var axisNames = [...]string{"floor", "ceiling", "west", "east", "south", "north"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return "unknown"
	}
	return axisNames[a]
}

// baseAxes holds the primary direction and the U/V axes of each basis.
var baseAxes = [6][3]math.Vec3{
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}},
	{{X: 0, Y: 0, Z: -1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}},
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: -1}},
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: -1}},
	{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}},
	{{X: 0, Y: -1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}},
}

// DominantAxis returns the basis whose primary direction is most aligned
// with normal. On a tie the earlier basis wins.
func DominantAxis(normal math.Vec3) Axis {
	best := Axis(0)
	bestDot := float32(-1)
	for i, axes := range baseAxes {
		if d := normal.Dot(axes[0]); d > bestDot {
			bestDot = d
			best = Axis(i)
		}
	}
	return best
}

// Projection maps positions on a face to texture coordinates.
type Projection struct {
	Axis   Axis
	U, V   math.Vec3
	Offset math.Vec2
}

// NewProjection builds the projection for a face with the given normal and
// texture parameters. Axes are divided by the scale (zero counts as one) and
// rotated about the dominant world axis of the normal.
func NewProjection(normal math.Vec3, tex TexInfo) Projection {
	axis := DominantAxis(normal)
	u := baseAxes[axis][1].Scale(1 / nonZero(tex.Scale.X))
	v := baseAxes[axis][2].Scale(1 / nonZero(tex.Scale.Y))

	if math32.Abs(tex.Rotation) > RotationEpsilon {
		rot := math.Mat3AxisAngle(rotationAxis(normal), math.Radians(tex.Rotation))
		u = rot.Transform(u)
		v = rot.Transform(v)
	}

	return Projection{Axis: axis, U: u, V: v, Offset: tex.Offset}
}

// Project returns the texture coordinate of p in reference texture units.
func (pr Projection) Project(p math.Vec3) math.Vec2 {
	return math.Vec2{
		X: (p.Dot(pr.U) + pr.Offset.X) / TextureSize,
		Y: (p.Dot(pr.V) + pr.Offset.Y) / TextureSize,
	}
}

// rotationAxis returns the positive world axis along the largest component
// of |n|.
func rotationAxis(n math.Vec3) math.Vec3 {
	a := n.Abs()
	switch {
	case a.X > a.Y && a.X > a.Z:
		return math.Vec3{X: 1}
	case a.Y > a.Z:
		return math.Vec3{Y: 1}
	default:
		return math.Vec3{Z: 1}
	}
}

func nonZero(s float32) float32 {
	if s == 0 {
		return 1
	}
	return s
}
