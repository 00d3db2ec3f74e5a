// Package shapes generates procedural meshes.
package shapes

import (
	"errors"
	stdmath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// ErrInvalidShape is returned for non-positive sizes or too few segments.
var ErrInvalidShape = errors.New("shapes: invalid parameters")

// CapsuleVertexCount returns the vertex count of NewCapsule.
func CapsuleVertexCount(radialSegments, rings int) int {
	return 2 + 2*(rings-1)*radialSegments
}

// CapsuleIndexCount returns the index count of NewCapsule.
func CapsuleIndexCount(radialSegments, rings int) int {
	return 6*radialSegments + 6*radialSegments*(2*rings-3)
}

// NewCapsule builds a Y-axis capsule centered on the origin. The two
// hemispheres are split into rings latitude steps each and joined by a
// single cylinder band. The poles are single vertices.
func NewCapsule(radius, halfHeight float32, radialSegments, rings int) (csg.MeshData, error) {
	if radius <= 0 || halfHeight < 0 || radialSegments < 3 || rings < 2 {
		return csg.MeshData{}, ErrInvalidShape
	}
	if CapsuleVertexCount(radialSegments, rings) > stdmath.MaxUint16+1 {
		return csg.MeshData{}, ErrInvalidShape
	}

	top := halfHeight + radius
	vertices := make([]csg.Vertex, 0, CapsuleVertexCount(radialSegments, rings))
	indices := make([]uint16, 0, CapsuleIndexCount(radialSegments, rings))

	add := func(p math.Vec3, u float32) {
		vertices = append(vertices, csg.Vertex{
			Position: p,
			TexCoord: math.Vec2{X: u, Y: (top - p.Y) / (2 * top)},
		})
	}
	ring := func(r int, sign float32) {
		theta := math32.Pi / 2 * float32(r) / float32(rings)
		sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)
		for s := 0; s < radialSegments; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(radialSegments)
			add(math.Vec3{
				X: radius * sinTheta * math32.Cos(phi),
				Y: sign * (radius*cosTheta + halfHeight),
				Z: radius * sinTheta * math32.Sin(phi),
			}, float32(s)/float32(radialSegments))
		}
	}

	add(math.Vec3{Y: top}, 0.5)
	for r := 1; r < rings; r++ {
		ring(r, 1)
	}
	for r := rings - 1; r > 0; r-- {
		ring(r, -1)
	}
	add(math.Vec3{Y: -top}, 0.5)

	tri := func(a, b, c int) {
		indices = append(indices, uint16(a), uint16(b), uint16(c))
	}
	wrap := func(s int) int { return (s + 1) % radialSegments }

	for s := 0; s < radialSegments; s++ {
		tri(0, s+1, wrap(s)+1)
	}
	for r := 0; r < 2*rings-3; r++ {
		row, below := r*radialSegments+1, (r+1)*radialSegments+1
		for s := 0; s < radialSegments; s++ {
			tri(row+s, below+s, below+wrap(s))
			tri(below+wrap(s), row+wrap(s), row+s)
		}
	}
	last := len(vertices) - 1
	for s := 0; s < radialSegments; s++ {
		tri(last, last-radialSegments+wrap(s), last-radialSegments+s)
	}

	return csg.MeshData{Vertices: vertices, Indices: indices}, nil
}
