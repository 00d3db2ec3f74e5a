package csg

import (
	"github.com/Faultbox/almond/pkg/math"
)

// MaxPolygonVertices is the vertex limit of a single face.
const MaxPolygonVertices = 32

// Polygon is a convex face of a polyhedron. The vertex loop winds
// counter-clockwise about Normal.
type Polygon struct {
	Vertices [MaxPolygonVertices]math.Vec3
	Count    int
	Normal   math.Vec3
	Tex      TexInfo
}

// Points returns the used part of the vertex loop.
func (p *Polygon) Points() []math.Vec3 {
	return p.Vertices[:p.Count]
}

// add appends v unless it repeats the previous vertex.
func (p *Polygon) add(v math.Vec3, face int) error {
	if p.Count > 0 && p.Vertices[p.Count-1].ApproxEqual(v, DistEpsilon) {
		return nil
	}
	if p.Count == MaxPolygonVertices {
		return &CapacityError{Kind: CapacityPolygonVertices, Face: face, Count: p.Count + 1, Limit: MaxPolygonVertices}
	}
	p.Vertices[p.Count] = v
	p.Count++
	return nil
}

// close drops a trailing vertex equal to the first one.
func (p *Polygon) close() {
	if p.Count > 1 && p.Vertices[p.Count-1].ApproxEqual(p.Vertices[0], DistEpsilon) {
		p.Count--
	}
}

// Polyhedron is the convex solid produced by Clip. Faces alias the arena
// passed to Clip.
type Polyhedron struct {
	Faces []Polygon
}

// VertexCount returns the total number of face vertices.
func (p Polyhedron) VertexCount() int {
	n := 0
	for i := range p.Faces {
		n += p.Faces[i].Count
	}
	return n
}

// cubeFaces lists the corners of the bounding cube, in units of the
// half-extent, counter-clockwise about each outward normal.
var cubeFaces = [6]struct {
	normal  math.Vec3
	corners [4]math.Vec3
}{
	{math.Vec3{X: 0, Y: 0, Z: 1}, [4]math.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
	{math.Vec3{X: 0, Y: 0, Z: -1}, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: -1, Z: -1}}},
	{math.Vec3{X: 1, Y: 0, Z: 0}, [4]math.Vec3{{X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: 1}}},
	{math.Vec3{X: -1, Y: 0, Z: 0}, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}}},
	{math.Vec3{X: 0, Y: 1, Z: 0}, [4]math.Vec3{{X: -1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}}},
	{math.Vec3{X: 0, Y: -1, Z: 0}, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
}

// boundingCube fills dst with the six faces of the initial cube and returns
// the face count.
func boundingCube(dst []Polygon) int {
	half := float32(BoundingCubeSize) / 2
	for i, f := range cubeFaces {
		poly := &dst[i]
		*poly = Polygon{Normal: f.normal, Count: len(f.corners)}
		for j, c := range f.corners {
			poly.Vertices[j] = c.Scale(half).Snap(GridSize)
		}
	}
	return len(cubeFaces)
}
