package csg

import (
	stdmath "math"

	"github.com/Faultbox/almond/pkg/math"
)

// Vertex is a mesh vertex as uploaded to the GPU.
type Vertex struct {
	Position math.Vec3
	TexCoord math.Vec2
}

// MeshData is an indexed triangle list. Both slices alias the arenas they
// were built in.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint16
}

// TriangleCount returns the number of triangles.
func (m MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// Positions returns a copy of the vertex positions.
func (m MeshData) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero vectors.
func (m MeshData) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo = m.Vertices[0].Position
	hi = lo
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}

// meshWriter fans polygons into a pair of preallocated output buffers.
type meshWriter struct {
	vertices   []Vertex
	indices    []uint16
	nv, ni     int
	splitSeams bool
}

// writePolyhedron triangulates every face of p.
func (w *meshWriter) writePolyhedron(p Polyhedron) error {
	for i := range p.Faces {
		if err := w.writeFace(&p.Faces[i], i); err != nil {
			return err
		}
	}
	return nil
}

// writeFace emits the fan (0, j, j+1) of one face.
func (w *meshWriter) writeFace(face *Polygon, index int) error {
	if face.Count < 3 {
		return nil
	}

	proj := NewProjection(face.Normal, face.Tex)
	first, err := w.insert(face.Vertices[0], proj, index)
	if err != nil {
		return err
	}
	for j := 1; j < face.Count-1; j++ {
		second, err := w.insert(face.Vertices[j], proj, index)
		if err != nil {
			return err
		}
		third, err := w.insert(face.Vertices[j+1], proj, index)
		if err != nil {
			return err
		}
		if w.ni+3 > len(w.indices) {
			return &CapacityError{Kind: CapacityIndices, Face: index, Count: w.ni + 3, Limit: len(w.indices)}
		}
		w.indices[w.ni] = first
		w.indices[w.ni+1] = second
		w.indices[w.ni+2] = third
		w.ni += 3
	}
	return nil
}

// insert returns the index of the vertex at p, appending it when no equal
// vertex exists yet.
func (w *meshWriter) insert(p math.Vec3, proj Projection, face int) (uint16, error) {
	pos := p.Snap(GridSize)
	uv := proj.Project(pos)

	for i := 0; i < w.nv; i++ {
		v := &w.vertices[i]
		if !v.Position.ApproxEqual(pos, DistEpsilon) {
			continue
		}
		if w.splitSeams && !v.TexCoord.ApproxEqual(uv, DistEpsilon) {
			continue
		}
		return uint16(i), nil
	}

	if w.nv == len(w.vertices) {
		return 0, &CapacityError{Kind: CapacityVertices, Face: face, Count: w.nv + 1, Limit: len(w.vertices)}
	}
	if w.nv > stdmath.MaxUint16 {
		return 0, &CapacityError{Kind: CapacityIndexRange, Face: face, Count: w.nv, Limit: stdmath.MaxUint16}
	}

	w.vertices[w.nv] = Vertex{Position: pos, TexCoord: uv}
	w.nv++
	return uint16(w.nv - 1), nil
}
