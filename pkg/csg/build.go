package csg

import (
	"fmt"

	"github.com/Faultbox/almond/pkg/arena"
)

// Options bounds the size of a single brush mesh.
type Options struct {
	MaxPlanes   int
	MaxVertices int
	MaxIndices  int

	// SplitUVSeams keeps vertices with equal positions but different
	// texture coordinates apart.
	SplitUVSeams bool
}

// DefaultOptions returns the limits used by the level loader.
func DefaultOptions() Options {
	return Options{
		MaxPlanes:   100,
		MaxVertices: 500,
		MaxIndices:  1500,
	}
}

// Memory holds the arenas a Builder allocates from. Faces is scratch space
// released after every brush; Vertices and Indices receive the output.
type Memory struct {
	Faces    *arena.Arena[Polygon]
	Vertices *arena.Arena[Vertex]
	Indices  *arena.Arena[uint16]
}

// NewMemory allocates arenas of the given capacities.
func NewMemory(faces, vertices, indices int) Memory {
	return Memory{
		Faces:    arena.New[Polygon](faces),
		Vertices: arena.New[Vertex](vertices),
		Indices:  arena.New[uint16](indices),
	}
}

// Builder turns brushes into meshes. It is not safe for concurrent use;
// separate Builders may run in parallel.
type Builder struct {
	opts Options
	mem  Memory
}

// NewBuilder creates a builder that allocates from mem.
func NewBuilder(opts Options, mem Memory) *Builder {
	return &Builder{opts: opts, mem: mem}
}

// Options returns the builder's limits.
func (b *Builder) Options() Options {
	return b.opts
}

// Build clips brush into a convex polyhedron and triangulates it. The mesh
// lives in the builder's vertex and index arenas. On error nothing stays
// allocated.
func (b *Builder) Build(brush Brush) (MeshData, error) {
	if len(brush.Planes) > b.opts.MaxPlanes {
		return MeshData{}, &CapacityError{
			Kind:  CapacityFaces,
			Face:  -1,
			Count: len(cubeFaces) + len(brush.Planes),
			Limit: len(cubeFaces) + b.opts.MaxPlanes,
		}
	}

	scratch := b.mem.Faces.Begin()
	defer b.mem.Faces.End(scratch)

	poly, err := Clip(brush, b.mem.Faces)
	if err != nil {
		return MeshData{}, err
	}

	vt := b.mem.Vertices.Begin()
	it := b.mem.Indices.Begin()
	rollback := func() {
		b.mem.Vertices.End(vt)
		b.mem.Indices.End(it)
	}

	vertices, err := b.mem.Vertices.Push(b.opts.MaxVertices)
	if err != nil {
		return MeshData{}, fmt.Errorf("csg: reserve vertices: %w", err)
	}
	indices, err := b.mem.Indices.Push(b.opts.MaxIndices)
	if err != nil {
		rollback()
		return MeshData{}, fmt.Errorf("csg: reserve indices: %w", err)
	}

	w := meshWriter{vertices: vertices, indices: indices, splitSeams: b.opts.SplitUVSeams}
	if err := w.writePolyhedron(poly); err != nil {
		rollback()
		return MeshData{}, err
	}

	return MeshData{
		Vertices: b.mem.Vertices.Trim(vertices, w.nv),
		Indices:  b.mem.Indices.Trim(indices, w.ni),
	}, nil
}

// BrushToMesh builds a single brush with freshly allocated memory.
func BrushToMesh(brush Brush, opts Options) (MeshData, error) {
	faces := 2 * (len(cubeFaces) + len(brush.Planes))
	b := NewBuilder(opts, NewMemory(faces, opts.MaxVertices, opts.MaxIndices))
	return b.Build(brush)
}
