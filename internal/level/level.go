// Package level loads .map files into renderable brush meshes and a static
// collision world.
package level

import (
	"github.com/Faultbox/almond/internal/engine/collision"
	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// Level is a loaded map. Mesh data aliases arenas owned by the level and
// stays valid for the level's lifetime.
type Level struct {
	Path     string
	Entities []EntityInfo
	Meshes   []Mesh
	Failures []Failure
	World    *collision.World

	// Spawn is the first info_player_start origin in world space.
	Spawn    math.Vec3
	HasSpawn bool
}

// EntityInfo summarizes one map entity.
type EntityInfo struct {
	ClassName string
	Brushes   int
	Origin    math.Vec3
	HasOrigin bool
}

// Mesh is one brush converted to world space.
type Mesh struct {
	Entity int
	Brush  int
	csg.MeshData

	Body    collision.BodyID
	HasBody bool
}

// Failure records a brush that could not be built.
type Failure struct {
	Entity int
	Brush  int
	Err    error
}

// Failed returns the number of skipped brushes.
func (l *Level) Failed() int {
	return len(l.Failures)
}

// VertexCount returns the total vertex count of all meshes.
func (l *Level) VertexCount() int {
	n := 0
	for i := range l.Meshes {
		n += len(l.Meshes[i].Vertices)
	}
	return n
}

// TriangleCount returns the total triangle count of all meshes.
func (l *Level) TriangleCount() int {
	n := 0
	for i := range l.Meshes {
		n += l.Meshes[i].TriangleCount()
	}
	return n
}

// Bounds returns the world-space bounds of all meshes. Meshes without
// vertices are ignored; a level with none returns the zero box.
func (l *Level) Bounds() collision.AABB {
	var box collision.AABB
	seen := false
	for i := range l.Meshes {
		if len(l.Meshes[i].Vertices) == 0 {
			continue
		}
		lo, hi := l.Meshes[i].MeshData.Bounds()
		if !seen {
			box = collision.AABB{Min: lo, Max: hi}
			seen = true
			continue
		}
		box = box.Union(collision.AABB{Min: lo, Max: hi})
	}
	return box
}

// MeshesOf returns the meshes built from the given entity.
func (l *Level) MeshesOf(entity int) []*Mesh {
	var out []*Mesh
	for i := range l.Meshes {
		if l.Meshes[i].Entity == entity {
			out = append(out, &l.Meshes[i])
		}
	}
	return out
}
