package game

import (
	"fmt"

	"github.com/Faultbox/almond/internal/engine/collision"
	"github.com/Faultbox/almond/internal/engine/renderer"
	"github.com/Faultbox/almond/internal/level"
	"github.com/Faultbox/almond/pkg/csg"
)

// meshUploader is the part of the renderer the scene needs.
type meshUploader interface {
	UploadMesh(csg.MeshData) (*renderer.GPUMesh, error)
	DeleteMesh(*renderer.GPUMesh)
}

// drawItem pairs a level mesh with its GPU copy. gpu is nil for meshes
// without triangles.
type drawItem struct {
	gpu  *renderer.GPUMesh
	tint [3]float32
}

// scene is the currently displayed level and its GPU resources.
type scene struct {
	gpu   meshUploader
	level *level.Level
	items []drawItem
	// selected indexes items, or -1.
	selected int
}

// selectedTint marks the picked brush.
var selectedTint = [3]float32{1, 0.9, 0.3}

// swap uploads lvl and, on success, releases the previous level. On error
// the previous level stays current.
func (s *scene) swap(lvl *level.Level) error {
	items := make([]drawItem, 0, len(lvl.Meshes))
	for i := range lvl.Meshes {
		m := &lvl.Meshes[i]
		if m.TriangleCount() == 0 {
			items = append(items, drawItem{tint: renderer.TintFor(m.Entity)})
			continue
		}
		g, err := s.gpu.UploadMesh(m.MeshData)
		if err != nil {
			for _, it := range items {
				s.gpu.DeleteMesh(it.gpu)
			}
			return fmt.Errorf("uploading entity %d brush %d: %w", m.Entity, m.Brush, err)
		}
		items = append(items, drawItem{gpu: g, tint: renderer.TintFor(m.Entity)})
	}

	s.release()
	s.level = lvl
	s.items = items
	return nil
}

// release frees every GPU mesh of the current level.
func (s *scene) release() {
	for _, it := range s.items {
		s.gpu.DeleteMesh(it.gpu)
	}
	s.items = nil
	s.level = nil
	s.selected = -1
}

// tint returns the draw colour of item i.
func (s *scene) tint(i int) [3]float32 {
	if i == s.selected {
		return selectedTint
	}
	return s.items[i].tint
}

// selectBody highlights the mesh built from ref.
func (s *scene) selectBody(ref level.BrushRef) {
	s.selected = -1
	for i := range s.level.Meshes {
		m := &s.level.Meshes[i]
		if m.Entity == ref.Entity && m.Brush == ref.Brush {
			s.selected = i
			return
		}
	}
}

// pickResult describes the brush under a ray.
type pickResult struct {
	Ref       level.BrushRef
	ClassName string
	Distance  float32
}

// pick returns the closest brush hit by r.
func (s *scene) pick(r collision.Ray, maxDist float32) (pickResult, bool) {
	if s.level == nil {
		return pickResult{}, false
	}
	id, dist, ok := s.level.World.Raycast(r, maxDist)
	if !ok {
		return pickResult{}, false
	}
	body, ok := s.level.World.Body(id)
	if !ok {
		return pickResult{}, false
	}
	ref, ok := body.UserData.(level.BrushRef)
	if !ok {
		return pickResult{}, false
	}

	res := pickResult{Ref: ref, Distance: dist}
	if ref.Entity < len(s.level.Entities) {
		res.ClassName = s.level.Entities[ref.Entity].ClassName
	}
	return res, true
}
