package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/almond/internal/config"
	"github.com/Faultbox/almond/internal/engine/collision"
	"github.com/Faultbox/almond/pkg/arena"
	"github.com/Faultbox/almond/pkg/csg"
	"github.com/Faultbox/almond/pkg/math"
)

// boxBrush is the box [-64,64]x[-64,64]x[-16,16] in map units.
const boxBrush = `{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) floor 0 0 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) floor 0 0 0 1 1
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) floor 0 0 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) floor 0 0 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) floor 0 0 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 64 65 16 ) floor 0 0 0 1 1
}
`

// sevenPlaneBrush repeats the top plane of boxBrush raised above the box.
const sevenPlaneBrush = `{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) wall 0 0 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) wall 0 0 0 1 1
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) wall 0 0 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) wall 0 0 0 1 1
( 64 64 32 ) ( 64 65 32 ) ( 65 64 32 ) wall 0 0 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) wall 0 0 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 64 65 16 ) wall 0 0 0 1 1
}
`

// emptyBrush asks for x >= 64 and x <= -64 at once, so nothing is left.
const emptyBrush = `{
( 64 -64 -16 ) ( 64 -63 -16 ) ( 64 -64 -15 ) void 0 0 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) void 0 0 0 1 1
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) void 0 0 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) void 0 0 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) void 0 0 0 1 1
( -64 64 16 ) ( -64 64 17 ) ( -64 65 16 ) void 0 0 0 1 1
}
`

func testMap(brushes ...string) []byte {
	var b strings.Builder
	b.WriteString("{\n\"classname\" \"worldspawn\"\n")
	for _, br := range brushes {
		b.WriteString(br)
	}
	b.WriteString("}\n")
	b.WriteString("{\n\"classname\" \"info_player_start\"\n\"origin\" \"32 -16 24\"\n}\n")
	b.WriteString("{\n\"classname\" \"info_player_start\"\n\"origin\" \"0 0 0\"\n}\n")
	return []byte(b.String())
}

func observedLoader(opts Options) (*Loader, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoader(opts, zap.New(core)), logs
}

func TestLoadBytes(t *testing.T) {
	loader, logs := observedLoader(DefaultOptions())

	lvl, err := loader.LoadBytes(testMap(boxBrush))
	require.NoError(t, err)

	require.Len(t, lvl.Entities, 3)
	assert.Equal(t, "worldspawn", lvl.Entities[0].ClassName)
	assert.Equal(t, 1, lvl.Entities[0].Brushes)
	assert.False(t, lvl.Entities[0].HasOrigin)

	require.Len(t, lvl.Meshes, 1)
	mesh := lvl.Meshes[0]
	assert.Equal(t, 0, mesh.Entity)
	assert.Equal(t, 0, mesh.Brush)
	assert.Len(t, mesh.Vertices, 8)
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, 8, lvl.VertexCount())
	assert.Equal(t, 12, lvl.TriangleCount())
	assert.Zero(t, lvl.Failed())

	// Z-up map units to Y-up world units at 1/40.
	box := lvl.Bounds()
	assert.InDelta(t, -1.6, box.Min.X, 1e-4)
	assert.InDelta(t, -0.4, box.Min.Y, 1e-4)
	assert.InDelta(t, -1.6, box.Min.Z, 1e-4)
	assert.InDelta(t, 1.6, box.Max.X, 1e-4)
	assert.InDelta(t, 0.4, box.Max.Y, 1e-4)
	assert.InDelta(t, 1.6, box.Max.Z, 1e-4)

	loaded := logs.FilterMessage("level loaded").All()
	require.Len(t, loaded, 1)
	assert.EqualValues(t, 1, loaded[0].ContextMap()["meshes"])
	assert.EqualValues(t, 0, loaded[0].ContextMap()["failed"])
}

func TestSpawnUsesFirstPlayerStart(t *testing.T) {
	loader := NewLoader(DefaultOptions(), nil)

	lvl, err := loader.LoadBytes(testMap(boxBrush))
	require.NoError(t, err)

	require.True(t, lvl.HasSpawn)
	assert.InDelta(t, 0.8, lvl.Spawn.X, 1e-5)
	assert.InDelta(t, 0.6, lvl.Spawn.Y, 1e-5)
	assert.InDelta(t, 0.4, lvl.Spawn.Z, 1e-5)

	noSpawn, err := loader.LoadBytes([]byte("{\n\"classname\" \"worldspawn\"\n}\n"))
	require.NoError(t, err)
	assert.False(t, noSpawn.HasSpawn)
	assert.Empty(t, noSpawn.Meshes)
}

func TestBrushOverCapacityIsSkipped(t *testing.T) {
	opts := DefaultOptions()
	opts.Mesh.MaxPlanes = 6
	loader, logs := observedLoader(opts)

	lvl, err := loader.LoadBytes(testMap(boxBrush, sevenPlaneBrush, boxBrush))
	require.NoError(t, err)

	require.Len(t, lvl.Meshes, 2)
	assert.Equal(t, 0, lvl.Meshes[0].Brush)
	assert.Equal(t, 2, lvl.Meshes[1].Brush)

	require.Len(t, lvl.Failures, 1)
	failure := lvl.Failures[0]
	assert.Equal(t, 0, failure.Entity)
	assert.Equal(t, 1, failure.Brush)
	var capErr *csg.CapacityError
	require.True(t, errors.As(failure.Err, &capErr))
	assert.Equal(t, csg.CapacityFaces, capErr.Kind)

	skipped := logs.FilterMessage("brush skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, zapcore.WarnLevel, skipped[0].Level)
	fields := skipped[0].ContextMap()
	assert.EqualValues(t, 1, fields["brush"])
	assert.Equal(t, "worldspawn", fields["classname"])
	assert.Equal(t, csg.CapacityFaces.String(), fields["kind"])
	assert.EqualValues(t, 13, fields["count"])
	assert.EqualValues(t, 12, fields["limit"])
}

func TestOutOfMemoryAbortsLoad(t *testing.T) {
	opts := DefaultOptions()
	opts.PermanentVertices = 16
	loader := NewLoader(opts, nil)

	_, err := loader.LoadBytes(testMap(boxBrush))
	require.Error(t, err)
	assert.ErrorIs(t, err, arena.ErrOutOfMemory)
}

func TestLevelsOwnTheirMeshes(t *testing.T) {
	loader := NewLoader(DefaultOptions(), nil)

	first, err := loader.LoadBytes(testMap(boxBrush))
	require.NoError(t, err)
	before := first.Meshes[0].Positions()

	_, err = loader.LoadBytes(testMap(boxBrush, boxBrush))
	require.NoError(t, err)

	assert.Equal(t, before, first.Meshes[0].Positions())
}

func TestCollidersArePickable(t *testing.T) {
	loader := NewLoader(DefaultOptions(), nil)

	lvl, err := loader.LoadBytes(testMap(boxBrush))
	require.NoError(t, err)

	require.True(t, lvl.Meshes[0].HasBody)
	assert.Equal(t, 1, lvl.World.Len())

	down := collision.Ray{Origin: math.Vec3{X: 0.5, Y: 5, Z: 0.5}, Direction: math.Vec3{Y: -1}}
	id, dist, ok := lvl.World.Raycast(down, 100)
	require.True(t, ok)
	assert.Equal(t, lvl.Meshes[0].Body, id)
	assert.InDelta(t, 4.6, dist, 1e-3)

	body, ok := lvl.World.Body(id)
	require.True(t, ok)
	assert.Equal(t, BrushRef{Entity: 0, Brush: 0}, body.UserData)

	assert.Len(t, lvl.MeshesOf(0), 1)
	assert.Empty(t, lvl.MeshesOf(1))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.map")
	require.NoError(t, os.WriteFile(path, testMap(boxBrush), 0o644))

	lvl, err := NewLoader(DefaultOptions(), nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, lvl.Path)
	assert.Len(t, lvl.Meshes, 1)

	_, err = NewLoader(DefaultOptions(), nil).Load(filepath.Join(t.TempDir(), "missing.map"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(t.TempDir(), "broken.map")
	require.NoError(t, os.WriteFile(broken, []byte("{ \"classname\" "), 0o644))
	_, err = NewLoader(DefaultOptions(), nil).Load(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("loading %s", broken))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Map.UnitScale = 32
	cfg.Mesh.SplitUVSeams = true

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cfg.Mesh.MaxPlanes, opts.Mesh.MaxPlanes)
	assert.True(t, opts.Mesh.SplitUVSeams)
	assert.Equal(t, cfg.Memory.TransientFaces, opts.TransientFaces)

	p := opts.Transform.TransformVec3(math.Vec3{X: 32, Y: 64, Z: 96})
	assert.InDelta(t, 1, p.X, 1e-5)
	assert.InDelta(t, 3, p.Y, 1e-5)
	assert.InDelta(t, -2, p.Z, 1e-5)
}

func TestBoundsSkipEmptyMeshes(t *testing.T) {
	vertices := []csg.Vertex{
		{Position: math.Vec3{X: 10, Y: 20, Z: 30}},
		{Position: math.Vec3{X: 11, Y: 22, Z: 33}},
	}
	lvl := &Level{Meshes: []Mesh{
		{Brush: 0},
		{Brush: 1, MeshData: csg.MeshData{Vertices: vertices}},
		{Brush: 2},
	}}

	box := lvl.Bounds()
	assert.Equal(t, math.Vec3{X: 10, Y: 20, Z: 30}, box.Min)
	assert.Equal(t, math.Vec3{X: 11, Y: 22, Z: 33}, box.Max)

	assert.Equal(t, collision.AABB{}, (&Level{Meshes: []Mesh{{}}}).Bounds())
}

func TestEmptyBrushLeavesBoundsAlone(t *testing.T) {
	loader, _ := observedLoader(DefaultOptions())

	lvl, err := loader.LoadBytes(testMap(emptyBrush, boxBrush))
	require.NoError(t, err)
	assert.Zero(t, lvl.Failed())

	for _, m := range lvl.Meshes {
		if m.Brush == 0 {
			assert.Empty(t, m.Vertices)
			assert.False(t, m.HasBody)
		}
	}

	box := lvl.Bounds()
	assert.InDelta(t, -1.6, box.Min.X, 1e-4)
	assert.InDelta(t, 1.6, box.Max.X, 1e-4)
	assert.InDelta(t, 0.4, box.Max.Y, 1e-4)
}
