package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/almond/pkg/math"
)

func TestCapsuleCounts(t *testing.T) {
	tests := []struct {
		segments, rings int
	}{
		{3, 2},
		{8, 4},
		{16, 8},
	}
	for _, tt := range tests {
		mesh, err := NewCapsule(0.5, 1, tt.segments, tt.rings)
		require.NoError(t, err)
		assert.Len(t, mesh.Vertices, CapsuleVertexCount(tt.segments, tt.rings))
		assert.Len(t, mesh.Indices, CapsuleIndexCount(tt.segments, tt.rings))

		for _, idx := range mesh.Indices {
			assert.Less(t, int(idx), len(mesh.Vertices))
		}
	}

	assert.Equal(t, 2+2*3*8, CapsuleVertexCount(8, 4))
}

func TestCapsuleGeometry(t *testing.T) {
	const radius, halfHeight = 0.4, 0.9
	mesh, err := NewCapsule(radius, halfHeight, 12, 6)
	require.NoError(t, err)

	assert.True(t, mesh.Vertices[0].Position.ApproxEqual(math.Vec3{Y: radius + halfHeight}, 1e-6))
	assert.True(t, mesh.Vertices[len(mesh.Vertices)-1].Position.ApproxEqual(math.Vec3{Y: -(radius + halfHeight)}, 1e-6))

	lo, hi := mesh.Bounds()
	assert.InDelta(t, -(radius + halfHeight), lo.Y, 1e-6)
	assert.InDelta(t, radius+halfHeight, hi.Y, 1e-6)
	assert.LessOrEqual(t, hi.X, float32(radius+1e-6))

	// Every vertex lies on the capsule surface.
	for i, v := range mesh.Vertices {
		p := v.Position
		core := math.Vec3{Y: clamp(p.Y, -halfHeight, halfHeight)}
		assert.InDelta(t, radius, p.Distance(core), 1e-5, "vertex %d", i)
		assert.GreaterOrEqual(t, v.TexCoord.Y, float32(0))
		assert.LessOrEqual(t, v.TexCoord.Y, float32(1))
	}
}

func TestCapsuleInvalid(t *testing.T) {
	tests := []struct {
		name               string
		radius, halfHeight float32
		segments, rings    int
	}{
		{"zero radius", 0, 1, 8, 4},
		{"negative height", 1, -1, 8, 4},
		{"two segments", 1, 1, 2, 4},
		{"one ring", 1, 1, 8, 1},
		{"index overflow", 1, 1, 1024, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCapsule(tt.radius, tt.halfHeight, tt.segments, tt.rings)
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
