package csg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/almond/pkg/math"
)

func TestDominantAxis(t *testing.T) {
	tests := []struct {
		normal math.Vec3
		want   Axis
	}{
		{vec(0, 0, 1), AxisFloor},
		{vec(0.01, -0.02, 0.99).Normalize(), AxisFloor},
		{vec(0, 0, -1), AxisCeiling},
		{vec(1, 0, 0), AxisWest},
		{vec(-1, 0, 0), AxisEast},
		{vec(0, 1, 0), AxisSouth},
		{vec(0, -1, 0), AxisNorth},
		// Ties keep the earlier entry.
		{vec(1, 0, 1).Normalize(), AxisFloor},
		{vec(1, 1, 0).Normalize(), AxisWest},
		{vec(0, -1, -1).Normalize(), AxisCeiling},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DominantAxis(tt.normal))
		})
	}
}

func TestFloorProjection(t *testing.T) {
	noisy := vec(0.003, -0.002, 1).Normalize()
	p := NewProjection(noisy, TexInfo{Scale: math.Vec2{X: 1, Y: 1}})

	assert.Equal(t, AxisFloor, p.Axis)
	assert.Equal(t, vec(1, 0, 0), p.U)
	assert.Equal(t, vec(0, -1, 0), p.V)

	uv := p.Project(vec(32, -64, 5))
	assert.InDelta(t, 1, uv.X, 1e-6)
	assert.InDelta(t, 2, uv.Y, 1e-6)
}

func TestProjectionScaleAndOffset(t *testing.T) {
	p := NewProjection(vec(0, 0, 1), TexInfo{
		Offset: math.Vec2{X: 16, Y: -8},
		Scale:  math.Vec2{X: 2, Y: 0},
	})

	assert.Equal(t, vec(0.5, 0, 0), p.U)
	assert.Equal(t, vec(0, -1, 0), p.V, "zero scale counts as one")

	uv := p.Project(vec(64, 8, 0))
	assert.InDelta(t, (32+16)/32.0, uv.X, 1e-6)
	assert.InDelta(t, (-8-8)/32.0, uv.Y, 1e-6)
}

func TestProjectionRotation(t *testing.T) {
	p := NewProjection(vec(0, 0, 1), TexInfo{Scale: math.Vec2{X: 1, Y: 1}, Rotation: 90})
	assert.True(t, p.U.ApproxEqual(vec(0, 1, 0), 1e-6), "U = %v", p.U)
	assert.True(t, p.V.ApproxEqual(vec(1, 0, 0), 1e-6), "V = %v", p.V)

	wall := NewProjection(vec(1, 0, 0), TexInfo{Scale: math.Vec2{X: 1, Y: 1}, Rotation: 180})
	assert.True(t, wall.U.ApproxEqual(vec(0, -1, 0), 1e-6), "U = %v", wall.U)
	assert.True(t, wall.V.ApproxEqual(vec(0, 0, 1), 1e-6), "V = %v", wall.V)

	tiny := NewProjection(vec(0, 0, 1), TexInfo{Scale: math.Vec2{X: 1, Y: 1}, Rotation: 0.0005})
	assert.Equal(t, vec(1, 0, 0), tiny.U)
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "floor", AxisFloor.String())
	assert.Equal(t, "north", AxisNorth.String())
	assert.Equal(t, "unknown", Axis(6).String())
}
