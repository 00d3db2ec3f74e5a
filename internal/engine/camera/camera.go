// Package camera provides the viewer's orbit camera.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/almond/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians, positive looks down
	Yaw      float32 // radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32
}

// NewOrbitCamera creates an orbit camera sized for world units.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        8,
		Pitch:           0.5,
		MinDistance:     0.5,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             70,
		Near:            0.05,
		Far:             1000,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp, sp := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cy, sy := math32.Cos(c.Yaw), math32.Sin(c.Yaw)
	return c.Center.Add(math.Vec3{X: cp * sy, Y: sp, Z: cp * cy}.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(math.Radians(c.FOV), aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag rotates the camera by a mouse delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom scales the distance by a wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center relative to the current yaw.
// Speed scales with distance.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sy, cy := math32.Sin(c.Yaw), math32.Cos(c.Yaw)

	// W moves into the scene
	move := math.Vec3{
		X: -sy*forward + cy*right,
		Y: up,
		Z: -cy*forward - sy*right,
	}
	c.Center = c.Center.Add(move.Scale(speed))
}

// FitToBounds centers the camera on a box and backs off until it fits.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)

	radius := hi.Sub(lo).Length() / 2
	dist := radius / math32.Tan(math.Radians(c.FOV)/2)
	c.Distance = clamp(dist, c.MinDistance, c.MaxDistance)
	c.Pitch = 0.6
	c.Yaw = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
