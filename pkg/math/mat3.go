package math

import "github.com/chewxy/math32"

// Mat3 is a 3x3 matrix in row-major order: m[row][col].
type Mat3 [3][3]float32

// Mat3Identity returns the identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mat3AxisAngle returns a right-handed rotation of angle radians around axis
// (Rodrigues' formula). The axis does not need to be normalized.
func Mat3AxisAngle(axis Vec3, angle float32) Mat3 {
	axis = axis.Normalize()
	x, y, z := axis.X, axis.Y, axis.Z
	c := math32.Cos(angle)
	s := math32.Sin(angle)
	t := 1 - c

	return Mat3{
		{c + x*x*t, x*y*t - z*s, x*z*t + y*s},
		{y*x*t + z*s, c + y*y*t, y*z*t - x*s},
		{z*x*t - y*s, z*y*t + x*s, c + z*z*t},
	}
}

// Transform returns m * v.
func (m Mat3) Transform(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
