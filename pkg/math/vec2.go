// Package math provides the float32 vector, matrix and quaternion types
// used by the OVO codec and the scene tools.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector. Texture coordinates use X for U and Y for V.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Clamp01 clamps both components to [0, 1].
func (v Vec2) Clamp01() Vec2 {
	return Vec2{clamp(v.X, 0, 1), clamp(v.Y, 0, 1)}
}

func clamp(f, lo, hi float32) float32 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
