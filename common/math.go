package common

import "math"

// Vec2 is a real-valued 2D vector in world or screen units.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a real-valued 3D vector in world units.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// LengthSq returns the squared length of v.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// XY drops the Z component.
func (v Vec3) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// RoundToInt32 rounds half away from zero.
func RoundToInt32(f float32) int32 {
	return int32(math.Round(float64(f)))
}

// RoundToUint32 rounds half away from zero. Negative inputs yield 0.
func RoundToUint32(f float32) uint32 {
	r := math.Round(float64(f))
	if r < 0 {
		return 0
	}
	return uint32(r)
}

// Clamp01 limits f to [0, 1].
func Clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
