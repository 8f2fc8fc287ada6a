// Package vec provides the 2D vector math used by the simulation core.
package vec

import "math"

// Vec2 is a 2D vector. Positions are expressed in grid cells, velocities in
// cells per second.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the vector magnitude.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LenSq returns the squared magnitude, avoiding the square root when only
// comparisons are needed.
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalized returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// DistSq returns the squared distance between a and b.
func DistSq(a, b Vec2) float64 {
	return a.Sub(b).LenSq()
}

// Dist returns the distance between a and b.
func Dist(a, b Vec2) float64 {
	return math.Sqrt(DistSq(a, b))
}
