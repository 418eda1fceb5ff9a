// Package geom provides the 3D value types shared by the shell generator:
// points/vectors, bounded lines, and modular index helpers for closed loops.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a point or vector in internal length units.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// V returns a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// WithZ returns v with its Z replaced by z.
func (v Vec3) WithZ(z float64) Vec3 { return Vec3{v.X, v.Y, z} }

// Lift returns v moved up by dz.
func (v Vec3) Lift(dz float64) Vec3 { return Vec3{v.X, v.Y, v.Z + dz} }

func (v Vec3) String() string { return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z) }

// Cross returns v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Mid returns the midpoint of a and b.
func Mid(a, b Vec3) Vec3 {
	return a.Add(b).Scale(0.5)
}

// Dist returns the distance between a and b.
func Dist(a, b Vec3) float64 {
	return a.Sub(b).Length()
}

// Near reports whether a and b are within tol of each other.
func Near(a, b Vec3, tol float64) bool {
	return Dist(a, b) <= tol
}

// Line is a bounded straight segment.
type Line struct {
	Start Vec3 `json:"start" yaml:"start"`
	End   Vec3 `json:"end" yaml:"end"`
}

// Length returns the segment length.
func (l Line) Length() float64 { return Dist(l.Start, l.End) }

// Midpoint returns the point halfway along the segment.
func (l Line) Midpoint() Vec3 { return Mid(l.Start, l.End) }

// Direction returns the unit vector from Start to End.
func (l Line) Direction() Vec3 { return l.End.Sub(l.Start).Unit() }

// Offset translates both endpoints, each by its own vector.
func (l Line) Offset(start, end Vec3) Line {
	return Line{Start: l.Start.Add(start), End: l.End.Add(end)}
}

// ---------------------------------------------------------------------------
// Loop indexing
// ---------------------------------------------------------------------------

// Next returns the index after i in a closed loop of n items.
func Next(i, n int) int {
	return Wrap(i+1, n)
}

// Prev returns the index before i in a closed loop of n items.
// Prev(0, n) is n-1.
func Prev(i, n int) int {
	return Wrap(i-1, n)
}

// Wrap maps any integer into [0, n).
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// PolygonArea returns the signed XY-plane area of a closed polygon using the
// shoelace formula. Counter-clockwise winding yields a positive area. The
// closing point may be repeated or omitted.
func PolygonArea(pts []Vec3) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[Next(i, n)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}
