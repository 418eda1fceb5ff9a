package shell

import (
	"math"

	"github.com/chazu/shellgen/pkg/geom"
)

// closeTol is the distance under which two loop points are considered equal.
const closeTol = 1e-9

// BuildLoop turns the closed corner sequence into four wall segments. Wall i
// spans corners[i] -> corners[i+1] and carries the given levels and thickness.
func BuildLoop(corners [LoopSize + 1]geom.Vec3, thickness float64, base, top Level) (Loop, error) {
	var loop Loop
	if !geom.Near(corners[0], corners[LoopSize], closeTol) {
		return loop, invalidDimension("wall loop", "corner sequence is not closed: %v != %v", corners[0], corners[LoopSize])
	}
	if !(thickness > 0) || math.IsInf(thickness, 0) {
		return loop, invalidDimension("wall loop", "wall thickness %v must be positive", thickness)
	}
	if top.Elevation <= base.Elevation {
		return loop, invalidDimension("wall loop", "top level %q (%.4f) must be above base level %q (%.4f)",
			top.Name, top.Elevation, base.Name, base.Elevation)
	}

	for i := 0; i < LoopSize; i++ {
		line := geom.Line{Start: corners[i], End: corners[i+1]}
		if line.Length() <= closeTol {
			return loop, invalidDimension("wall loop", "wall %d has zero length", i)
		}
		loop[i] = WallSegment{
			Index:     i,
			Line:      line,
			Thickness: thickness,
			Base:      base,
			Top:       top,
		}
	}
	return loop, nil
}

// BuildRectangle is CornersBySize followed by BuildLoop.
func BuildRectangle(length, width, thickness float64, base, top Level) (Loop, error) {
	corners, err := CornersBySize(length, width)
	if err != nil {
		return Loop{}, err
	}
	if length <= 2*thickness || width <= 2*thickness {
		return Loop{}, invalidDimension("wall loop",
			"plan %.4f x %.4f must exceed twice the wall thickness %.4f", length, width, thickness)
	}
	return BuildLoop(corners, thickness, base, top)
}
