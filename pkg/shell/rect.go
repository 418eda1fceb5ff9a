package shell

import (
	"math"

	"github.com/chazu/shellgen/pkg/geom"
)

// cornerSigns fixes the corner winding used by every builder: counter-clockwise
// starting at the south-west corner.
var cornerSigns = [LoopSize][2]float64{
	{-1, -1},
	{1, -1},
	{1, 1},
	{-1, 1},
}

// cornerOffsets returns the signed (±dx, ±dy, 0) vectors for each corner.
func cornerOffsets(dx, dy float64) [LoopSize]geom.Vec3 {
	var out [LoopSize]geom.Vec3
	for i, s := range cornerSigns {
		out[i] = geom.V(s[0]*dx, s[1]*dy, 0)
	}
	return out
}

// CornersBySize returns the corners of a length x width rectangle centered on
// the origin, counter-clockwise from (-L/2, -W/2). The fifth point repeats the
// first so consecutive pairs describe the four sides.
func CornersBySize(length, width float64) ([LoopSize + 1]geom.Vec3, error) {
	var pts [LoopSize + 1]geom.Vec3
	if !(length > 0) || math.IsInf(length, 0) {
		return pts, invalidDimension("corners", "length %v must be positive", length)
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return pts, invalidDimension("corners", "width %v must be positive", width)
	}

	offsets := cornerOffsets(length/2, width/2)
	copy(pts[:LoopSize], offsets[:])
	pts[LoopSize] = pts[0]
	return pts, nil
}
