package shell

import (
	"math"
)

// PlaceOnWall computes the insertion of a door or window at the midpoint of
// the wall's centerline. Windows carry sill as their sill-height offset; for
// doors sill is ignored. Overlap between openings on one wall is not checked.
func PlaceOnWall(wall WallSegment, kind OpeningKind, sill float64) (Opening, error) {
	op := Opening{
		Kind:  kind,
		Wall:  wall.Index,
		Level: wall.Base,
		Point: wall.Line.Midpoint(),
	}
	switch kind {
	case Door:
	case Window:
		if sill < 0 || math.IsNaN(sill) || math.IsInf(sill, 0) {
			return Opening{}, invalidDimension("opening", "window sill height %v must be >= 0", sill)
		}
		if h := wall.Height(); h > 0 && sill >= h {
			return Opening{}, invalidDimension("opening", "window sill height %v reaches the top of wall %d (%v)", sill, wall.Index, h)
		}
		op.SillHeight = sill
	default:
		return Opening{}, invalidDimension("opening", "unknown opening kind %d", int(kind))
	}
	return op, nil
}
