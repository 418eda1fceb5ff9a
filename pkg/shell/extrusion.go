package shell

import (
	"math"

	"github.com/chazu/shellgen/pkg/geom"
)

// ExtrusionParams configures BuildExtrusion.
type ExtrusionParams struct {
	Height   float64 // ridge height above the eave
	Overhang float64 // eave overhang beyond the outer wall face
	Stride   int     // 1 visits every wall, 2 every second wall; 0 means 1
	EaveCut  EaveCut
	// Level hosts the roof and sets the eave elevation. Nil means the base
	// level of each profile's reference wall.
	Level *Level
}

// BuildExtrusion computes one gable profile per visited wall. For wall i the
// profile is anchored on the previous wall j (j = 3 when i = 0):
//
//	dt        = thickness/2 + overhang
//	eave      = wall[j].End + offset[i]
//	ridgeBase = mid(wall[j]) + (offset[i] + offset[j]) / 2
//	ridge     = ridgeBase + (0, 0, height)
//
// and the triangle is swept along wall i for wall[i].Length + 2*dt. With
// stride 1 the result is four one-sided roof planes; stride 2 gives two,
// forming a two-sided gable roof.
func BuildExtrusion(loop Loop, p ExtrusionParams) (*ExtrusionRoof, error) {
	if !(p.Height > 0) || math.IsInf(p.Height, 0) {
		return nil, invalidDimension("extrusion roof", "roof height %v must be positive", p.Height)
	}
	if p.Overhang < 0 || math.IsNaN(p.Overhang) || math.IsInf(p.Overhang, 0) {
		return nil, invalidDimension("extrusion roof", "overhang %v must be >= 0", p.Overhang)
	}
	stride := p.Stride
	if stride == 0 {
		stride = 1
	}
	if stride != 1 && stride != 2 {
		return nil, invalidDimension("extrusion roof", "edge stride %d must be 1 or 2", p.Stride)
	}
	thickness := loop[0].Thickness
	if !(thickness > 0) || math.IsInf(thickness, 0) {
		return nil, invalidDimension("extrusion roof", "wall thickness %v unavailable", thickness)
	}

	dt := thickness/2 + p.Overhang
	offsets := cornerOffsets(dt, dt)

	roof := &ExtrusionRoof{
		Stride:   stride,
		EaveCut:  p.EaveCut,
		Height:   p.Height,
		Overhang: p.Overhang,
		Offset:   dt,
		Level:    loop[0].Base,
	}
	if p.Level != nil {
		roof.Level = *p.Level
	}

	for i := 0; i < LoopSize; i += stride {
		j := geom.Prev(i, LoopSize)
		ref := loop[j]

		elevation := ref.Base.Elevation
		if p.Level != nil {
			elevation = p.Level.Elevation
		}

		eave := ref.Line.End.Add(offsets[i]).Lift(elevation)
		ridgeBase := ref.Line.Midpoint().
			Add(offsets[i].Add(offsets[j]).Scale(0.5)).
			Lift(elevation)
		ridge := ridgeBase.Lift(p.Height)
		length := loop[i].Length() + 2*dt

		roof.Gables = append(roof.Gables, GableProfile{
			Wall:      i,
			Ref:       j,
			Eave:      eave,
			Ridge:     ridge,
			RidgeBase: ridgeBase,
			Length:    length,
			Normal:    loop[i].Line.Direction().Neg(),
			Start:     -length,
			End:       0,
		})
	}
	return roof, nil
}
