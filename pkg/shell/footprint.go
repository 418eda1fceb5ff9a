package shell

import (
	"math"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/units"
)

// FootprintParams configures BuildFootprint.
type FootprintParams struct {
	SlopeDegrees float64
	// Level hosts the roof. Nil means the base level of wall 0.
	Level *Level
}

// BuildFootprint offsets the wall loop by half the wall thickness and assigns
// one slope to every edge. Edge i runs from wall[i].Start + offset[i] to
// wall[i].End + offset[i+1]: its end point takes the next corner's offset.
func BuildFootprint(loop Loop, p FootprintParams) (*FootprintRoof, error) {
	if !(p.SlopeDegrees > 0 && p.SlopeDegrees < 90) {
		return nil, invalidDimension("footprint roof", "slope %v must be within (0, 90) degrees", p.SlopeDegrees)
	}
	thickness := loop[0].Thickness
	if !(thickness > 0) || math.IsInf(thickness, 0) {
		return nil, invalidDimension("footprint roof", "wall thickness %v unavailable", thickness)
	}

	level := loop[0].Base
	if p.Level != nil {
		level = *p.Level
	}

	dt := thickness / 2
	offsets := cornerOffsets(dt, dt)

	roof := &FootprintRoof{
		SlopeDegrees: p.SlopeDegrees,
		Slope:        units.SlopeFromDegrees(p.SlopeDegrees),
		Level:        level,
	}
	for i, w := range loop {
		edge := w.Line.Offset(offsets[i], offsets[geom.Next(i, LoopSize)])
		edge.Start.Z = level.Elevation
		edge.End.Z = level.Elevation
		roof.Edges[i] = edge
	}
	return roof, nil
}
