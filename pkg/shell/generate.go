package shell

import (
	"errors"

	"github.com/chazu/shellgen/pkg/units"
)

// LevelResolver looks up host levels by name. Host documents implement it;
// a missing level must be reported as an error, never a zero Level.
type LevelResolver interface {
	LevelByName(name string) (Level, error)
}

// Plan is the fully computed and validated geometry for one building shell.
// All lengths are internal units. A Plan is built before any host call is made
// and is never mutated afterwards.
type Plan struct {
	Spec       BuildingShellSpec `json:"spec"` // inputs as given, millimeters
	Units      string            `json:"units"`
	Structural bool              `json:"structural"`
	Walls      Loop              `json:"walls"`
	Openings   []Opening         `json:"openings"`
	Roof       RoofProfile       `json:"roof"`
	RoofType   TypeName          `json:"roof_type"`
}

// Footprint returns the roof as a footprint roof, or nil.
func (p *Plan) Footprint() *FootprintRoof {
	r, _ := p.Roof.(*FootprintRoof)
	return r
}

// Extrusion returns the roof as an extrusion roof, or nil.
func (p *Plan) Extrusion() *ExtrusionRoof {
	r, _ := p.Roof.(*ExtrusionRoof)
	return r
}

// Generate validates spec, resolves its levels and computes the entire
// geometry set. Either every piece is computed or an error is returned;
// callers issue host creation calls only with a complete Plan.
func Generate(spec BuildingShellSpec, levels LevelResolver, conv units.Converter) (*Plan, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	base, err := resolveLevel(levels, spec.BaseLevel)
	if err != nil {
		return nil, err
	}
	top, err := resolveLevel(levels, spec.TopLevel)
	if err != nil {
		return nil, err
	}
	roofLevel := top
	if name := spec.RoofLevelName(); name != top.Name {
		if roofLevel, err = resolveLevel(levels, name); err != nil {
			return nil, err
		}
	}

	// Each millimeter input is converted exactly once, here.
	length := conv.ToInternal(spec.Length)
	width := conv.ToInternal(spec.Width)
	thickness := conv.ToInternal(spec.WallThickness)

	walls, err := BuildRectangle(length, width, thickness, base, top)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Spec:       spec,
		Units:      conv.Name(),
		Structural: spec.Structural,
		Walls:      walls,
		RoofType:   spec.Roof.Type,
	}

	for _, req := range spec.Openings {
		sill := 0.0
		if req.Kind == Window {
			sill = conv.ToInternal(spec.sillFor(req))
		}
		o, err := PlaceOnWall(walls[req.Wall], req.Kind, sill)
		if err != nil {
			return nil, err
		}
		o.Type = req.Type
		plan.Openings = append(plan.Openings, o)
	}

	switch spec.Roof.Strategy {
	case RoofFootprint:
		plan.Roof, err = BuildFootprint(walls, FootprintParams{
			SlopeDegrees: spec.Roof.SlopeDegrees,
			Level:        &roofLevel,
		})
	case RoofExtrusion:
		plan.Roof, err = BuildExtrusion(walls, ExtrusionParams{
			Height:   conv.ToInternal(spec.RoofHeight),
			Overhang: conv.ToInternal(spec.RoofOverhang),
			Stride:   spec.Roof.Stride,
			EaveCut:  spec.Roof.EaveCut,
			Level:    &roofLevel,
		})
	default:
		err = invalidDimension("roof", "unknown roof strategy %d", int(spec.Roof.Strategy))
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// resolveLevel wraps resolver failures that are not already typed.
func resolveLevel(levels LevelResolver, name string) (Level, error) {
	if levels == nil {
		return Level{}, &Error{Kind: KindLevelNotFound, Op: "level", Message: "no level resolver"}
	}
	lvl, err := levels.LevelByName(name)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return Level{}, err
		}
		return Level{}, &Error{Kind: KindLevelNotFound, Op: "level", Message: name, Err: err}
	}
	return lvl, nil
}

// LevelMap is a LevelResolver over a fixed set of levels, keyed by name.
type LevelMap map[string]Level

// LevelByName implements LevelResolver.
func (m LevelMap) LevelByName(name string) (Level, error) {
	lvl, ok := m[name]
	if !ok {
		return Level{}, LevelNotFound(name)
	}
	if lvl.Name == "" {
		lvl.Name = name
	}
	return lvl, nil
}
