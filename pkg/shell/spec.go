package shell

import (
	"errors"
	"fmt"
	"math"
)

// BuildingShellSpec is the single input to the generation pipeline. All
// lengths are millimeters; Generate converts each exactly once.
type BuildingShellSpec struct {
	Length        float64 `yaml:"length" json:"length"`
	Width         float64 `yaml:"width" json:"width"`
	WallThickness float64 `yaml:"wall_thickness" json:"wall_thickness"`
	SillHeight    float64 `yaml:"sill_height" json:"sill_height"`
	RoofHeight    float64 `yaml:"roof_height" json:"roof_height"`
	RoofOverhang  float64 `yaml:"roof_overhang" json:"roof_overhang"`
	BaseLevel     string  `yaml:"base_level" json:"base_level"`
	TopLevel      string  `yaml:"top_level" json:"top_level"`
	Structural    bool    `yaml:"structural" json:"structural"`

	Openings []OpeningSpec `yaml:"openings" json:"openings"`
	Roof     RoofSpec      `yaml:"roof" json:"roof"`
}

// OpeningSpec places one door or window on a wall of the loop.
type OpeningSpec struct {
	Kind OpeningKind `yaml:"kind" json:"kind"`
	Wall int         `yaml:"wall" json:"wall"`
	// SillHeight overrides the spec-wide sill height for this window.
	SillHeight *float64 `yaml:"sill_height,omitempty" json:"sill_height,omitempty"`
	Type       TypeName `yaml:"type" json:"type"`
}

// RoofSpec selects and configures exactly one roof strategy.
type RoofSpec struct {
	Strategy     RoofKind `yaml:"strategy" json:"strategy"`
	SlopeDegrees float64  `yaml:"slope_degrees" json:"slope_degrees"` // footprint only
	Stride       int      `yaml:"stride" json:"stride"`               // extrusion only
	EaveCut      EaveCut  `yaml:"eave_cut" json:"eave_cut"`           // extrusion only
	Level        string   `yaml:"level,omitempty" json:"level,omitempty"`
	Type         TypeName `yaml:"type" json:"type"`
}

// RoofLevelName returns the level hosting the roof, defaulting to the top level.
func (s BuildingShellSpec) RoofLevelName() string {
	if s.Roof.Level != "" {
		return s.Roof.Level
	}
	return s.TopLevel
}

// sillFor returns the sill height that applies to o.
func (s BuildingShellSpec) sillFor(o OpeningSpec) float64 {
	if o.SillHeight != nil {
		return *o.SillHeight
	}
	return s.SillHeight
}

// Validate checks every input invariant and returns all findings joined, or
// nil. It does not consult the host.
func Validate(s BuildingShellSpec) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, invalidDimension("spec", format, args...))
	}
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	if !(s.Length > 0) || !finite(s.Length) {
		bad("plan length %v must be positive", s.Length)
	}
	if !(s.Width > 0) || !finite(s.Width) {
		bad("plan width %v must be positive", s.Width)
	}
	if !(s.WallThickness > 0) || !finite(s.WallThickness) {
		bad("wall thickness %v must be positive", s.WallThickness)
	} else if s.Length <= 2*s.WallThickness || s.Width <= 2*s.WallThickness {
		bad("plan %v x %v must exceed twice the wall thickness %v", s.Length, s.Width, s.WallThickness)
	}
	if s.SillHeight < 0 || !finite(s.SillHeight) {
		bad("sill height %v must be >= 0", s.SillHeight)
	}
	if s.RoofHeight < 0 || !finite(s.RoofHeight) {
		bad("roof height %v must be >= 0", s.RoofHeight)
	}
	if s.RoofOverhang < 0 || !finite(s.RoofOverhang) {
		bad("roof overhang %v must be >= 0", s.RoofOverhang)
	}

	if s.BaseLevel == "" {
		errs = append(errs, &Error{Kind: KindLevelNotFound, Op: "spec", Message: "base level name is empty"})
	}
	if s.TopLevel == "" {
		errs = append(errs, &Error{Kind: KindLevelNotFound, Op: "spec", Message: "top level name is empty"})
	}

	for i, o := range s.Openings {
		if o.Wall < 0 || o.Wall >= LoopSize {
			bad("opening %d: wall index %d outside 0..%d", i, o.Wall, LoopSize-1)
		}
		if o.Kind != Door && o.Kind != Window {
			bad("opening %d: unknown kind %d", i, int(o.Kind))
		}
		if o.Kind == Window {
			if sill := s.sillFor(o); sill < 0 || !finite(sill) {
				bad("opening %d: sill height %v must be >= 0", i, sill)
			}
		}
		if o.Type.Name == "" || o.Type.Family == "" {
			errs = append(errs, &Error{
				Kind:    KindTypeNotFound,
				Op:      "spec",
				Message: fmt.Sprintf("opening %d: %s type and family names are required", i, o.Kind),
			})
		}
	}

	switch s.Roof.Strategy {
	case RoofExtrusion:
		if s.RoofHeight == 0 {
			bad("roof height %v must be positive", s.RoofHeight)
		}
		if s.Roof.Stride != 0 && s.Roof.Stride != 1 && s.Roof.Stride != 2 {
			bad("roof edge stride %d must be 1 or 2", s.Roof.Stride)
		}
	case RoofFootprint:
		if !(s.Roof.SlopeDegrees > 0 && s.Roof.SlopeDegrees < 90) {
			bad("roof slope %v must be within (0, 90) degrees", s.Roof.SlopeDegrees)
		}
	default:
		bad("unknown roof strategy %d", int(s.Roof.Strategy))
	}
	if s.Roof.Type.Name == "" || s.Roof.Type.Family == "" {
		errs = append(errs, &Error{Kind: KindMissingRoofType, Op: "spec", Message: "roof type and family names are required"})
	}

	return errors.Join(errs...)
}
