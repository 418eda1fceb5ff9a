package shell

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/units"
)

func referenceSpec() BuildingShellSpec {
	return BuildingShellSpec{
		Length:        10000,
		Width:         5000,
		WallThickness: 200,
		SillHeight:    600,
		RoofHeight:    3000,
		RoofOverhang:  300,
		BaseLevel:     "L1",
		TopLevel:      "L2",
		Openings: []OpeningSpec{
			{Kind: Door, Wall: 0, Type: TypeName{Name: "0915 x 2134mm", Family: "Single-Flush"}},
			{Kind: Window, Wall: 1, Type: TypeName{Name: "0915 x 1830mm", Family: "Fixed"}},
			{Kind: Window, Wall: 2, Type: TypeName{Name: "0915 x 1830mm", Family: "Fixed"}},
			{Kind: Window, Wall: 3, Type: TypeName{Name: "0915 x 1830mm", Family: "Fixed"}},
		},
		Roof: RoofSpec{
			Strategy:     RoofExtrusion,
			SlopeDegrees: 30,
			Stride:       1,
			Type:         TypeName{Name: "Generic - 400mm", Family: "Basic Roof"},
		},
	}
}

func referenceLevels() LevelMap {
	return LevelMap{
		"L1": {ID: "1", Name: "L1", Elevation: 0},
		"L2": {ID: "2", Name: "L2", Elevation: units.Feet.ToInternal(4000)},
	}
}

func millimeterLevels() LevelMap {
	return LevelMap{
		"L1": {ID: "1", Name: "L1", Elevation: 0},
		"L2": {ID: "2", Name: "L2", Elevation: 4000},
	}
}

func TestGenerateReferenceScenario(t *testing.T) {
	plan, err := Generate(referenceSpec(), referenceLevels(), units.Feet)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	conv := units.Feet

	wantLengths := []float64{10000, 5000, 10000, 5000}
	for i, w := range plan.Walls {
		if !near(w.Length(), conv.ToInternal(wantLengths[i])) {
			t.Errorf("wall %d length = %v, want %v", i, w.Length(), conv.ToInternal(wantLengths[i]))
		}
		if w.Base.Name != "L1" || w.Top.Name != "L2" {
			t.Errorf("wall %d levels %q/%q", i, w.Base.Name, w.Top.Name)
		}
	}

	if len(plan.Openings) != 4 {
		t.Fatalf("expected 4 openings, got %d", len(plan.Openings))
	}
	door := plan.Openings[0]
	if door.Kind != Door || !nearVec(door.Point, geom.V(0, -conv.ToInternal(5000)/2, 0)) {
		t.Errorf("door = %+v, want midpoint of the south wall", door)
	}
	if door.Type.Family != "Single-Flush" {
		t.Errorf("door type = %v", door.Type)
	}
	win := plan.Openings[1]
	if win.Kind != Window || win.Wall != 1 || !near(win.SillHeight, conv.ToInternal(600)) {
		t.Errorf("window = %+v, want sill %v on wall 1", win, conv.ToInternal(600))
	}

	ext := plan.Extrusion()
	if ext == nil || plan.Footprint() != nil {
		t.Fatalf("expected an extrusion roof only, got %T", plan.Roof)
	}
	if !near(ext.Offset, conv.ToInternal(400)) {
		t.Errorf("dt = %v, want %v", ext.Offset, conv.ToInternal(400))
	}
	if ext.Level.Name != "L2" {
		t.Errorf("roof level = %q, want top level L2", ext.Level.Name)
	}
	if !near(ext.Gables[0].Eave.Z, ext.Level.Elevation) {
		t.Errorf("eave z = %v, want roof level elevation", ext.Gables[0].Eave.Z)
	}
	if plan.Units != "feet" || plan.RoofType.Name != "Generic - 400mm" {
		t.Errorf("plan metadata: units %q roof type %v", plan.Units, plan.RoofType)
	}
}

func TestGenerateWindowSillOverride(t *testing.T) {
	spec := referenceSpec()
	sill := 900.0
	spec.Openings[2].SillHeight = &sill

	plan, err := Generate(spec, millimeterLevels(), units.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Openings[1].SillHeight != 600 || plan.Openings[2].SillHeight != 900 {
		t.Errorf("sills = %v, %v", plan.Openings[1].SillHeight, plan.Openings[2].SillHeight)
	}
}

func TestGenerateRejectsSillAboveWall(t *testing.T) {
	tests := []struct {
		name string
		sill float64
	}{
		{"at wall top", 4000},
		{"above wall top", 4500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := referenceSpec()
			sill := tt.sill
			spec.Openings[1].SillHeight = &sill
			_, err := Generate(spec, millimeterLevels(), units.Millimeters)
			if !errors.Is(err, ErrInvalidDimension) {
				t.Fatalf("expected ErrInvalidDimension, got %v", err)
			}
		})
	}
}

func TestGenerateStrategiesExclusive(t *testing.T) {
	tests := []struct {
		name   string
		roof   RoofSpec
		kind   RoofKind
		gables int
	}{
		{"stride 1", RoofSpec{Strategy: RoofExtrusion, Stride: 1}, RoofExtrusion, 4},
		{"stride 2", RoofSpec{Strategy: RoofExtrusion, Stride: 2}, RoofExtrusion, 2},
		{"footprint", RoofSpec{Strategy: RoofFootprint, SlopeDegrees: 30}, RoofFootprint, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := referenceSpec()
			tt.roof.Type = spec.Roof.Type
			spec.Roof = tt.roof

			plan, err := Generate(spec, referenceLevels(), units.Feet)
			if err != nil {
				t.Fatal(err)
			}
			if plan.Roof.Kind() != tt.kind {
				t.Fatalf("roof kind = %v, want %v", plan.Roof.Kind(), tt.kind)
			}
			switch r := plan.Roof.(type) {
			case *ExtrusionRoof:
				if len(r.Gables) != tt.gables {
					t.Errorf("gables = %d, want %d", len(r.Gables), tt.gables)
				}
			case *FootprintRoof:
				if plan.Extrusion() != nil {
					t.Error("footprint plan also reports an extrusion roof")
				}
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuildingShellSpec)
		want   error
	}{
		{"zero length", func(s *BuildingShellSpec) { s.Length = 0 }, ErrInvalidDimension},
		{"walls thicker than plan", func(s *BuildingShellSpec) { s.WallThickness = 2600 }, ErrInvalidDimension},
		{"negative overhang", func(s *BuildingShellSpec) { s.RoofOverhang = -1 }, ErrInvalidDimension},
		{"zero roof height", func(s *BuildingShellSpec) { s.RoofHeight = 0 }, ErrInvalidDimension},
		{"bad stride", func(s *BuildingShellSpec) { s.Roof.Stride = 4 }, ErrInvalidDimension},
		{"opening wall out of range", func(s *BuildingShellSpec) { s.Openings[0].Wall = 4 }, ErrInvalidDimension},
		{"unknown base level", func(s *BuildingShellSpec) { s.BaseLevel = "Basement" }, ErrLevelNotFound},
		{"empty top level", func(s *BuildingShellSpec) { s.TopLevel = "" }, ErrLevelNotFound},
		{"unknown roof level", func(s *BuildingShellSpec) { s.Roof.Level = "Attic" }, ErrLevelNotFound},
		{"missing roof type", func(s *BuildingShellSpec) { s.Roof.Type = TypeName{} }, ErrMissingRoofType},
		{"missing window type", func(s *BuildingShellSpec) { s.Openings[1].Type.Name = "" }, ErrTypeNotFound},
		{"sill above top level", func(s *BuildingShellSpec) { s.SillHeight = 4500 }, ErrInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := referenceSpec()
			tt.mutate(&spec)
			plan, err := Generate(spec, referenceLevels(), units.Feet)
			if err == nil {
				t.Fatal("expected an error")
			}
			if plan != nil {
				t.Error("expected no partial plan")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error %v is not %v", err, tt.want)
			}
		})
	}
}

func TestGenerateFootprintRoofIgnoresRoofHeight(t *testing.T) {
	spec := referenceSpec()
	spec.RoofHeight = 0
	spec.Roof = RoofSpec{Strategy: RoofFootprint, SlopeDegrees: 25, Type: spec.Roof.Type}
	if _, err := Generate(spec, referenceLevels(), units.Feet); err != nil {
		t.Fatalf("footprint roof should not need a roof height: %v", err)
	}

	for _, h := range []float64{-1, math.NaN(), math.Inf(1)} {
		spec.RoofHeight = h
		if err := Validate(spec); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("roof height %v: expected ErrInvalidDimension, got %v", h, err)
		}
	}
}

func TestGenerateNilResolver(t *testing.T) {
	if _, err := Generate(referenceSpec(), nil, units.Feet); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestValidateCollectsAllFindings(t *testing.T) {
	spec := referenceSpec()
	spec.Length = -1
	spec.Width = 0
	spec.Roof.Type = TypeName{}

	err := Validate(spec)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(err, ErrInvalidDimension) || !errors.Is(err, ErrMissingRoofType) {
		t.Errorf("joined error missing a kind: %v", err)
	}
	if errors.Is(err, ErrLevelNotFound) {
		t.Errorf("unexpected level error in %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	err := LevelNotFound("L9")
	if got := err.Error(); got != `shell: level: level not found: no level named "L9"` {
		t.Errorf("Error() = %q", got)
	}
	if errors.Is(err, ErrTypeNotFound) {
		t.Error("level error matched type sentinel")
	}
}
