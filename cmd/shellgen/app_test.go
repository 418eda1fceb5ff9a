package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/kernel/sdfx"
	"github.com/chazu/shellgen/pkg/shell"
	"github.com/chazu/shellgen/pkg/specfile"
	"github.com/chazu/shellgen/pkg/units"
)

func newTestApp() *App {
	return NewApp(sdfx.NewWithResolution(120), units.Millimeters, nil)
}

// TestE2EHouseSource exercises the full pipeline: DSL source -> engine ->
// plan -> host document -> meshes.
func TestE2EHouseSource(t *testing.T) {
	app := newTestApp()

	source, err := os.ReadFile("../../examples/house.shell")
	if err != nil {
		t.Fatalf("failed to read house.shell: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if result.Plan == nil || result.Created == nil {
		t.Fatal("expected a plan and created elements")
	}
	if len(result.Created.Openings) != 4 || len(result.Created.Roofs) != 4 {
		t.Errorf("created %d openings, %d roofs", len(result.Created.Openings), len(result.Created.Roofs))
	}

	// Four walls and four gables.
	if len(result.Meshes) != 8 {
		t.Fatalf("expected 8 meshes, got %d", len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("mesh %q: empty geometry", m.Name)
		}
		if m.Element == "" {
			t.Errorf("mesh %q: no element id", m.Name)
		}
		if m.Color != colorPalette[i%len(colorPalette)] {
			t.Errorf("mesh %q: color %q", m.Name, m.Color)
		}
	}
}

func TestE2EHouseFile(t *testing.T) {
	app := newTestApp()

	f, err := specfile.Load("../../examples/house.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	result := app.Generate(f)
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}

	if result.Plan.Footprint() == nil {
		t.Fatal("expected a footprint roof plan")
	}
	if len(result.Meshes) != 5 {
		t.Fatalf("expected 5 meshes (4 walls, 1 roof), got %d", len(result.Meshes))
	}
	if result.Meshes[4].Name != "footprint roof 0" {
		t.Errorf("roof mesh name = %q", result.Meshes[4].Name)
	}
	if got := result.Plan.Openings[2].SillHeight; got != 900 {
		t.Errorf("wall 2 window sill = %v, want 900", got)
	}
}

func TestE2EDefaultScenarioInFeet(t *testing.T) {
	app := NewApp(nil, units.Feet, nil)
	result := app.Generate(specfile.Default())
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if result.Plan.Units != "feet" {
		t.Errorf("units = %q", result.Plan.Units)
	}
	wantLength := units.Feet.ToInternal(10000)
	if got := result.Plan.Walls[0].Length(); got < wantLength-1e-9 || got > wantLength+1e-9 {
		t.Errorf("wall 0 length = %v ft, want %v", got, wantLength)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("meshing disabled but got %d meshes", len(result.Meshes))
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp()

	for _, source := range []string{"", "   \n\t  ", ";; comments only\n;; nothing else\n"} {
		result := app.Evaluate(source)
		if len(result.Errors) == 0 {
			t.Errorf("%q: expected an error", source)
		}
		if len(result.Meshes) != 0 || result.Plan != nil {
			t.Errorf("%q: expected no output", source)
		}
		// Slices stay non-nil so JSON shows [] rather than null.
		if result.Meshes == nil || result.Errors == nil {
			t.Errorf("%q: nil slices in result", source)
		}
	}
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(building-shell :length 10000"
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2EInvalidShell(t *testing.T) {
	base := specfile.Default()

	tests := []struct {
		name   string
		mutate func(f *specfile.File)
		want   string
	}{
		{"zero length", func(f *specfile.File) { f.Shell.Length = 0 }, "length"},
		{"negative width", func(f *specfile.File) { f.Shell.Width = -5000 }, "width"},
		{"wall index", func(f *specfile.File) { f.Shell.Openings[0].Wall = 4 }, "wall"},
		{"missing level", func(f *specfile.File) { f.Levels = f.Levels[:1] }, "Level 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			f.Levels = append([]specfile.LevelDef(nil), base.Levels...)
			f.Shell.Openings = append([]shell.OpeningSpec(nil), base.Shell.Openings...)
			tt.mutate(&f)

			result := newTestApp().Generate(f)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error")
			}
			if !strings.Contains(result.Errors[0].Message, tt.want) {
				t.Errorf("error %q does not mention %q", result.Errors[0].Message, tt.want)
			}
			if result.Created != nil || len(result.Meshes) != 0 {
				t.Error("nothing should be built for an invalid shell")
			}
		})
	}
}

func TestE2ERapidEvaluation(t *testing.T) {
	// Sequential calls on one App exercise the engine's generation counter.
	app := NewApp(nil, units.Millimeters, nil)

	sources := []string{
		`(building-shell :length 10000 :width 5000 :wall-thickness 200 :base-level "L1" :top-level "L2" :roof (footprint-roof :slope 30 :type "R" :family "F"))`,
		`(+ 1 2)`,
		``,
		`(building-shell :length 8000 :width 6000 :wall-thickness 300 :base-level "L1" :top-level "L2" :roof-height 2500 :roof (extrusion-roof :stride 2 :type "R" :family "F"))`,
		`(building-shell`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	result := app.Evaluate(sources[3])
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Created.Roofs) != 2 {
		t.Errorf("roofs = %d, want 2", len(result.Created.Roofs))
	}
}

func TestResultJSON(t *testing.T) {
	result := NewApp(nil, units.Millimeters, nil).Generate(specfile.Default())
	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Plan struct {
			Units string `json:"units"`
			Roof  struct {
				Gables []json.RawMessage `json:"gables"`
			} `json:"roof"`
		} `json:"plan"`
		Created host.Result `json:"created"`
		Meshes  []MeshData  `json:"meshes"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Plan.Units != "mm" {
		t.Errorf("units = %q", decoded.Plan.Units)
	}
	if len(decoded.Plan.Roof.Gables) != 4 {
		t.Errorf("gables = %d, want 4", len(decoded.Plan.Roof.Gables))
	}
	if decoded.Created.Walls[3] == "" {
		t.Error("created walls missing from JSON")
	}
	if decoded.Meshes == nil {
		t.Error("meshes should encode as [] not null")
	}
}
