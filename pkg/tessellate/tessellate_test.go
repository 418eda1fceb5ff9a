package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/host/memdoc"
	"github.com/chazu/shellgen/pkg/kernel"
	"github.com/chazu/shellgen/pkg/kernel/sdfx"
	"github.com/chazu/shellgen/pkg/shell"
	"github.com/chazu/shellgen/pkg/tessellate"
	"github.com/chazu/shellgen/pkg/units"
)

func newKernel() kernel.Kernel {
	return sdfx.NewWithResolution(120)
}

func houseSpec(roof shell.RoofSpec) shell.BuildingShellSpec {
	return shell.BuildingShellSpec{
		Length:        10000,
		Width:         5000,
		WallThickness: 200,
		SillHeight:    600,
		RoofHeight:    3000,
		RoofOverhang:  300,
		BaseLevel:     "Level 1",
		TopLevel:      "Level 2",
		Openings: []shell.OpeningSpec{
			{Kind: shell.Door, Wall: 0, Type: shell.TypeName{Name: "0915 x 2134mm", Family: "Single-Flush"}},
			{Kind: shell.Window, Wall: 2, Type: shell.TypeName{Name: "0915 x 1830mm", Family: "Fixed"}},
		},
		Roof: roof,
	}
}

var (
	gables = shell.RoofSpec{
		Strategy: shell.RoofExtrusion,
		Stride:   1,
		Type:     shell.TypeName{Name: "Generic - 400mm", Family: "Basic Roof"},
	}
	hip = shell.RoofSpec{
		Strategy:     shell.RoofFootprint,
		SlopeDegrees: 30,
		Type:         shell.TypeName{Name: "Generic - 400mm", Family: "Basic Roof"},
	}
)

// build populates a fresh document with spec. sized controls whether the
// opening types carry a nominal width and height.
func build(t *testing.T, spec shell.BuildingShellSpec, sized bool) *memdoc.Document {
	t.Helper()
	d := memdoc.New(memdoc.WithWallThickness(200))
	if _, err := d.AddLevel("Level 1", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddLevel("Level 2", 4000); err != nil {
		t.Fatal(err)
	}
	door := memdoc.FamilyType{TypeRef: host.TypeRef{Category: host.CategoryDoors, Name: "0915 x 2134mm", Family: "Single-Flush", Active: true}}
	window := memdoc.FamilyType{TypeRef: host.TypeRef{Category: host.CategoryWindows, Name: "0915 x 1830mm", Family: "Fixed"}}
	if sized {
		door.Width, door.Height = 915, 2134
		window.Width, window.Height = 915, 1830
	}
	d.AddType(door)
	d.AddType(window)
	d.AddType(memdoc.FamilyType{
		TypeRef:   host.TypeRef{Category: host.CategoryRoofs, Name: "Generic - 400mm", Family: "Basic Roof", Active: true},
		Thickness: 400,
	})

	plan, err := shell.Generate(spec, d, units.Millimeters)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := host.NewBuilder(d, nil).Build(plan); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func checkBounds(t *testing.T, m *kernel.Mesh, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := m.Bounds()
	for i := 0; i < 3; i++ {
		if math.Abs(float64(min[i])-wantMin[i]) > tol || math.Abs(float64(max[i])-wantMax[i]) > tol {
			t.Errorf("%s axis %d: bounds %.0f..%.0f, expected ~%.0f..%.0f",
				m.Name, i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
}

func TestNilDocument(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newKernel())
	if err != nil {
		t.Fatalf("Tessellate(nil) returned error: %v", err)
	}
	if meshes != nil {
		t.Fatalf("expected nil meshes, got %d", len(meshes))
	}
}

func TestExtrusionShell(t *testing.T) {
	d := build(t, houseSpec(gables), true)

	meshes, err := tessellate.Tessellate(d, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 8 {
		t.Fatalf("expected 8 meshes (4 walls, 4 roofs), got %d", len(meshes))
	}

	wantNames := []string{
		"wall 0", "wall 1", "wall 2", "wall 3",
		"extrusion roof 0", "extrusion roof 1", "extrusion roof 2", "extrusion roof 3",
	}
	walls := d.Walls()
	roofs := d.ExtrusionRoofs()
	for i, m := range meshes {
		if m.Name != wantNames[i] {
			t.Errorf("mesh %d name = %q, want %q", i, m.Name, wantNames[i])
		}
		if m.IsEmpty() || m.TriangleCount() == 0 {
			t.Errorf("%s: mesh is empty", m.Name)
		}
		want := ""
		if i < 4 {
			want = string(walls[i].ID)
		} else {
			want = string(roofs[i-4].ID)
		}
		if m.Element != want {
			t.Errorf("%s: element = %q, want %q", m.Name, m.Element, want)
		}
	}

	// Wall 0 runs along y = -2500 from x = -5000 to 5000, levels 0 to 4000.
	checkBounds(t, meshes[0], [3]float64{-5000, -2600, 0}, [3]float64{5000, -2400, 4000}, 150)

	// The first gable is anchored on wall 3 and swept along wall 0 across
	// both overhangs, rising 3000 above the top level.
	checkBounds(t, meshes[4], [3]float64{-5400, -2900, 4000}, [3]float64{5400, 0, 7000}, 200)
}

func TestTwoSidedGable(t *testing.T) {
	spec := houseSpec(gables)
	spec.Roof.Stride = 2
	d := build(t, spec, true)

	meshes, err := tessellate.Tessellate(d, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 6 {
		t.Fatalf("expected 6 meshes, got %d", len(meshes))
	}
	for _, m := range meshes[4:] {
		_, max := m.Bounds()
		if math.Abs(float64(max[2])-7000) > 200 {
			t.Errorf("%s: ridge at %.0f, expected ~7000", m.Name, max[2])
		}
	}
}

func TestFootprintShell(t *testing.T) {
	d := build(t, houseSpec(hip), true)

	meshes, err := tessellate.Tessellate(d, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 5 {
		t.Fatalf("expected 5 meshes (4 walls, 1 roof), got %d", len(meshes))
	}
	roof := meshes[4]
	if roof.Name != "footprint roof 0" {
		t.Errorf("roof name = %q", roof.Name)
	}
	if roof.Element != string(d.FootprintRoofs()[0].ID) {
		t.Errorf("roof element = %q", roof.Element)
	}

	// The footprint is the outer wall face, 10200 x 5200, at the top level.
	// Every edge rises at 30 degrees, so the ridge sits half the short span
	// times the slope above the eaves.
	ridge := 4000 + units.SlopeFromDegrees(30)*5200/2
	checkBounds(t, roof, [3]float64{-5100, -2600, 4000}, [3]float64{5100, 2600, ridge}, 200)
}

// facePoints counts mesh vertices on the plane y = face within dx of x and
// below maxZ.
func facePoints(m *kernel.Mesh, face, x, dx, maxZ float64) int {
	n := 0
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		vx, vy, vz := float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])
		if math.Abs(vy-face) < 5 && math.Abs(vx-x) < dx && vz < maxZ {
			n++
		}
	}
	return n
}

func TestDoorCutsWall(t *testing.T) {
	tests := []struct {
		name  string
		sized bool
		hole  bool
	}{
		{"sized door", true, true},
		{"unsized door", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := build(t, houseSpec(gables), tt.sized)
			meshes, err := tessellate.Tessellate(d, newKernel())
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}

			var door memdoc.Opening
			for _, o := range d.Openings() {
				if o.Host == d.Walls()[0].ID {
					door = o
				}
			}
			if door.ID == "" {
				t.Fatal("no opening on wall 0")
			}

			n := facePoints(meshes[0], -2600, door.Point.X, 300, 1500)
			if tt.hole && n != 0 {
				t.Errorf("found %d vertices on the outer face inside the door", n)
			}
			if !tt.hole && n == 0 {
				t.Error("expected the outer face to be solid where the door would be")
			}
		})
	}
}

func TestWallWithoutTopConstraint(t *testing.T) {
	d := memdoc.New(memdoc.WithWallThickness(200))
	base, err := d.AddLevel("Level 1", 0)
	if err != nil {
		t.Fatal(err)
	}
	tx, err := d.Begin("bare wall")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateWall(geom.Line{Start: geom.V(0, 0, 0), End: geom.V(1000, 0, 0)}, base, false); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if _, err := tessellate.Tessellate(d, newKernel()); err == nil {
		t.Fatal("expected an error for a wall without a top constraint")
	}
}

func TestEmptyDocument(t *testing.T) {
	meshes, err := tessellate.Tessellate(memdoc.New(), newKernel())
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
}

// countingKernel records how often the wall cut-outs are combined.
type countingKernel struct {
	kernel.Kernel
	unions, differences int
}

func (k *countingKernel) Union(a, b kernel.Solid) kernel.Solid {
	k.unions++
	return k.Kernel.Union(a, b)
}

func (k *countingKernel) Difference(a, b kernel.Solid) kernel.Solid {
	k.differences++
	return k.Kernel.Difference(a, b)
}

func TestOpeningsShareOneCut(t *testing.T) {
	spec := houseSpec(gables)
	spec.Openings = []shell.OpeningSpec{
		{Kind: shell.Door, Wall: 0, Type: shell.TypeName{Name: "0915 x 2134mm", Family: "Single-Flush"}},
		{Kind: shell.Window, Wall: 0, Type: shell.TypeName{Name: "0915 x 1830mm", Family: "Fixed"}},
	}
	d := build(t, spec, true)

	k := &countingKernel{Kernel: newKernel()}
	meshes, err := tessellate.Tessellate(d, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if k.unions != 1 || k.differences != 1 {
		t.Errorf("unions = %d, differences = %d, want 1 and 1", k.unions, k.differences)
	}
	if n := facePoints(meshes[0], -2600, 0, 300, 1500); n != 0 {
		t.Errorf("found %d vertices on the outer face inside the door", n)
	}
}
