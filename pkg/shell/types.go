// Package shell is the parametric geometry engine for a rectangular building
// shell. Given scalar design inputs it produces a closed wall loop, opening
// insertion points, and one of two roof geometries. Every function is a pure
// transform of its arguments; nothing here talks to a host document.
package shell

import (
	"fmt"
	"strings"

	"github.com/chazu/shellgen/pkg/geom"
)

// LoopSize is the number of walls in a rectangular loop.
const LoopSize = 4

// Level is a named elevation owned by the host document. The core only reads it.
type Level struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"` // internal units
}

// ---------------------------------------------------------------------------
// Walls
// ---------------------------------------------------------------------------

// WallSegment is one side of the wall loop, running along its centerline.
type WallSegment struct {
	Index     int       `json:"index"` // 0..3, position in the loop
	Line      geom.Line `json:"line"`
	Thickness float64   `json:"thickness"`
	Base      Level     `json:"base"`
	Top       Level     `json:"top"` // top-constraint level
}

// Length returns the centerline length.
func (w WallSegment) Length() float64 { return w.Line.Length() }

// Height returns the distance from the base level to the top-constraint level.
func (w WallSegment) Height() float64 { return w.Top.Elevation - w.Base.Elevation }

// Loop is the closed sequence of four walls; Loop[i].End == Loop[i+1].Start.
type Loop [LoopSize]WallSegment

// Next returns the wall after i, wrapping at the end of the loop.
func (l Loop) Next(i int) WallSegment { return l[geom.Next(i, LoopSize)] }

// Prev returns the wall before i; Prev(0) is wall 3.
func (l Loop) Prev(i int) WallSegment { return l[geom.Prev(i, LoopSize)] }

// Perimeter returns the summed centerline length of all walls.
func (l Loop) Perimeter() float64 {
	var p float64
	for _, w := range l {
		p += w.Length()
	}
	return p
}

// Corners returns the start point of each wall.
func (l Loop) Corners() []geom.Vec3 {
	pts := make([]geom.Vec3, LoopSize)
	for i, w := range l {
		pts[i] = w.Line.Start
	}
	return pts
}

// ---------------------------------------------------------------------------
// Openings
// ---------------------------------------------------------------------------

// OpeningKind distinguishes doors from windows.
type OpeningKind int

const (
	Door OpeningKind = iota
	Window
)

func (k OpeningKind) String() string {
	switch k {
	case Door:
		return "door"
	case Window:
		return "window"
	default:
		return "unknown"
	}
}

func (k OpeningKind) MarshalText() ([]byte, error) {
	if k != Door && k != Window {
		return nil, fmt.Errorf("shell: invalid opening kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *OpeningKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "door":
		*k = Door
	case "window":
		*k = Window
	default:
		return fmt.Errorf("shell: invalid opening kind %q, expected door or window", b)
	}
	return nil
}

// Opening is a door or window insertion on a host wall.
type Opening struct {
	Kind       OpeningKind `json:"kind"`
	Wall       int         `json:"wall"` // host wall loop index
	Level      Level       `json:"level"`
	Point      geom.Vec3   `json:"point"`       // midpoint of the host centerline
	SillHeight float64     `json:"sill_height"` // windows only; zero for doors
	Type       TypeName    `json:"type"`
}

// TypeName identifies a host family type by free-text names.
type TypeName struct {
	Name   string `json:"name" yaml:"name"`
	Family string `json:"family" yaml:"family"`
}

// IsZero reports whether neither name is set.
func (t TypeName) IsZero() bool { return t.Name == "" && t.Family == "" }

func (t TypeName) String() string { return fmt.Sprintf("%s/%s", t.Family, t.Name) }

// ---------------------------------------------------------------------------
// Roof profiles
// ---------------------------------------------------------------------------

// RoofKind selects between the two roof strategies.
type RoofKind int

const (
	RoofExtrusion RoofKind = iota // per-wall extruded gable profiles
	RoofFootprint                 // offset footprint with one uniform slope
)

func (k RoofKind) String() string {
	switch k {
	case RoofExtrusion:
		return "extrusion"
	case RoofFootprint:
		return "footprint"
	default:
		return "unknown"
	}
}

func (k RoofKind) MarshalText() ([]byte, error) {
	if k != RoofExtrusion && k != RoofFootprint {
		return nil, fmt.Errorf("shell: invalid roof strategy %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *RoofKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "extrusion":
		*k = RoofExtrusion
	case "footprint":
		*k = RoofFootprint
	default:
		return fmt.Errorf("shell: invalid roof strategy %q, expected extrusion or footprint", b)
	}
	return nil
}

// EaveCut is the corner-mitering policy of an extrusion roof.
type EaveCut int

const (
	EaveTwoCutSquare EaveCut = iota // miters adjoining gables square at the eave
	EaveTwoCutPlumb
	EavePerpendicular
)

func (c EaveCut) String() string {
	switch c {
	case EaveTwoCutSquare:
		return "two-cut-square"
	case EaveTwoCutPlumb:
		return "two-cut-plumb"
	case EavePerpendicular:
		return "perpendicular"
	default:
		return "unknown"
	}
}

func (c EaveCut) MarshalText() ([]byte, error) {
	if c < EaveTwoCutSquare || c > EavePerpendicular {
		return nil, fmt.Errorf("shell: invalid eave cut %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *EaveCut) UnmarshalText(b []byte) error {
	v, err := ParseEaveCut(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseEaveCut parses an eave-cut policy name.
func ParseEaveCut(s string) (EaveCut, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "two-cut-square", "":
		return EaveTwoCutSquare, nil
	case "two-cut-plumb":
		return EaveTwoCutPlumb, nil
	case "perpendicular":
		return EavePerpendicular, nil
	}
	return 0, fmt.Errorf("shell: invalid eave cut %q, expected two-cut-square, two-cut-plumb or perpendicular", s)
}

// RoofProfile is the computed roof geometry: *FootprintRoof or *ExtrusionRoof.
type RoofProfile interface {
	Kind() RoofKind
	roofProfile() // marker method restricting implementations to this package
}

// FootprintRoof is a hip-style roof over an offset of the wall loop.
type FootprintRoof struct {
	Edges        [LoopSize]geom.Line `json:"edges"` // edge i follows wall i
	SlopeDegrees float64             `json:"slope_degrees"`
	Slope        float64             `json:"slope"` // tangent, applied to every edge
	Level        Level               `json:"level"`
}

func (*FootprintRoof) Kind() RoofKind { return RoofFootprint }
func (*FootprintRoof) roofProfile()   {}

// Boundary returns the closed footprint polygon (first corner of each edge).
func (r *FootprintRoof) Boundary() []geom.Vec3 {
	pts := make([]geom.Vec3, LoopSize)
	for i, e := range r.Edges {
		pts[i] = e.Start
	}
	return pts
}

// GableProfile is the vertical triangle swept along one wall.
type GableProfile struct {
	Wall      int       `json:"wall"`  // wall the sweep runs along
	Ref       int       `json:"ref"`   // previous wall, whose line anchors the profile
	Eave      geom.Vec3 `json:"eave"`  // outer eave corner
	Ridge     geom.Vec3 `json:"ridge"` // top of the gable
	RidgeBase geom.Vec3 `json:"ridge_base"`
	Length    float64   `json:"length"` // wall length + 2*dt

	// Normal is the reference-plane normal; the sweep runs from Start to End
	// along it (Start = -Length, End = 0), i.e. along the wall direction.
	Normal geom.Vec3 `json:"normal"`
	Start  float64   `json:"start"`
	End    float64   `json:"end"`
}

// ProfileLine is the sloped eave-to-ridge line handed to the host.
func (g GableProfile) ProfileLine() geom.Line {
	return geom.Line{Start: g.Eave, End: g.Ridge}
}

// Triangle returns the profile points {eave, ridge, ridge base}.
func (g GableProfile) Triangle() [3]geom.Vec3 {
	return [3]geom.Vec3{g.Eave, g.Ridge, g.RidgeBase}
}

// Direction returns the unit sweep direction from the profile plane.
func (g GableProfile) Direction() geom.Vec3 { return g.Normal.Neg() }

// ExtrusionRoof is a set of independent gable sweeps, one per visited wall.
type ExtrusionRoof struct {
	Gables   []GableProfile `json:"gables"`
	Stride   int            `json:"stride"` // 1: four gables, 2: two (gable roof)
	EaveCut  EaveCut        `json:"eave_cut"`
	Height   float64        `json:"height"`
	Overhang float64        `json:"overhang"`
	Offset   float64        `json:"offset"` // dt = thickness/2 + overhang
	Level    Level          `json:"level"`
}

func (*ExtrusionRoof) Kind() RoofKind { return RoofExtrusion }
func (*ExtrusionRoof) roofProfile()   {}
