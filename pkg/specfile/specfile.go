// Package specfile reads building-shell descriptions from YAML. Fields absent
// from a file keep the values of the reference scenario returned by Default.
package specfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/shellgen/pkg/shell"
)

// Default storey height between the two default levels, millimeters.
const DefaultStoreyHeight = 4000

// Reference scenario family types.
var (
	DoorType   = shell.TypeName{Name: "0915 x 2134mm", Family: "Single-Flush"}
	WindowType = shell.TypeName{Name: "0915 x 1830mm", Family: "Fixed"}
	RoofType   = shell.TypeName{Name: "Generic - 400mm", Family: "Basic Roof"}
)

// LevelDef declares a level for hosts that are seeded from the file.
type LevelDef struct {
	Name      string  `yaml:"name" json:"name"`
	Elevation float64 `yaml:"elevation" json:"elevation"` // millimeters
}

// File is the on-disk document: the shell inputs plus the levels a fresh
// host document should start with.
type File struct {
	Levels []LevelDef              `yaml:"levels,omitempty" json:"levels,omitempty"`
	Shell  shell.BuildingShellSpec `yaml:"shell" json:"shell"`
}

// Default returns the reference scenario: a 10000 x 5000 mm plan on
// "Level 1" / "Level 2" with a door on wall 0, a window on each other wall
// and a four-gable extrusion roof.
func Default() File {
	spec := shell.BuildingShellSpec{
		Length:        10000,
		Width:         5000,
		WallThickness: 200,
		SillHeight:    600,
		RoofHeight:    3000,
		RoofOverhang:  300,
		BaseLevel:     "Level 1",
		TopLevel:      "Level 2",
		Openings: []shell.OpeningSpec{
			{Kind: shell.Door, Wall: 0, Type: DoorType},
			{Kind: shell.Window, Wall: 1, Type: WindowType},
			{Kind: shell.Window, Wall: 2, Type: WindowType},
			{Kind: shell.Window, Wall: 3, Type: WindowType},
		},
		Roof: shell.RoofSpec{
			Strategy:     shell.RoofExtrusion,
			SlopeDegrees: 30,
			Stride:       1,
			EaveCut:      shell.EaveTwoCutSquare,
			Type:         RoofType,
		},
	}
	return File{Levels: DefaultLevels(spec), Shell: spec}
}

// DefaultLevels returns the base level at 0 and the top level one storey up.
// A distinct roof level sits at the top level's elevation.
func DefaultLevels(spec shell.BuildingShellSpec) []LevelDef {
	levels := []LevelDef{{Name: spec.BaseLevel, Elevation: 0}}
	if spec.TopLevel != spec.BaseLevel {
		levels = append(levels, LevelDef{Name: spec.TopLevel, Elevation: DefaultStoreyHeight})
	}
	if roof := spec.RoofLevelName(); roof != spec.BaseLevel && roof != spec.TopLevel {
		levels = append(levels, LevelDef{Name: roof, Elevation: DefaultStoreyHeight})
	}
	return levels
}

// Parse decodes YAML over the reference scenario. A file that lists
// openings replaces the default openings entirely. When the file names no
// levels they are derived from the shell's level names.
func Parse(data []byte) (File, error) {
	f := Default()
	f.Levels = nil
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("specfile: %w", err)
	}
	if len(f.Levels) == 0 {
		f.Levels = DefaultLevels(f.Shell)
	}
	for i, l := range f.Levels {
		if strings.TrimSpace(l.Name) == "" {
			return File{}, fmt.Errorf("specfile: level %d has no name", i)
		}
	}
	return f, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (File, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "." {
		return File{}, fmt.Errorf("specfile: missing path")
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return File{}, fmt.Errorf("specfile: %w", err)
	}
	return Parse(data)
}

// Marshal encodes f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}
