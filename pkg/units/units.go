// Package units converts domain-facing lengths (millimeters) into the
// internal length unit used by all geometry downstream of the inputs.
package units

import (
	"fmt"
	"math"
)

// MillimetersPerFoot is the exact length of one international foot.
const MillimetersPerFoot = 304.8

// Converter is a fixed linear scale between millimeters and the internal unit.
// The zero value is not usable; use Feet, Millimeters, or New.
type Converter struct {
	name  string
	mmPer float64 // millimeters per internal unit
}

var (
	// Feet is the internal unit used by the host document.
	Feet = Converter{name: "feet", mmPer: MillimetersPerFoot}

	// Millimeters is the identity conversion.
	Millimeters = Converter{name: "mm", mmPer: 1}
)

// New returns a converter where one internal unit equals mmPerUnit millimeters.
func New(name string, mmPerUnit float64) (Converter, error) {
	if mmPerUnit <= 0 || math.IsNaN(mmPerUnit) || math.IsInf(mmPerUnit, 0) {
		return Converter{}, fmt.Errorf("units: invalid scale %v for %q", mmPerUnit, name)
	}
	return Converter{name: name, mmPer: mmPerUnit}, nil
}

// ByName returns one of the predefined converters.
func ByName(name string) (Converter, error) {
	switch name {
	case "feet", "ft", "":
		return Feet, nil
	case "mm", "millimeters":
		return Millimeters, nil
	}
	return Converter{}, fmt.Errorf("units: unknown unit %q, expected feet or mm", name)
}

// Name returns the internal unit's name.
func (c Converter) Name() string { return c.name }

// ToInternal converts millimeters to internal units.
func (c Converter) ToInternal(mm float64) float64 {
	return mm / c.mmPer
}

// FromInternal converts internal units back to millimeters.
func (c Converter) FromInternal(v float64) float64 {
	return v * c.mmPer
}

// SlopeFromDegrees returns the rise-over-run tangent of a roof pitch angle.
func SlopeFromDegrees(deg float64) float64 {
	return math.Tan(deg * math.Pi / 180.0)
}
