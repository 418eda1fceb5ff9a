// Package kernel defines the abstract geometry kernel interface used to
// preview a building shell. Implementations (sdfx) provide solid modeling
// and boolean operations behind this interface.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box is centered on the origin. Prism extrudes a simple
	// polygon in the XY plane along Z, centered on z = 0; either winding is
	// accepted.
	Box(x, y, z float64) Solid
	Prism(profile [][2]float64, depth float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
