// Package tessellate turns the elements of an in-memory host document into
// triangle meshes using a geometry kernel. One mesh is produced per wall and
// per roof; openings appear as cut-outs in their host wall.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/host/memdoc"
	"github.com/chazu/shellgen/pkg/kernel"
)

// Document is the read side of a populated host document.
type Document interface {
	Walls() []memdoc.Wall
	Openings() []memdoc.Opening
	FootprintRoofs() []memdoc.FootprintRoof
	ExtrusionRoofs() []memdoc.ExtrusionRoof
	Type(id host.ElementID) (memdoc.FamilyType, bool)
}

// Tessellate produces one mesh per wall, footprint roof and extrusion roof in
// doc. It never mutates the document.
func Tessellate(doc Document, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if doc == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	hosted := make(map[host.ElementID][]memdoc.Opening)
	for _, o := range doc.Openings() {
		hosted[o.Host] = append(hosted[o.Host], o)
	}

	for i, w := range doc.Walls() {
		solid, err := wallSolid(doc, k, w, hosted[w.ID])
		if err != nil {
			return nil, fmt.Errorf("tessellate: wall %d: %w", i, err)
		}
		m, err := mesh(k, solid, fmt.Sprintf("wall %d", i), w.ID)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	for i, r := range doc.FootprintRoofs() {
		solid, err := hipSolid(k, r)
		if err != nil {
			return nil, fmt.Errorf("tessellate: footprint roof %d: %w", i, err)
		}
		m, err := mesh(k, solid, fmt.Sprintf("footprint roof %d", i), r.ID)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	for i, r := range doc.ExtrusionRoofs() {
		solid, err := gableSolid(k, r)
		if err != nil {
			return nil, fmt.Errorf("tessellate: extrusion roof %d: %w", i, err)
		}
		m, err := mesh(k, solid, fmt.Sprintf("extrusion roof %d", i), r.ID)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	return meshes, nil
}

func mesh(k kernel.Kernel, s kernel.Solid, name string, id host.ElementID) (*kernel.Mesh, error) {
	m, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
	}
	m.Name = name
	m.Element = string(id)
	return m, nil
}

// wallSolid builds the wall as a box along its centerline, from its base level
// to its top constraint, minus the union of one cut-out per sized opening.
func wallSolid(doc Document, k kernel.Kernel, w memdoc.Wall, openings []memdoc.Opening) (kernel.Solid, error) {
	if w.Top == nil {
		return nil, fmt.Errorf("no top constraint")
	}
	length := w.Line.Length()
	height := w.Top.Elevation - w.Base.Elevation
	if !(w.Thickness > 0) || !(height > 0) || !(length > 0) {
		return nil, fmt.Errorf("degenerate wall %v x %v x %v", length, w.Thickness, height)
	}

	// Local frame: x along the wall from its midpoint, z up from mid-height.
	solid := k.Box(length, w.Thickness, height)
	dir := w.Line.Direction()
	var cuts kernel.Solid
	for _, o := range openings {
		ft, ok := doc.Type(o.Type)
		if !ok || !(ft.Width > 0) || !(ft.Height > 0) {
			continue
		}
		x := o.Point.Sub(w.Line.Start).Dot(dir) - length/2
		z := -height/2 + o.SillHeight + ft.Height/2
		cut := k.Translate(k.Box(ft.Width, 2*w.Thickness, ft.Height), x, 0, z)
		if cuts == nil {
			cuts = cut
			continue
		}
		cuts = k.Union(cuts, cut)
	}
	if cuts != nil {
		solid = k.Difference(solid, cuts)
	}

	mid := w.Line.Midpoint()
	solid = k.Rotate(solid, 0, 0, degrees(math.Atan2(dir.Y, dir.X)))
	return k.Translate(solid, mid.X, mid.Y, w.Base.Elevation+height/2), nil
}

// sweep places a prism whose XY profile is (u, v) = (across, up) so that
// local X follows h, local Y follows +Z and the extrusion runs from origin
// along d for depth. h must be d rotated a quarter turn counter-clockwise.
func sweep(k kernel.Kernel, profile [][2]float64, depth float64, origin, d geom.Vec3) (kernel.Solid, error) {
	s, err := k.Prism(profile, depth)
	if err != nil {
		return nil, err
	}
	s = k.Translate(s, 0, 0, depth/2)
	s = k.Rotate(s, 90, 0, degrees(math.Atan2(d.X, -d.Y)))
	return k.Translate(s, origin.X, origin.Y, origin.Z), nil
}

// gableSolid sweeps the eave/ridge/ridge-base triangle from Start to End
// along the reference-plane normal.
func gableSolid(k kernel.Kernel, r memdoc.ExtrusionRoof) (kernel.Solid, error) {
	eave, ridge, base := r.Plane.Bubble, r.Plane.Free, r.Plane.Cut
	normal := ridge.Sub(eave).Cross(base.Sub(eave)).WithZ(0)
	if normal.Length() == 0 {
		return nil, fmt.Errorf("profile points are collinear or not vertical")
	}
	normal = normal.Unit()
	d := normal.Neg()
	h := geom.V(-d.Y, d.X, 0)

	var profile [][2]float64
	for _, p := range []geom.Vec3{eave, ridge, base} {
		profile = append(profile, [2]float64{p.Sub(eave).WithZ(0).Dot(h), p.Z - eave.Z})
	}
	origin := eave.Add(normal.Scale(r.End))
	return sweep(k, profile, r.End-r.Start, origin, d)
}

// hipSolid intersects one sloped prism per boundary edge. Each prism rises
// inward from its edge at the edge's slope and is capped at the lowest ridge
// height, so the intersection is a hip roof over the footprint.
func hipSolid(k kernel.Kernel, r memdoc.FootprintRoof) (kernel.Solid, error) {
	n := len(r.Boundary)
	if n < 3 || len(r.Edges) != n {
		return nil, fmt.Errorf("boundary has %d edges and %d edge ids", n, len(r.Edges))
	}

	type edge struct {
		start, d geom.Vec3
		length   float64
		slope    float64
		span     float64 // deepest boundary point inward from the edge
	}
	edges := make([]edge, n)
	ridge := math.Inf(1)
	for i, line := range r.Boundary {
		slope, ok := r.Slopes[r.Edges[i]]
		if !ok || !(slope > 0) {
			return nil, fmt.Errorf("edge %d has no slope", i)
		}
		d := line.End.Sub(line.Start).WithZ(0)
		e := edge{start: line.Start, length: d.Length(), slope: slope}
		if e.length == 0 {
			return nil, fmt.Errorf("edge %d has zero length", i)
		}
		e.d = d.Unit()
		h := geom.V(-e.d.Y, e.d.X, 0)
		for _, other := range r.Boundary {
			e.span = math.Max(e.span, other.Start.Sub(line.Start).WithZ(0).Dot(h))
		}
		if !(e.span > 0) {
			return nil, fmt.Errorf("edge %d: boundary is not counter-clockwise", i)
		}
		edges[i] = e
		ridge = math.Min(ridge, slope*e.span/2)
	}

	var solid kernel.Solid
	for i, e := range edges {
		profile := [][2]float64{
			{0, 0},
			{e.span, 0},
			{e.span, ridge},
			{ridge / e.slope, ridge},
		}
		margin := e.length / 10
		origin := e.start.Sub(e.d.Scale(margin)).WithZ(r.Level.Elevation)
		s, err := sweep(k, profile, e.length+2*margin, origin, e.d)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if solid == nil {
			solid = s
			continue
		}
		solid = k.Intersection(solid, s)
	}
	return solid, nil
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
