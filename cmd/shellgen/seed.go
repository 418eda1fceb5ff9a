package main

import (
	"regexp"
	"strconv"

	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/host/memdoc"
	"github.com/chazu/shellgen/pkg/shell"
	"github.com/chazu/shellgen/pkg/specfile"
	"github.com/chazu/shellgen/pkg/units"
)

// Catalog type names carry their nominal size in millimeters, e.g.
// "0915 x 2134mm" for an opening or "Generic - 400mm" for a roof.
var (
	openingSizePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xX×]\s*(\d+(?:\.\d+)?)\s*mm`)
	thicknessPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mm`)
)

// openingSize returns the width and height in millimeters encoded in name.
func openingSize(name string) (width, height float64, ok bool) {
	m := openingSizePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.ParseFloat(m[1], 64)
	height, _ = strconv.ParseFloat(m[2], 64)
	return width, height, true
}

// roofThickness returns the thickness in millimeters encoded in name.
func roofThickness(name string) (float64, bool) {
	m := thicknessPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	t, _ := strconv.ParseFloat(m[1], 64)
	return t, true
}

// newDocument seeds an in-memory host document with the file's levels and
// one catalog entry per distinct type the shell names. Window types start
// inactive, like a freshly loaded family, so building them exercises type
// activation.
func newDocument(f specfile.File, conv units.Converter) (*memdoc.Document, error) {
	d := memdoc.New(memdoc.WithWallThickness(conv.ToInternal(f.Shell.WallThickness)))
	for _, l := range f.Levels {
		if _, err := d.AddLevel(l.Name, conv.ToInternal(l.Elevation)); err != nil {
			return nil, err
		}
	}

	seen := make(map[host.Category]map[shell.TypeName]bool)
	add := func(category host.Category, name shell.TypeName) {
		if name.IsZero() {
			return
		}
		if seen[category] == nil {
			seen[category] = make(map[shell.TypeName]bool)
		}
		if seen[category][name] {
			return
		}
		seen[category][name] = true

		ft := memdoc.FamilyType{TypeRef: host.TypeRef{
			Category: category,
			Name:     name.Name,
			Family:   name.Family,
			Active:   category != host.CategoryWindows,
		}}
		if category == host.CategoryRoofs {
			if t, ok := roofThickness(name.Name); ok {
				ft.Thickness = conv.ToInternal(t)
			}
		} else if w, h, ok := openingSize(name.Name); ok {
			ft.Width, ft.Height = conv.ToInternal(w), conv.ToInternal(h)
		}
		d.AddType(ft)
	}

	for _, o := range f.Shell.Openings {
		add(host.CategoryFor(o.Kind), o.Type)
	}
	add(host.CategoryRoofs, f.Shell.Roof.Type)
	return d, nil
}
