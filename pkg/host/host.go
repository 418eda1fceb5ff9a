// Package host defines the contract a CAD host document exposes to the shell
// generator, and the adapter that turns a computed shell.Plan into host
// elements inside a single write transaction.
package host

import (
	"fmt"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/shell"
)

// ElementID identifies an element created in, or owned by, the host document.
type ElementID string

// EdgeID identifies one boundary edge of a footprint roof.
type EdgeID string

// Category is a family-type category in the host catalog.
type Category int

const (
	CategoryDoors Category = iota
	CategoryWindows
	CategoryRoofs
)

func (c Category) String() string {
	switch c {
	case CategoryDoors:
		return "doors"
	case CategoryWindows:
		return "windows"
	case CategoryRoofs:
		return "roofs"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// CategoryFor returns the catalog category holding types for an opening kind.
func CategoryFor(kind shell.OpeningKind) Category {
	if kind == shell.Window {
		return CategoryWindows
	}
	return CategoryDoors
}

// TypeRef is a resolved family type.
type TypeRef struct {
	ID       ElementID
	Category Category
	Name     string
	Family   string
	Active   bool
}

// ReferencePlane is the plane through the three points of a gable profile.
type ReferencePlane struct {
	Bubble geom.Vec3 // eave
	Free   geom.Vec3 // ridge
	Cut    geom.Vec3 // ridge base
}

// Transaction is a scoped write transaction. Exactly one of Commit or
// Rollback ends it.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Levels resolves document levels. It satisfies shell.LevelResolver.
type Levels interface {
	LevelByName(name string) (shell.Level, error)
	LevelByID(id string) (shell.Level, error)
}

// Catalog resolves family types by category and free-text names. A missing
// type is a *shell.Error of kind TypeNotFound, never a zero TypeRef.
type Catalog interface {
	LookupFamilyType(category Category, typeName, familyName string) (TypeRef, error)
	ActivateType(id ElementID) error
}

// Creator issues element creation calls. Every call requires an open
// transaction.
type Creator interface {
	CreateWall(line geom.Line, base shell.Level, structural bool) (ElementID, error)
	SetWallTopConstraint(wall ElementID, top shell.Level) error

	CreateOpening(point geom.Vec3, t TypeRef, hostWall ElementID, level shell.Level) (ElementID, error)
	SetSillHeight(opening ElementID, height float64) error

	CreateFootprintRoof(boundary []geom.Line, level shell.Level, t TypeRef) (ElementID, []EdgeID, error)
	SetEdgeSlope(roof ElementID, edge EdgeID, slope float64) error

	CreateExtrusionRoof(profile geom.Line, plane ReferencePlane, level shell.Level, t TypeRef, start, end float64) (ElementID, error)
	SetEaveCuts(roof ElementID, cut shell.EaveCut) error
}

// Document is the full host surface used by Builder.
type Document interface {
	Levels
	Catalog
	Creator
	Begin(name string) (Transaction, error)
}
