package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/shellgen/pkg/shell"
)

// TransactionName is the name of the write transaction opened by Build.
const TransactionName = "Create building shell"

// Result lists the host elements created for one plan.
type Result struct {
	Walls    [shell.LoopSize]ElementID
	Openings []ElementID
	Roofs    []ElementID
}

// Builder applies computed plans to a host document.
type Builder struct {
	doc Document
	log *slog.Logger
}

// NewBuilder returns a Builder for doc. A nil logger uses slog.Default().
func NewBuilder(doc Document, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{doc: doc, log: logger.With("component", "host")}
}

// resolved holds every type a plan needs, looked up before any write.
type resolved struct {
	openings []TypeRef
	roof     TypeRef
}

// Build creates walls, openings and roof for plan inside one transaction.
// All types are resolved before the transaction opens; any failure after it
// opens rolls the whole transaction back so no partial shell is left behind.
func (b *Builder) Build(plan *shell.Plan) (res *Result, err error) {
	if plan == nil || plan.Roof == nil {
		return nil, errors.New("host: build: plan is incomplete")
	}

	types, err := b.resolveTypes(plan)
	if err != nil {
		return nil, err
	}

	tx, err := b.doc.Begin(TransactionName)
	if err != nil {
		return nil, fmt.Errorf("host: begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("host: rollback: %w", rbErr))
		}
		b.log.Info("transaction rolled back", "name", TransactionName, "error", err)
		res = nil
	}()

	res = &Result{}
	if err = b.activate(types); err != nil {
		return nil, err
	}
	if err = b.createWalls(plan, res); err != nil {
		return nil, err
	}
	if err = b.createOpenings(plan, types.openings, res); err != nil {
		return nil, err
	}
	if err = b.createRoof(plan, types.roof, res); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("host: commit: %w", err)
	}
	b.log.Info("transaction committed",
		"name", TransactionName,
		"walls", len(res.Walls),
		"openings", len(res.Openings),
		"roofs", len(res.Roofs),
	)
	return res, nil
}

func (b *Builder) resolveTypes(plan *shell.Plan) (resolved, error) {
	var r resolved
	cache := make(map[string]TypeRef)

	for i, o := range plan.Openings {
		cat := CategoryFor(o.Kind)
		key := fmt.Sprintf("%d/%s/%s", cat, o.Type.Family, o.Type.Name)
		ref, ok := cache[key]
		if !ok {
			var err error
			ref, err = b.doc.LookupFamilyType(cat, o.Type.Name, o.Type.Family)
			if err != nil {
				return r, fmt.Errorf("host: opening %d: %w", i, err)
			}
			cache[key] = ref
		}
		r.openings = append(r.openings, ref)
	}

	if plan.RoofType.Name == "" || plan.RoofType.Family == "" {
		return r, &shell.Error{Kind: shell.KindMissingRoofType, Op: "host", Message: "plan has no roof type"}
	}
	ref, err := b.doc.LookupFamilyType(CategoryRoofs, plan.RoofType.Name, plan.RoofType.Family)
	if err != nil {
		return r, &shell.Error{
			Kind:    shell.KindMissingRoofType,
			Op:      "host",
			Message: fmt.Sprintf("roof type %s", plan.RoofType),
			Err:     err,
		}
	}
	r.roof = ref
	return r, nil
}

// activate enables every inactive type exactly once.
func (b *Builder) activate(types resolved) error {
	seen := make(map[ElementID]bool)
	for _, ref := range append(types.openings, types.roof) {
		if ref.Active || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		if err := b.doc.ActivateType(ref.ID); err != nil {
			return fmt.Errorf("host: activate %s type %q: %w", ref.Category, ref.Name, err)
		}
		b.log.Debug("type activated", "category", ref.Category.String(), "type", ref.Name)
	}
	return nil
}

func (b *Builder) createWalls(plan *shell.Plan, res *Result) error {
	for i, w := range plan.Walls {
		id, err := b.doc.CreateWall(w.Line, w.Base, plan.Structural)
		if err != nil {
			return fmt.Errorf("host: create wall %d: %w", i, err)
		}
		if err := b.doc.SetWallTopConstraint(id, w.Top); err != nil {
			return fmt.Errorf("host: wall %d top constraint: %w", i, err)
		}
		res.Walls[i] = id
		b.log.Debug("wall created", "index", i, "id", string(id), "length", w.Length())
	}
	return nil
}

func (b *Builder) createOpenings(plan *shell.Plan, types []TypeRef, res *Result) error {
	for i, o := range plan.Openings {
		// Openings take the document's copy of the host wall's base level.
		level, err := b.doc.LevelByID(plan.Walls[o.Wall].Base.ID)
		if err != nil {
			return fmt.Errorf("host: %s %d level: %w", o.Kind, i, err)
		}
		id, err := b.doc.CreateOpening(o.Point, types[i], res.Walls[o.Wall], level)
		if err != nil {
			return fmt.Errorf("host: create %s %d: %w", o.Kind, i, err)
		}
		if o.Kind == shell.Window {
			if err := b.doc.SetSillHeight(id, o.SillHeight); err != nil {
				return fmt.Errorf("host: %s %d sill height: %w", o.Kind, i, err)
			}
		}
		res.Openings = append(res.Openings, id)
		b.log.Debug("opening created", "kind", o.Kind.String(), "wall", o.Wall, "id", string(id))
	}
	return nil
}

func (b *Builder) createRoof(plan *shell.Plan, t TypeRef, res *Result) error {
	switch roof := plan.Roof.(type) {
	case *shell.FootprintRoof:
		id, edges, err := b.doc.CreateFootprintRoof(roof.Edges[:], roof.Level, t)
		if err != nil {
			return fmt.Errorf("host: create footprint roof: %w", err)
		}
		for _, e := range edges {
			if err := b.doc.SetEdgeSlope(id, e, roof.Slope); err != nil {
				return fmt.Errorf("host: footprint roof edge %s slope: %w", e, err)
			}
		}
		res.Roofs = append(res.Roofs, id)
		b.log.Debug("footprint roof created", "id", string(id), "slope_deg", roof.SlopeDegrees)

	case *shell.ExtrusionRoof:
		for _, g := range roof.Gables {
			plane := ReferencePlane{Bubble: g.Eave, Free: g.Ridge, Cut: g.RidgeBase}
			id, err := b.doc.CreateExtrusionRoof(g.ProfileLine(), plane, roof.Level, t, g.Start, g.End)
			if err != nil {
				return fmt.Errorf("host: create extrusion roof on wall %d: %w", g.Wall, err)
			}
			if err := b.doc.SetEaveCuts(id, roof.EaveCut); err != nil {
				return fmt.Errorf("host: extrusion roof on wall %d eave cuts: %w", g.Wall, err)
			}
			res.Roofs = append(res.Roofs, id)
			b.log.Debug("extrusion roof created", "wall", g.Wall, "id", string(id), "length", g.Length)
		}

	default:
		return fmt.Errorf("host: unsupported roof profile %T", plan.Roof)
	}
	return nil
}
