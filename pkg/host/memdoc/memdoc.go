// Package memdoc is an in-memory host document. It implements host.Document
// with the same transactional discipline as a real CAD host: every creation
// call needs an open transaction, and Rollback restores the document to the
// state it had when the transaction began.
package memdoc

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/chazu/shellgen/pkg/geom"
	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/shell"
)

// Compile-time interface check.
var _ host.Document = (*Document)(nil)

var (
	ErrNoTransaction     = errors.New("memdoc: no open transaction")
	ErrTransactionOpen   = errors.New("memdoc: a transaction is already open")
	ErrTransactionClosed = errors.New("memdoc: transaction already ended")
	ErrUnknownElement    = errors.New("memdoc: unknown element")
)

// FamilyType is a catalog entry with the nominal size used for previews.
type FamilyType struct {
	host.TypeRef
	Width     float64 // internal units
	Height    float64
	Thickness float64 // roofs
}

// Wall is a created wall element.
type Wall struct {
	ID         host.ElementID
	Line       geom.Line
	Base       shell.Level
	Top        *shell.Level // nil until the top constraint is applied
	Structural bool
	Thickness  float64
}

// Opening is a created door or window instance.
type Opening struct {
	ID         host.ElementID
	Point      geom.Vec3
	Type       host.ElementID
	Host       host.ElementID
	Level      shell.Level
	SillHeight float64
}

// FootprintRoof is a created footprint roof.
type FootprintRoof struct {
	ID       host.ElementID
	Boundary []geom.Line
	Edges    []host.EdgeID // parallel to Boundary
	Level    shell.Level
	Type     host.ElementID
	Slopes   map[host.EdgeID]float64
}

// ExtrusionRoof is a created extrusion roof.
type ExtrusionRoof struct {
	ID      host.ElementID
	Profile geom.Line
	Plane   host.ReferencePlane
	Level   shell.Level
	Type    host.ElementID
	Start   float64
	End     float64
	EaveCut shell.EaveCut
}

// state is everything a transaction may change.
type state struct {
	types     map[host.ElementID]FamilyType
	walls     map[host.ElementID]*Wall
	openings  map[host.ElementID]*Opening
	footprint map[host.ElementID]*FootprintRoof
	extrusion map[host.ElementID]*ExtrusionRoof
	order     []host.ElementID
}

func newState() state {
	return state{
		types:     make(map[host.ElementID]FamilyType),
		walls:     make(map[host.ElementID]*Wall),
		openings:  make(map[host.ElementID]*Opening),
		footprint: make(map[host.ElementID]*FootprintRoof),
		extrusion: make(map[host.ElementID]*ExtrusionRoof),
	}
}

// copy returns w with its own top constraint.
func (w *Wall) copy() Wall {
	cp := *w
	if w.Top != nil {
		top := *w.Top
		cp.Top = &top
	}
	return cp
}

// clone deep-copies s so the copy survives later mutation of s.
func (s state) clone() state {
	c := newState()
	maps.Copy(c.types, s.types)
	for id, w := range s.walls {
		cp := w.copy()
		c.walls[id] = &cp
	}
	for id, o := range s.openings {
		cp := *o
		c.openings[id] = &cp
	}
	for id, r := range s.footprint {
		cp := *r
		cp.Boundary = slices.Clone(r.Boundary)
		cp.Edges = slices.Clone(r.Edges)
		cp.Slopes = maps.Clone(r.Slopes)
		c.footprint[id] = &cp
	}
	for id, r := range s.extrusion {
		cp := *r
		c.extrusion[id] = &cp
	}
	c.order = slices.Clone(s.order)
	return c
}

// Document is an in-memory host document. It is safe for concurrent use.
type Document struct {
	mu            sync.Mutex
	levels        []shell.Level
	wallThickness float64
	cur           state
	tx            *transaction
	failures      map[string]error
	log           []string // "begin:<name>", "commit:<name>", "rollback:<name>"
}

// Option configures a Document.
type Option func(*Document)

// WithWallThickness sets the thickness of the default wall type.
func WithWallThickness(t float64) Option {
	return func(d *Document) { d.wallThickness = t }
}

// New returns an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		cur:      newState(),
		failures: make(map[string]error),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func newID() host.ElementID {
	return host.ElementID(uuid.NewString())
}

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

// AddLevel registers a level. Names must be unique.
func (d *Document) AddLevel(name string, elevation float64) (shell.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.levels {
		if l.Name == name {
			return shell.Level{}, fmt.Errorf("memdoc: level %q already exists", name)
		}
	}
	lvl := shell.Level{ID: uuid.NewString(), Name: name, Elevation: elevation}
	d.levels = append(d.levels, lvl)
	return lvl, nil
}

// AddType registers a family type and returns it with its assigned ID.
func (d *Document) AddType(ft FamilyType) FamilyType {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ft.ID == "" {
		ft.ID = newID()
	}
	d.cur.types[ft.ID] = ft
	return ft
}

// FailOn makes the next call of the named method return err. Method names
// match the host.Document methods, e.g. "CreateOpening" or "Commit".
func (d *Document) FailOn(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[method] = err
}

// injected returns and clears a pending failure. Caller holds d.mu.
func (d *Document) injected(method string) error {
	err, ok := d.failures[method]
	if !ok {
		return nil
	}
	delete(d.failures, method)
	return err
}

// ---------------------------------------------------------------------------
// Levels and catalog
// ---------------------------------------------------------------------------

// LevelByName implements host.Levels.
func (d *Document) LevelByName(name string) (shell.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.levels {
		if l.Name == name {
			return l, nil
		}
	}
	return shell.Level{}, shell.LevelNotFound(name)
}

// LevelByID implements host.Levels.
func (d *Document) LevelByID(id string) (shell.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.injected("LevelByID"); err != nil {
		return shell.Level{}, err
	}
	for _, l := range d.levels {
		if l.ID == id {
			return l, nil
		}
	}
	return shell.Level{}, &shell.Error{Kind: shell.KindLevelNotFound, Op: "level", Message: fmt.Sprintf("no level with id %q", id)}
}

// Levels returns all levels in registration order.
func (d *Document) Levels() []shell.Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.levels)
}

// LookupFamilyType implements host.Catalog.
func (d *Document) LookupFamilyType(category host.Category, typeName, familyName string) (host.TypeRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.injected("LookupFamilyType"); err != nil {
		return host.TypeRef{}, err
	}
	for _, ft := range d.cur.types {
		if ft.Category == category && ft.Name == typeName && ft.Family == familyName {
			return ft.TypeRef, nil
		}
	}
	return host.TypeRef{}, shell.TypeNotFound(category.String(), typeName, familyName)
}

// ActivateType implements host.Catalog.
func (d *Document) ActivateType(id host.ElementID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("ActivateType"); err != nil {
		return err
	}
	ft, ok := d.cur.types[id]
	if !ok {
		return fmt.Errorf("%w: type %s", ErrUnknownElement, id)
	}
	ft.Active = true
	d.cur.types[id] = ft
	return nil
}

// Type returns a catalog entry by ID.
func (d *Document) Type(id host.ElementID) (FamilyType, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ft, ok := d.cur.types[id]
	return ft, ok
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type transaction struct {
	doc      *Document
	name     string
	snapshot state
	done     bool
}

// Begin implements host.Document. Only one transaction may be open.
func (d *Document) Begin(name string) (host.Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.injected("Begin"); err != nil {
		return nil, err
	}
	if d.tx != nil {
		return nil, ErrTransactionOpen
	}
	d.tx = &transaction{doc: d, name: name, snapshot: d.cur.clone()}
	d.log = append(d.log, "begin:"+name)
	return d.tx, nil
}

func (t *transaction) Commit() error {
	d := t.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.done {
		return ErrTransactionClosed
	}
	if err := d.injected("Commit"); err != nil {
		return err
	}
	t.done = true
	d.tx = nil
	d.log = append(d.log, "commit:"+t.name)
	return nil
}

func (t *transaction) Rollback() error {
	d := t.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	d.cur = t.snapshot
	d.tx = nil
	d.log = append(d.log, "rollback:"+t.name)
	return nil
}

// TransactionLog returns the begin/commit/rollback history.
func (d *Document) TransactionLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.log)
}

// writable checks for an open transaction and injected failures. Caller holds d.mu.
func (d *Document) writable(method string) error {
	if d.tx == nil {
		return fmt.Errorf("%s: %w", method, ErrNoTransaction)
	}
	return d.injected(method)
}

// ---------------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------------

// CreateWall implements host.Creator.
func (d *Document) CreateWall(line geom.Line, base shell.Level, structural bool) (host.ElementID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("CreateWall"); err != nil {
		return "", err
	}
	if line.Length() == 0 {
		return "", fmt.Errorf("memdoc: CreateWall: zero-length line")
	}
	w := &Wall{ID: newID(), Line: line, Base: base, Structural: structural, Thickness: d.wallThickness}
	d.cur.walls[w.ID] = w
	d.cur.order = append(d.cur.order, w.ID)
	return w.ID, nil
}

// SetWallTopConstraint implements host.Creator.
func (d *Document) SetWallTopConstraint(wall host.ElementID, top shell.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("SetWallTopConstraint"); err != nil {
		return err
	}
	w, ok := d.cur.walls[wall]
	if !ok {
		return fmt.Errorf("%w: wall %s", ErrUnknownElement, wall)
	}
	w.Top = &top
	return nil
}

// CreateOpening implements host.Creator. The host wall must exist and the
// type must be active.
func (d *Document) CreateOpening(point geom.Vec3, t host.TypeRef, hostWall host.ElementID, level shell.Level) (host.ElementID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("CreateOpening"); err != nil {
		return "", err
	}
	if _, ok := d.cur.walls[hostWall]; !ok {
		return "", fmt.Errorf("%w: host wall %s", ErrUnknownElement, hostWall)
	}
	if err := d.checkActive(t.ID); err != nil {
		return "", err
	}
	o := &Opening{ID: newID(), Point: point, Type: t.ID, Host: hostWall, Level: level}
	d.cur.openings[o.ID] = o
	d.cur.order = append(d.cur.order, o.ID)
	return o.ID, nil
}

// SetSillHeight implements host.Creator.
func (d *Document) SetSillHeight(opening host.ElementID, height float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("SetSillHeight"); err != nil {
		return err
	}
	o, ok := d.cur.openings[opening]
	if !ok {
		return fmt.Errorf("%w: opening %s", ErrUnknownElement, opening)
	}
	o.SillHeight = height
	return nil
}

// CreateFootprintRoof implements host.Creator. It returns one edge ID per
// boundary line, in boundary order.
func (d *Document) CreateFootprintRoof(boundary []geom.Line, level shell.Level, t host.TypeRef) (host.ElementID, []host.EdgeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("CreateFootprintRoof"); err != nil {
		return "", nil, err
	}
	if len(boundary) < 3 {
		return "", nil, fmt.Errorf("memdoc: CreateFootprintRoof: boundary needs at least 3 edges, got %d", len(boundary))
	}
	if err := d.checkActive(t.ID); err != nil {
		return "", nil, err
	}
	r := &FootprintRoof{
		ID:       newID(),
		Boundary: slices.Clone(boundary),
		Level:    level,
		Type:     t.ID,
		Slopes:   make(map[host.EdgeID]float64),
	}
	for range boundary {
		r.Edges = append(r.Edges, host.EdgeID(uuid.NewString()))
	}
	d.cur.footprint[r.ID] = r
	d.cur.order = append(d.cur.order, r.ID)
	return r.ID, slices.Clone(r.Edges), nil
}

// SetEdgeSlope implements host.Creator.
func (d *Document) SetEdgeSlope(roof host.ElementID, edge host.EdgeID, slope float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("SetEdgeSlope"); err != nil {
		return err
	}
	r, ok := d.cur.footprint[roof]
	if !ok {
		return fmt.Errorf("%w: footprint roof %s", ErrUnknownElement, roof)
	}
	if !slices.Contains(r.Edges, edge) {
		return fmt.Errorf("%w: edge %s of roof %s", ErrUnknownElement, edge, roof)
	}
	r.Slopes[edge] = slope
	return nil
}

// CreateExtrusionRoof implements host.Creator.
func (d *Document) CreateExtrusionRoof(profile geom.Line, plane host.ReferencePlane, level shell.Level, t host.TypeRef, start, end float64) (host.ElementID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("CreateExtrusionRoof"); err != nil {
		return "", err
	}
	if start >= end {
		return "", fmt.Errorf("memdoc: CreateExtrusionRoof: empty extent [%v, %v]", start, end)
	}
	if err := d.checkActive(t.ID); err != nil {
		return "", err
	}
	r := &ExtrusionRoof{
		ID:      newID(),
		Profile: profile,
		Plane:   plane,
		Level:   level,
		Type:    t.ID,
		Start:   start,
		End:     end,
	}
	d.cur.extrusion[r.ID] = r
	d.cur.order = append(d.cur.order, r.ID)
	return r.ID, nil
}

// SetEaveCuts implements host.Creator.
func (d *Document) SetEaveCuts(roof host.ElementID, cut shell.EaveCut) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writable("SetEaveCuts"); err != nil {
		return err
	}
	r, ok := d.cur.extrusion[roof]
	if !ok {
		return fmt.Errorf("%w: extrusion roof %s", ErrUnknownElement, roof)
	}
	r.EaveCut = cut
	return nil
}

// checkActive rejects instances of unknown or inactive types. Caller holds d.mu.
func (d *Document) checkActive(id host.ElementID) error {
	ft, ok := d.cur.types[id]
	if !ok {
		return fmt.Errorf("%w: type %s", ErrUnknownElement, id)
	}
	if !ft.Active {
		return fmt.Errorf("memdoc: type %q is not active", ft.Name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Walls returns copies of all walls in creation order.
func (d *Document) Walls() []Wall {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Wall
	for _, id := range d.cur.order {
		if w, ok := d.cur.walls[id]; ok {
			out = append(out, w.copy())
		}
	}
	return out
}

// Openings returns copies of all openings in creation order.
func (d *Document) Openings() []Opening {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Opening
	for _, id := range d.cur.order {
		if o, ok := d.cur.openings[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// FootprintRoofs returns copies of all footprint roofs in creation order.
func (d *Document) FootprintRoofs() []FootprintRoof {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []FootprintRoof
	for _, id := range d.cur.order {
		if r, ok := d.cur.footprint[id]; ok {
			cp := *r
			cp.Boundary = slices.Clone(r.Boundary)
			cp.Edges = slices.Clone(r.Edges)
			cp.Slopes = maps.Clone(r.Slopes)
			out = append(out, cp)
		}
	}
	return out
}

// ExtrusionRoofs returns copies of all extrusion roofs in creation order.
func (d *Document) ExtrusionRoofs() []ExtrusionRoof {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []ExtrusionRoof
	for _, id := range d.cur.order {
		if r, ok := d.cur.extrusion[id]; ok {
			out = append(out, *r)
		}
	}
	return out
}

// ElementCount returns the number of created elements.
func (d *Document) ElementCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cur.order)
}

// Wall returns one wall by ID.
func (d *Document) Wall(id host.ElementID) (Wall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.cur.walls[id]
	if !ok {
		return Wall{}, false
	}
	return w.copy(), true
}
