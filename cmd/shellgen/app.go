package main

import (
	"log/slog"

	"github.com/chazu/shellgen/pkg/engine"
	"github.com/chazu/shellgen/pkg/host"
	"github.com/chazu/shellgen/pkg/kernel"
	"github.com/chazu/shellgen/pkg/shell"
	"github.com/chazu/shellgen/pkg/specfile"
	"github.com/chazu/shellgen/pkg/tessellate"
	"github.com/chazu/shellgen/pkg/units"
)

// colorPalette is a default palette used to assign distinct colors to elements.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the whole pipeline: building-shell inputs, computed plan, a
// seeded in-memory host document, and preview meshes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel // nil skips meshing
	conv   units.Converter
	log    *slog.Logger
}

// MeshData is the JSON-serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Element  string    `json:"element"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable pipeline error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is everything one run produces.
type Result struct {
	Plan    *shell.Plan     `json:"plan,omitempty"`
	Created *host.Result    `json:"created,omitempty"`
	Meshes  []MeshData      `json:"meshes"`
	Errors  []EvalErrorData `json:"errors"`
}

// NewApp creates an App. A nil kernel disables meshing; a nil logger uses
// slog.Default().
func NewApp(k kernel.Kernel, conv units.Converter, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
		conv:   conv,
		log:    logger,
	}
}

func newResult() Result {
	return Result{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}
}

func (r *Result) fail(msg string) Result {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
	return *r
}

// Evaluate takes building-shell DSL source and runs it against a document
// seeded with the default levels for the shell's level names.
func (a *App) Evaluate(source string) Result {
	result := newResult()

	spec, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "error", err)
		return result.fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	return a.Generate(specfile.File{Levels: specfile.DefaultLevels(*spec), Shell: *spec})
}

// Generate computes the plan for f, builds it into a fresh document and
// meshes the document.
func (a *App) Generate(f specfile.File) Result {
	result := newResult()

	doc, err := newDocument(f, a.conv)
	if err != nil {
		return result.fail(err.Error())
	}

	plan, err := shell.Generate(f.Shell, doc, a.conv)
	if err != nil {
		a.log.Warn("generate failed", "error", err)
		return result.fail(err.Error())
	}
	result.Plan = plan

	created, err := host.NewBuilder(doc, a.log).Build(plan)
	if err != nil {
		return result.fail(err.Error())
	}
	result.Created = created

	if a.kernel == nil {
		return result
	}
	meshes, err := tessellate.Tessellate(doc, a.kernel)
	if err != nil {
		a.log.Error("tessellate failed", "error", err)
		return result.fail("tessellation failed: " + err.Error())
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Element:  m.Element,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	a.log.Debug("meshed", "meshes", len(result.Meshes))
	return result
}
