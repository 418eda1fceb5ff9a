// Command shellgen computes a rectangular building shell, builds it into an
// in-memory host document and writes the plan, the created element ids and
// preview meshes as JSON.
//
// Input is either a YAML spec file or a .shell DSL source. Without -spec the
// reference scenario is used.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/shellgen/pkg/config"
	"github.com/chazu/shellgen/pkg/kernel"
	"github.com/chazu/shellgen/pkg/kernel/sdfx"
	"github.com/chazu/shellgen/pkg/specfile"
)

func main() {
	specPath := flag.String("spec", "", "building spec: .yaml/.yml file or .shell source (default: reference scenario)")
	outPath := flag.String("out", "", "output JSON path (default: stdout)")
	unitsName := flag.String("units", "", "internal units: feet or mm (overrides SHELLGEN_UNITS)")
	cells := flag.Int("cells", 0, "marching-cubes cells per element (overrides SHELLGEN_MESH_CELLS)")
	noMesh := flag.Bool("no-mesh", false, "skip preview meshes")
	dumpDefault := flag.Bool("dump-default", false, "print the reference scenario as YAML and exit")
	flag.Parse()

	if *dumpDefault {
		b, err := specfile.Marshal(specfile.Default())
		if err != nil {
			fatalf("marshal default: %v", err)
		}
		os.Stdout.Write(b)
		return
	}

	cfg := config.Load()
	if *unitsName != "" {
		cfg.Units = *unitsName
	}
	if *cells > 0 {
		cfg.MeshCells = *cells
	}

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		fatalf("%v", err)
	}
	slog.SetDefault(logger)

	conv, err := cfg.Converter()
	if err != nil {
		fatalf("%v", err)
	}

	var k kernel.Kernel
	if !*noMesh {
		k = sdfx.NewWithResolution(cfg.MeshCells)
	}
	app := NewApp(k, conv, logger)

	result, err := run(app, strings.TrimSpace(*specPath))
	if err != nil {
		fatalf("%v", err)
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fatalf("encode result: %v", err)
	}
	if *outPath == "" {
		fmt.Println(string(b))
	} else if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		fatalf("write %s: %v", *outPath, err)
	}

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			logger.Error("shell failed", "line", e.Line, "col", e.Col, "message", e.Message)
		}
		os.Exit(2)
	}
	logger.Info("shell generated",
		"units", conv.Name(),
		"openings", len(result.Created.Openings),
		"roofs", len(result.Created.Roofs),
		"meshes", len(result.Meshes))
}

// run dispatches on the spec path's extension.
func run(app *App, path string) (Result, error) {
	if path == "" {
		return app.Generate(specfile.Default()), nil
	}
	if strings.EqualFold(filepath.Ext(path), ".shell") {
		source, err := os.ReadFile(path)
		if err != nil {
			return Result{}, err
		}
		return app.Evaluate(string(source)), nil
	}
	f, err := specfile.Load(path)
	if err != nil {
		return Result{}, err
	}
	return app.Generate(f), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "shellgen: "+format+"\n", args...)
	os.Exit(1)
}
