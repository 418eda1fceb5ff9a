package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/shellgen/pkg/shell"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpOpening wraps a shell.OpeningSpec returned by `door` or `window`.
type sexpOpening struct {
	spec shell.OpeningSpec
}

func (o *sexpOpening) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s :wall %d :type %q)", o.spec.Kind, o.spec.Wall, o.spec.Type.Name)
}
func (o *sexpOpening) Type() *zygo.RegisteredType { return nil }

// sexpRoof wraps a shell.RoofSpec returned by `footprint-roof` or `extrusion-roof`.
type sexpRoof struct {
	spec shell.RoofSpec
}

func (r *sexpRoof) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s-roof :type %q)", r.spec.Strategy, r.spec.Type.Name)
}
func (r *sexpRoof) Type() *zygo.RegisteredType { return nil }

// collector receives the spec declared by a building-shell form, and the
// first error raised by any builtin.
type collector struct {
	spec *shell.BuildingShellSpec
	err  error
}

type builtin func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// add registers fn under name, recording its first failure in c.
func (c *collector) add(env *zygo.Zlisp, name string, fn builtin) {
	env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		res, err := fn(env, name, args)
		if err != nil && c.err == nil {
			c.err = err
		}
		return res, err
	})
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeywords reports the first keyword not in allowed.
func (a kwArgs) unknownKeywords(allowed ...string) error {
	for k := range a.kw {
		found := false
		for _, name := range allowed {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown keyword :%s", k)
		}
	}
	return nil
}

// float sets *dst from keyword key when present.
func (a kwArgs) float(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// str sets *dst from keyword key when present.
func (a kwArgs) str(key string, dst *string) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = s
	return nil
}

// typeName reads :type and :family.
func (a kwArgs) typeName(dst *shell.TypeName) error {
	if err := a.str("type", &dst.Name); err != nil {
		return err
	}
	return a.str("family", &dst.Family)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare trailing keyword (nil) counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toOpening extracts an OpeningSpec from a sexpOpening.
func toOpening(s zygo.Sexp) (shell.OpeningSpec, error) {
	if o, ok := s.(*sexpOpening); ok {
		return o.spec, nil
	}
	return shell.OpeningSpec{}, fmt.Errorf("expected door or window, got %T (%s)", s, s.SexpString(nil))
}

// toRoof extracts a RoofSpec from a sexpRoof.
func toRoof(s zygo.Sexp) (shell.RoofSpec, error) {
	if r, ok := s.(*sexpRoof); ok {
		return r.spec, nil
	}
	return shell.RoofSpec{}, fmt.Errorf("expected footprint-roof or extrusion-roof, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the shell DSL builtins into a zygomys environment.
// The building-shell form stores its spec in c.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// -----------------------------------------------------------------------
	// (door :wall 0 :type "0915 x 2134mm" :family "Single-Flush")
	// (window :wall 1 :sill-height 900 :type "0915 x 1830mm" :family "Fixed")
	// -----------------------------------------------------------------------
	opening := func(kind shell.OpeningKind) builtin {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			allowed := []string{"wall", "type", "family"}
			if kind == shell.Window {
				allowed = append(allowed, "sill-height")
			}
			if err := pa.unknownKeywords(allowed...); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}

			spec := shell.OpeningSpec{Kind: kind}
			v, ok := pa.kw["wall"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: :wall is required", kind)
			}
			wall, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: wall: %w", kind, err)
			}
			spec.Wall = wall

			if _, ok := pa.kw["sill-height"]; ok {
				var sill float64
				if err := pa.float("sill-height", &sill); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
				}
				spec.SillHeight = &sill
			}
			if err := pa.typeName(&spec.Type); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
			return &sexpOpening{spec: spec}, nil
		}
	}
	c.add(env, "door", opening(shell.Door))
	c.add(env, "window", opening(shell.Window))

	// -----------------------------------------------------------------------
	// (footprint-roof :slope 30 :level "Level 2" :type "..." :family "...")
	// -----------------------------------------------------------------------
	c.add(env, "footprint_roof", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("slope", "level", "type", "family"); err != nil {
			return zygo.SexpNull, fmt.Errorf("footprint-roof: %w", err)
		}
		spec := shell.RoofSpec{Strategy: shell.RoofFootprint}
		if err := pa.float("slope", &spec.SlopeDegrees); err != nil {
			return zygo.SexpNull, fmt.Errorf("footprint-roof: %w", err)
		}
		if err := pa.str("level", &spec.Level); err != nil {
			return zygo.SexpNull, fmt.Errorf("footprint-roof: %w", err)
		}
		if err := pa.typeName(&spec.Type); err != nil {
			return zygo.SexpNull, fmt.Errorf("footprint-roof: %w", err)
		}
		return &sexpRoof{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (extrusion-roof :stride 2 :eave-cut :two-cut-square :type "..." :family "...")
	// -----------------------------------------------------------------------
	c.add(env, "extrusion_roof", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("stride", "eave-cut", "level", "type", "family"); err != nil {
			return zygo.SexpNull, fmt.Errorf("extrusion-roof: %w", err)
		}
		spec := shell.RoofSpec{Strategy: shell.RoofExtrusion, Stride: 1}
		if v, ok := pa.kw["stride"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrusion-roof: stride: %w", err)
			}
			spec.Stride = n
		}
		if v, ok := pa.kw["eave-cut"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrusion-roof: eave-cut: %w", err)
			}
			if spec.EaveCut, err = shell.ParseEaveCut(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("extrusion-roof: %w", err)
			}
		}
		if err := pa.str("level", &spec.Level); err != nil {
			return zygo.SexpNull, fmt.Errorf("extrusion-roof: %w", err)
		}
		if err := pa.typeName(&spec.Type); err != nil {
			return zygo.SexpNull, fmt.Errorf("extrusion-roof: %w", err)
		}
		return &sexpRoof{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (building-shell :length 10000 :width 5000 :wall-thickness 200
	//                 :base-level "Level 1" :top-level "Level 2"
	//                 :openings (list (door ...) (window ...))
	//                 :roof (extrusion-roof ...))
	//
	// Openings and the roof may also be passed positionally.
	// -----------------------------------------------------------------------
	c.add(env, "building_shell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if c.spec != nil {
			return zygo.SexpNull, fmt.Errorf("building-shell: declared more than once")
		}
		pa := parseArgs(args)
		if err := pa.unknownKeywords(
			"length", "width", "wall-thickness", "sill-height", "roof-height", "roof-overhang",
			"base-level", "top-level", "structural", "openings", "roof",
		); err != nil {
			return zygo.SexpNull, fmt.Errorf("building-shell: %w", err)
		}

		spec := shell.BuildingShellSpec{}
		for key, dst := range map[string]*float64{
			"length":         &spec.Length,
			"width":          &spec.Width,
			"wall-thickness": &spec.WallThickness,
			"sill-height":    &spec.SillHeight,
			"roof-height":    &spec.RoofHeight,
			"roof-overhang":  &spec.RoofOverhang,
		} {
			if err := pa.float(key, dst); err != nil {
				return zygo.SexpNull, fmt.Errorf("building-shell: %w", err)
			}
		}
		if err := pa.str("base-level", &spec.BaseLevel); err != nil {
			return zygo.SexpNull, fmt.Errorf("building-shell: %w", err)
		}
		if err := pa.str("top-level", &spec.TopLevel); err != nil {
			return zygo.SexpNull, fmt.Errorf("building-shell: %w", err)
		}
		if v, ok := pa.kw["structural"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("building-shell: structural: %w", err)
			}
			spec.Structural = b
		}

		if v, ok := pa.kw["openings"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("building-shell: openings: %w", err)
			}
			for i, item := range items {
				o, err := toOpening(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("building-shell: opening %d: %w", i, err)
				}
				spec.Openings = append(spec.Openings, o)
			}
		}

		haveRoof := false
		if v, ok := pa.kw["roof"]; ok {
			r, err := toRoof(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("building-shell: roof: %w", err)
			}
			spec.Roof = r
			haveRoof = true
		}

		for i, arg := range pa.positional {
			switch v := arg.(type) {
			case *sexpOpening:
				spec.Openings = append(spec.Openings, v.spec)
			case *sexpRoof:
				if haveRoof {
					return zygo.SexpNull, fmt.Errorf("building-shell: more than one roof")
				}
				spec.Roof = v.spec
				haveRoof = true
			default:
				return zygo.SexpNull, fmt.Errorf("building-shell: argument %d: expected door, window or roof, got %T (%s)",
					i, arg, arg.SexpString(nil))
			}
		}
		if !haveRoof {
			return zygo.SexpNull, fmt.Errorf("building-shell: a roof is required")
		}

		c.spec = &spec
		return zygo.SexpNull, nil
	})
}
