package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/design"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites script source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with script variables.
//  2. multiple-round becomes multiple_round; zygomys reads a hyphen inside
//     an identifier as subtraction.
//  3. ; comments become // comments.
//
// String literals are left alone.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"' || c == '`':
			n := quotedLen(b[i:])
			out = append(out, b[i:i+n]...)
			i += n
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// quotedLen returns the length of the string literal at the start of b,
// including both quotes. Backslash escapes apply to double quotes only.
func quotedLen(b []byte) int {
	q := b[0]
	i := 1
	for i < len(b) && b[i] != q {
		if q == '"' && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpRequest wraps a builder parameter set until defpart names it.
type sexpRequest struct {
	builder string
	req     clamp.Request
}

func (r *sexpRequest) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", r.builder)
}
func (r *sexpRequest) Type() *zygo.RegisteredType { return nil }

// sexpSegment wraps one straight-round segment.
type sexpSegment struct {
	seg clamp.Segment
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	switch v := s.seg.(type) {
	case clamp.Turn:
		return fmt.Sprintf("(turn %g %g)", v.SpacingX, v.SpacingY)
	case clamp.Straight:
		return fmt.Sprintf("(straight :%s %g)", v.Axis, v.Spacing)
	}
	return "(segment)"
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// sexpPart references a part defined with defpart.
type sexpPart struct {
	part *design.Part
}

func (p *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.part.Name)
}
func (p *sexpPart) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		// A trailing keyword is a flag set to true.
		v := zygo.Sexp(&zygo.SexpBool{Val: true})
		if i+1 < len(args) {
			v = args[i+1]
			i++
		}
		if _, seen := pa.kw[name]; !seen {
			pa.order = append(pa.order, name)
		}
		pa.kw[name] = v
	}
	return pa
}

// argReader pulls typed keyword values out of kwArgs and keeps the first
// conversion error.
type argReader struct {
	fn   string
	pa   kwArgs
	used map[string]bool
	err  error
}

func newArgReader(fn string, args []zygo.Sexp) *argReader {
	return &argReader{fn: fn, pa: parseArgs(args), used: make(map[string]bool)}
}

func (r *argReader) get(key string) (zygo.Sexp, bool) {
	r.used[key] = true
	v, ok := r.pa.kw[key]
	return v, ok && r.err == nil
}

func (r *argReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %s: %w", r.fn, key, err)
	}
}

func (r *argReader) float(key string, dst *float64) {
	if v, ok := r.get(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = f
	}
}

func (r *argReader) int(key string, dst *int) {
	if v, ok := r.get(key); ok {
		i, ok := v.(*zygo.SexpInt)
		if !ok {
			r.fail(key, fmt.Errorf("expected integer, got %s", v.SexpString(nil)))
			return
		}
		*dst = int(i.Val)
	}
}

func (r *argReader) bool(key string, dst *bool) {
	if v, ok := r.get(key); ok {
		b, ok := v.(*zygo.SexpBool)
		if !ok {
			r.fail(key, fmt.Errorf("expected true or false, got %s", v.SexpString(nil)))
			return
		}
		*dst = b.Val
	}
}

func (r *argReader) floats(key string, dst *[]float64) {
	if v, ok := r.get(key); ok {
		fs, err := toFloats(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = fs
	}
}

func (r *argReader) spacing(key string, dst *layout.Spacing) {
	if v, ok := r.get(key); ok {
		s, err := toSpacing(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = s
	}
}

// common reads the :fit and :kind keywords every builder accepts.
func (r *argReader) common(fit *float64, kind *clamp.PartKind) {
	r.float("fit", fit)
	if v, ok := r.get("kind"); ok {
		name, err := toKeywordString(v)
		if err == nil {
			*kind, err = clamp.ParsePartKind(name)
		}
		if err != nil {
			r.fail("kind", err)
		}
	}
}

// done reports the first conversion error, or the first keyword nothing
// asked for.
func (r *argReader) done() error {
	if r.err != nil {
		return r.err
	}
	for _, k := range r.pa.order {
		if !r.used[k] {
			return fmt.Errorf("%s: unknown keyword :%s", r.fn, k)
		}
	}
	return nil
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
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

// toKeywordString accepts a keyword (:x) or a plain string ("x").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

func toAxis(s zygo.Sexp) (kernel.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	switch name {
	case "x":
		return kernel.AxisX, nil
	case "y":
		return kernel.AxisY, nil
	case "z":
		return kernel.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
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
	return nil, fmt.Errorf("expected list or array, got %s", s.SexpString(nil))
}

func toFloats(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toSpacing reads either one number, applied between every pair of tubes,
// or a list of gaps.
func toSpacing(s zygo.Sexp) (layout.Spacing, error) {
	if f, err := toFloat64(s); err == nil {
		return layout.Scalar(f), nil
	}
	fs, err := toFloats(s)
	if err != nil {
		return layout.Spacing{}, fmt.Errorf("expected number or list of numbers: %w", err)
	}
	return layout.List(fs...), nil
}

// toGaps reads vertical gaps where :auto leaves the gap to the row below.
func toGaps(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if name, ok := isKW(item); ok && name == "auto" {
			out[i] = layout.Undefined()
			continue
		}
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: expected number or :auto: %w", i, err)
		}
	}
	return out, nil
}

func toRequest(s zygo.Sexp) (clamp.Request, error) {
	switch v := s.(type) {
	case *sexpRequest:
		return v.req, nil
	case *sexpPart:
		return v.part.Request, nil
	}
	return nil, fmt.Errorf("expected a builder such as (multiple-straight ...), got %s", s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the clamp builtins into env. Parts defined by
// the script are added to d.
//
// Source must go through preprocessSource first so that :keyword tokens
// reach the builtins as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, d *design.Design) {

	// -----------------------------------------------------------------------
	// (defaults :thickness 3 :screw-diameter 4 :countersunk false :strict true)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("defaults", args)
		cfg := d.Config
		r.float("thickness", &cfg.Thickness)
		r.float("screw-diameter", &cfg.ScrewDiameter)
		r.float("screw-head-diameter", &cfg.ScrewHeadDiameter)
		r.bool("countersunk", &cfg.Countersunk)
		r.float("screw-extension", &cfg.ScrewExtension)
		r.float("rounding-radius", &cfg.RoundingRadius)
		r.float("champfer", &cfg.Champfer)
		r.float("fit", &cfg.FitEpsilon)
		r.int("segments", &cfg.Segments)
		r.float("slack", &cfg.Slack)
		r.int("mesh-cells", &cfg.MeshCells)
		r.bool("strict", &cfg.Strict)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		if err := cfg.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("defaults: %w", err)
		}
		d.Config = cfg
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (multiple-straight :width 20 :diameters (list 16 20 16) :spacing (list 25 35)
	//                    :thick-hull true :kind :bridge)
	// -----------------------------------------------------------------------
	env.AddFunction("multiple_straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("multiple-straight", args)
		var p clamp.StraightParams
		r.float("width", &p.Width)
		r.floats("diameters", &p.Diameters)
		r.spacing("spacing", &p.Spacing)
		r.bool("thick-hull", &p.ThickHull)
		r.common(&p.Fit, &p.Kind)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRequest{builder: "multiple-straight", req: p}, nil
	})

	// -----------------------------------------------------------------------
	// (stacked-straight :width 20 :rows (list (list 16 16) (list 20))
	//                   :spacings (list 25 0) :spacings-z (list :auto))
	// -----------------------------------------------------------------------
	env.AddFunction("stacked_straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("stacked-straight", args)
		var p clamp.StackedParams
		r.float("width", &p.Width)
		if v, ok := r.get("rows"); ok {
			rows, err := sexpListToSlice(v)
			if err != nil {
				r.fail("rows", err)
			}
			for i, row := range rows {
				diams, err := toFloats(row)
				if err != nil {
					r.fail("rows", fmt.Errorf("row %d: %w", i, err))
					break
				}
				p.Rows = append(p.Rows, diams)
			}
		}
		if v, ok := r.get("spacings"); ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				r.fail("spacings", err)
			}
			for i, item := range items {
				s, err := toSpacing(item)
				if err != nil {
					r.fail("spacings", fmt.Errorf("row %d: %w", i, err))
					break
				}
				p.Spacings = append(p.Spacings, s)
			}
		}
		if v, ok := r.get("spacings-z"); ok {
			gaps, err := toGaps(v)
			if err != nil {
				r.fail("spacings-z", err)
			}
			p.SpacingsZ = gaps
		}
		r.common(&p.Fit, &p.Kind)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRequest{builder: "stacked-straight", req: p}, nil
	})

	// -----------------------------------------------------------------------
	// (multiple-round :diameters (list 16 16) :spacings-x 30 :spacings-y 40)
	// -----------------------------------------------------------------------
	env.AddFunction("multiple_round", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("multiple-round", args)
		var p clamp.RoundParams
		r.floats("diameters", &p.Diameters)
		r.spacing("spacings-x", &p.SpacingsX)
		r.spacing("spacings-y", &p.SpacingsY)
		r.common(&p.Fit, &p.Kind)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRequest{builder: "multiple-round", req: p}, nil
	})

	// -----------------------------------------------------------------------
	// (turn 30 30) or (turn :x 30 :y 30)
	// -----------------------------------------------------------------------
	env.AddFunction("turn", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("turn", args)
		var t clamp.Turn
		switch pos := r.pa.positional; len(pos) {
		case 0:
		case 2:
			var err error
			if t.SpacingX, err = toFloat64(pos[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("turn: x: %w", err)
			}
			if t.SpacingY, err = toFloat64(pos[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("turn: y: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("turn takes an x and a y spacing, got %d arguments", len(pos))
		}
		r.float("x", &t.SpacingX)
		r.float("y", &t.SpacingY)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSegment{seg: t}, nil
	})

	// -----------------------------------------------------------------------
	// (straight :x 30) or (straight :axis :y :spacing 30)
	// -----------------------------------------------------------------------
	env.AddFunction("straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("straight", args)
		s := clamp.Straight{Axis: kernel.AxisY}
		for _, a := range []kernel.Axis{kernel.AxisX, kernel.AxisY} {
			if _, ok := r.pa.kw[a.String()]; ok {
				s.Axis = a
				r.float(a.String(), &s.Spacing)
			}
		}
		if v, ok := r.get("axis"); ok {
			a, err := toAxis(v)
			if err != nil {
				r.fail("axis", err)
			}
			s.Axis = a
		}
		r.float("spacing", &s.Spacing)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSegment{seg: s}, nil
	})

	// -----------------------------------------------------------------------
	// (straight-round :diameters (list 16 16 20) :segments (list (turn 0 0) (turn 30 30) (straight :x 40)))
	// -----------------------------------------------------------------------
	env.AddFunction("straight_round", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("straight-round", args)
		var p clamp.StraightRoundParams
		r.floats("diameters", &p.Diameters)
		if v, ok := r.get("segments"); ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				r.fail("segments", err)
			}
			for i, item := range items {
				seg, ok := item.(*sexpSegment)
				if !ok {
					r.fail("segments", fmt.Errorf("entry %d: expected (turn ...) or (straight ...), got %s", i, item.SexpString(nil)))
					break
				}
				p.Segments = append(p.Segments, seg.seg)
			}
		}
		r.common(&p.Fit, &p.Kind)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRequest{builder: "straight-round", req: p}, nil
	})

	// -----------------------------------------------------------------------
	// (tee :diameters (list 16 16) :spacings-x 30 :straight (list 20) :straight-spacing 0)
	// -----------------------------------------------------------------------
	env.AddFunction("tee", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("tee", args)
		var p clamp.TeeParams
		r.floats("diameters", &p.Diameters)
		r.spacing("spacings-x", &p.SpacingsX)
		r.spacing("spacings-y", &p.SpacingsY)
		r.floats("straight", &p.Straight)
		r.spacing("straight-spacing", &p.StraightSpacing)
		r.common(&p.Fit, &p.Kind)
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRequest{builder: "tee", req: p}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "left" (multiple-round ...))
	// (defpart "right" (part "left") :mirror :x)
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("defpart", args)
		if len(r.pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}
		partName, err := toString(r.pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		req, err := toRequest(r.pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart %q: %w", partName, err)
		}
		var mirror *kernel.Axis
		if v, ok := r.get("mirror"); ok {
			a, err := toAxis(v)
			if err != nil {
				r.fail("mirror", err)
			}
			mirror = &a
		}
		if err := r.done(); err != nil {
			return zygo.SexpNull, err
		}

		p, err := d.Define(partName, req, mirror)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPart{part: p}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		p := d.Lookup(partName)
		if p == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpPart{part: p}, nil
	})
}
