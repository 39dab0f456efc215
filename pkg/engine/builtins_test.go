package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/design"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(multiple-round :diameters d)`,
			expect: `(multiple_round "__kw_diameters" d)`,
		},
		{
			name:   "multiple keywords",
			input:  `(turn :x 30 :y 40)`,
			expect: `(turn "__kw_x" 30 "__kw_y" 40)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw`",
			expect: "`raw :kw`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `(tee :straight-spacing 0)`,
			expect: `(tee "__kw_straight-spacing" 0)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(list -4 x-1)`,
			expect: `(list -4 x-1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builder tests
// ---------------------------------------------------------------------------

func evalOK(t *testing.T, source string) *design.Design {
	t.Helper()
	d, evalErrs, err := NewEngine(config.Default()).Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	return d
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	d, evalErrs, err := NewEngine(config.Default()).Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatalf("expected an eval error containing %q", want)
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("message = %q, want containing %q", evalErrs[0].Message, want)
	}
}

func TestMultipleStraight(t *testing.T) {
	d := evalOK(t, `
(defpart "clip"
  (multiple-straight :width 20 :diameters (list 16 20 16) :spacing (list 25 35)
                     :thick-hull true :fit 0.3 :kind :bridge))
`)
	want := clamp.StraightParams{
		Width:     20,
		Diameters: []float64{16, 20, 16},
		Spacing:   layout.List(25, 35),
		ThickHull: true,
		Fit:       0.3,
		Kind:      clamp.PartBridge,
	}
	got := d.MustLookup("clip").Request
	if !reflect.DeepEqual(got, want) {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestScriptMatchesDirectCall(t *testing.T) {
	d := evalOK(t, `(defpart "clip" (multiple-straight :width 20 :diameters [16 20 16] :spacing 30))`)
	cfg := config.Default()
	k := scad.New()

	direct, err := clamp.MultipleStraight(k, cfg, clamp.StraightParams{
		Width: 20, Diameters: []float64{16, 20, 16}, Spacing: layout.Scalar(30),
	})
	if err != nil {
		t.Fatal(err)
	}
	scripted, err := d.MustLookup("clip").Request.Build(k, d.Config)
	if err != nil {
		t.Fatal(err)
	}
	if scad.Source(scripted.Solid) != scad.Source(direct.Solid) {
		t.Error("scripted part differs from the direct builder call")
	}
	if scripted.Width != direct.Width {
		t.Errorf("width = %g, want %g", scripted.Width, direct.Width)
	}
}

func TestStackedStraight(t *testing.T) {
	d := evalOK(t, `
(defpart "stack"
  (stacked-straight :width 20
                    :rows (list (list 16 16) (list 20) (list 12))
                    :spacings (list 25 0 (list))
                    :spacings-z (list :auto 22)))
`)
	p, ok := d.MustLookup("stack").Request.(clamp.StackedParams)
	if !ok {
		t.Fatalf("request is %T", d.MustLookup("stack").Request)
	}
	if len(p.Rows) != 3 || p.Rows[0][1] != 16 || p.Rows[2][0] != 12 {
		t.Errorf("rows = %v", p.Rows)
	}
	if len(p.Spacings) != 3 || !p.Spacings[0].IsScalar() || p.Spacings[2].Len() != 0 {
		t.Errorf("spacings = %v", p.Spacings)
	}
	if len(p.SpacingsZ) != 2 || !layout.IsUndefined(p.SpacingsZ[0]) || p.SpacingsZ[1] != 22 {
		t.Errorf("spacings-z = %v", p.SpacingsZ)
	}
}

func TestRoundAndMirror(t *testing.T) {
	d := evalOK(t, `
(def corner (multiple-round :diameters (list 16 16) :spacings-x 30 :spacings-y (list 40)))
(defpart "left" corner)
(defpart "right" (part "left") :mirror :x)
`)
	left, right := d.MustLookup("left"), d.MustLookup("right")
	if left.Mirror != nil {
		t.Error("left should not be mirrored")
	}
	if right.Mirror == nil || *right.Mirror != kernel.AxisX {
		t.Errorf("right mirror = %v, want x", right.Mirror)
	}
	if !reflect.DeepEqual(left.Request, right.Request) {
		t.Error("mirrored part should reuse the request")
	}
	p := left.Request.(clamp.RoundParams)
	if !p.SpacingsX.IsScalar() || p.SpacingsY.IsScalar() {
		t.Errorf("spacings x=%v y=%v", p.SpacingsX, p.SpacingsY)
	}
	if got := strings.Join(d.Names(), ","); got != "left,right" {
		t.Errorf("names = %s", got)
	}
}

func TestStraightRoundSegments(t *testing.T) {
	d := evalOK(t, `
(defpart "mix"
  (straight-round :diameters (list 16 16 20 20)
                  :segments (list (turn 0 0) (turn :x 30 :y 35) (straight :x 40) (straight :axis :y :spacing 45))))
`)
	p := d.MustLookup("mix").Request.(clamp.StraightRoundParams)
	want := []clamp.Segment{
		clamp.Turn{},
		clamp.Turn{SpacingX: 30, SpacingY: 35},
		clamp.Straight{Axis: kernel.AxisX, Spacing: 40},
		clamp.Straight{Axis: kernel.AxisY, Spacing: 45},
	}
	if !reflect.DeepEqual(p.Segments, want) {
		t.Errorf("segments = %v, want %v", p.Segments, want)
	}
}

func TestTee(t *testing.T) {
	d := evalOK(t, `(defpart "t" (tee :diameters (list 16) :spacings-x 0 :straight (list 20 20) :straight-spacing 30 :kind :no-champfer))`)
	p := d.MustLookup("t").Request.(clamp.TeeParams)
	if len(p.Straight) != 2 || p.StraightSpacing.Resolve(2)[0] != 30 || p.Kind != clamp.PartNoChampfer {
		t.Errorf("tee = %+v", p)
	}
}

func TestDefaults(t *testing.T) {
	d := evalOK(t, `
(defaults :thickness 3.5 :countersunk false :segments 32 :strict true)
(defpart "a" (multiple-round :diameters (list 16)))
`)
	if d.Config.Thickness != 3.5 || d.Config.Countersunk || d.Config.Segments != 32 || !d.Config.Strict {
		t.Errorf("config = %+v", d.Config)
	}
	if d.Config.ScrewDiameter != config.Default().ScrewDiameter {
		t.Error("settings not named in defaults should keep their value")
	}
}

func TestVersionFollowsGeneration(t *testing.T) {
	eng := NewEngine(config.Default())
	for i := uint64(1); i <= 3; i++ {
		d, _, err := eng.Evaluate(`(defpart "a" (multiple-round :diameters (list 16)))`)
		if err != nil {
			t.Fatal(err)
		}
		if d.Version != i {
			t.Errorf("version = %d, want %d", d.Version, i)
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing part", `(part "nonexistent")`, `no part named "nonexistent"`},
		{"unknown keyword", `(multiple-round :diameter (list 16))`, "unknown keyword :diameter"},
		{"bad kind", `(multiple-round :diameters (list 16) :kind :sideways)`, "kind"},
		{"not a number", `(multiple-straight :width "wide")`, "width: expected number"},
		{"bad list entry", `(multiple-round :diameters (list 16 "x"))`, "entry 1"},
		{"bad axis", `(straight :axis :w)`, "invalid axis"},
		{"turn arity", `(turn 1 2 3)`, "3 arguments"},
		{"segment type", `(straight-round :diameters (list 16) :segments (list 4))`, "expected (turn ...)"},
		{"defpart body", `(defpart "a" 12)`, "expected a builder"},
		{"defpart arity", `(defpart "a")`, "requires a name"},
		{"duplicate", `(defpart "a" (multiple-round :diameters (list 16))) (defpart "a" (multiple-round :diameters (list 16)))`, "already defined"},
		{"bad defaults", `(defaults :thickness -1)`, "thickness"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	d := evalOK(t, `(def w (+ 10 10)) (defpart "a" (multiple-straight :width w :diameters (list 16)))`)
	if got := d.MustLookup("a").Request.(clamp.StraightParams).Width; got != 20 {
		t.Errorf("width = %g, want 20", got)
	}
}
