package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/design"
)

func TestEvaluateParts(t *testing.T) {
	tests := []struct {
		name   string
		source string
		parts  []string
	}{
		{"empty", "", nil},
		{"whitespace", "   \n\t  \n  ", nil},
		{"comments only", "; clamps for the rack\n;; none yet\n", nil},
		{"arithmetic defines nothing", "(def x 10)\n(def y 20)\n(+ x y)", nil},
		{"one part", `(defpart "clip" (multiple-straight :width 20 :diameters (list 16)))`, []string{"clip"}},
		{"parts keep source order", `
(defpart "rear" (multiple-round :diameters (list 16)))
(defpart "front" (multiple-straight :width 20 :diameters (list 16 16) :spacing 30))
`, []string{"rear", "front"}},
		{"computed width", `(def w (* 2 12)) (defpart "wide" (multiple-straight :width w :diameters (list 20)))`, []string{"wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := NewEngine(config.Default()).Evaluate(tt.source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("unexpected eval errors: %v", evalErrs)
			}
			if d == nil {
				t.Fatal("expected non-nil design")
			}
			if d.Len() != len(tt.parts) {
				t.Fatalf("design has %d parts, want %d", d.Len(), len(tt.parts))
			}
			for i, name := range tt.parts {
				if got := d.Parts[i].Name; got != name {
					t.Errorf("part %d = %q, want %q", i, got, name)
				}
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unmatched paren", "(+ 1 2", ""},
		{"undefined symbol", "(+ 1 undefined-symbol)", ""},
		{"parse error after a part", "(defpart \"a\" (multiple-round :diameters (list 16)))\n(+ 3", ""},
		{"bad keyword in second part", "(defpart \"a\" (multiple-round :diameters (list 16)))\n\n(defpart \"b\" (multiple-straight :width 20 :bogus 1))", "unknown keyword :bogus"},
		{"part named twice", "(defpart \"a\" (multiple-round :diameters (list 16)))\n(defpart \"a\" (multiple-round :diameters (list 20)))", "already defined"},
		{"defpart without builder", "(def d 16)\n(defpart \"a\" d)", "expected a builder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := NewEngine(config.Default()).Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected eval errors, got fatal: %v", err)
			}
			if d != nil {
				t.Fatal("expected nil design")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			e := evalErrs[0]
			if e.Message == "" {
				t.Error("eval error message should not be empty")
			}
			if !strings.Contains(e.Message, tt.want) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.want)
			}
			// Line info depends on the zygomys error format. When present it
			// must point inside the script.
			if lines := strings.Count(tt.source, "\n") + 1; e.Line < 0 || e.Line > lines {
				t.Errorf("line = %d, script has %d lines", e.Line, lines)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "unknown keyword :bogus"}, "line 5: unknown keyword :bogus"},
		{EvalError{Message: `part "a" already defined`}, `part "a" already defined`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestEvaluateRepeatable(t *testing.T) {
	eng := NewEngine(config.Default())
	source := `(defpart "clip" (multiple-straight :width 20 :diameters (list 16 16) :spacing 30))`

	var first *design.Part
	for i := 0; i < 3; i++ {
		d, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("run %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		p := d.MustLookup("clip")
		if first == nil {
			first = p
			continue
		}
		if p.ID != first.ID {
			t.Errorf("run %d: id %s, want %s", i, p.ID.Short(), first.ID.Short())
		}
		if !reflect.DeepEqual(p.Request, first.Request) {
			t.Errorf("run %d: request %+v, want %+v", i, p.Request, first.Request)
		}
	}
}

func TestAwaitTimeout(t *testing.T) {
	eng := NewEngine(config.Default())
	eng.timeout = 20 * time.Millisecond

	start := time.Now()
	_, _, err := eng.await(make(chan outcome), 0)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "20ms") {
		t.Errorf("error should name the limit, got %q", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("await took %s", elapsed)
	}
}

func TestAwaitDropsSupersededRun(t *testing.T) {
	eng := NewEngine(config.Default())
	eng.generation = 2

	ch := make(chan outcome, 1)
	ch <- outcome{}
	if _, _, err := eng.await(ch, 1); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}

	ch <- outcome{errs: []EvalError{{Message: "kept"}}}
	_, evalErrs, err := eng.await(ch, 2)
	if err != nil {
		t.Fatalf("latest run should report, got %v", err)
	}
	if len(evalErrs) != 1 || evalErrs[0].Message != "kept" {
		t.Errorf("evalErrs = %v", evalErrs)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", `part "a" already defined`, 0, `part "a" already defined`},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: unknown keyword :bogus", 3, "unknown keyword :bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}
