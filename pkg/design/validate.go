package design

import (
	"fmt"

	"github.com/chazu/tubeclamp/pkg/clamp"
)

// Finding is a validation finding attributed to a part.
type Finding struct {
	Part string // empty for design-level findings
	clamp.ValidationError
}

func (f Finding) Error() string {
	if f.Part == "" {
		return f.ValidationError.Error()
	}
	return fmt.Sprintf("part %q: %s", f.Part, f.ValidationError.Error())
}

// Result separates blocking findings from advisory ones.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether nothing blocks building the design.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate checks part names and every part's parameters against the
// design's config. It never builds geometry. Under Config.Strict every
// warning is reported as an error.
func Validate(d *Design) Result {
	var r Result
	add := func(part string, e clamp.ValidationError) {
		if d.Config.Strict {
			e.Severity = clamp.SeverityError
		}
		f := Finding{Part: part, ValidationError: e}
		if e.Severity == clamp.SeverityError {
			r.Errors = append(r.Errors, f)
		} else {
			r.Warnings = append(r.Warnings, f)
		}
	}

	if len(d.Parts) == 0 {
		add("", clamp.ValidationError{Message: "design has no parts", Severity: clamp.SeverityWarning})
	}
	seen := make(map[string]int)
	for _, p := range d.Parts {
		if p.Name == "" {
			add("", clamp.ValidationError{Field: "name", Message: "part without a name", Severity: clamp.SeverityError})
			continue
		}
		seen[p.Name]++
		if seen[p.Name] == 2 {
			add(p.Name, clamp.ValidationError{Field: "name", Message: "duplicate part name", Severity: clamp.SeverityError})
		}
	}
	for _, p := range d.Parts {
		if p.Request == nil {
			add(p.Name, clamp.ValidationError{Message: "no parameters", Severity: clamp.SeverityError})
			continue
		}
		for _, e := range p.Request.Validate(d.Config) {
			add(p.Name, e)
		}
	}
	return r
}
