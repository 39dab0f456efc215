package clamp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// ErrInvalid matches any ValidationErrors that contains an error-severity
// finding.
var ErrInvalid = errors.New("clamp: invalid parameters")

// Severity indicates whether a validation finding blocks the build or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks the build
	SeverityWarning                 // part is built anyway
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string   // parameter the finding is about, empty if general
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationErrors is the list of findings for one parameter set.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold for blocking findings.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalid && v.HasErrors()
}

// HasErrors reports whether any finding blocks the build.
func (v ValidationErrors) HasErrors() bool {
	for _, e := range v {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the blocking findings.
func (v ValidationErrors) Errors() ValidationErrors {
	return v.filter(SeverityError)
}

// Warnings returns the advisory findings.
func (v ValidationErrors) Warnings() ValidationErrors {
	return v.filter(SeverityWarning)
}

func (v ValidationErrors) filter(s Severity) ValidationErrors {
	var out ValidationErrors
	for _, e := range v {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Err returns v as an error when it contains blocking findings, nil otherwise.
func (v ValidationErrors) Err() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// checker collects findings. Under strict mode warnings are recorded as
// errors.
type checker struct {
	strict   bool
	findings ValidationErrors
}

func newChecker(cfg config.Config) *checker {
	c := &checker{strict: cfg.Strict}
	if err := cfg.Validate(); err != nil {
		c.errorf("config", "%v", err)
	}
	return c
}

func (c *checker) errorf(field, format string, args ...any) {
	c.findings = append(c.findings, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
}

func (c *checker) warnf(field, format string, args ...any) {
	sev := SeverityWarning
	if c.strict {
		sev = SeverityError
	}
	c.findings = append(c.findings, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

func (c *checker) positive(field string, v float64) {
	if !(v > 0) {
		c.errorf(field, "is %g, must be positive", v)
	}
}

func (c *checker) diameters(field string, diams []float64) {
	if len(diams) == 0 {
		c.errorf(field, "at least one tube diameter is required")
		return
	}
	for i, d := range diams {
		if !(d > 0) {
			c.errorf(field, "diameter %d is %g, must be positive", i, d)
		}
	}
}

func (c *checker) fit(v float64) {
	if v < 0 {
		c.errorf("fit", "is %g, must not be negative", v)
	}
}

func (c *checker) kind(k PartKind) {
	if !k.Valid() {
		c.errorf("kind", "unknown part kind %d", int(k))
	}
}

// row lays out one axis and records length mismatches, negative gaps and
// crowded neighbours. ok is false when no layout could be computed.
func (c *checker) row(field string, diams, spacings []float64, fit float64, cfg config.Config) (layout.Row, bool) {
	for i, s := range spacings {
		if s < 0 {
			c.errorf(field, "spacing %d is %g, must not be negative", i, s)
		}
	}
	row, err := layout.Layout(diams, spacings, fit, cfg)
	if err != nil {
		c.errorf(field, "%v", err)
		return layout.Row{}, false
	}
	if len(spacings) == len(diams) {
		// The first entry is an absolute offset from the plate edge.
		first, wall := row.Offsets[0], layout.BoreRadius(diams[0], fit)+cfg.Thickness
		switch {
		case first < wall:
			c.errorf(field, "first tube at %.2f, its wall reaches past the plate edge (needs %.2f)", first, wall)
		case first < row.Inner:
			c.warnf(field, "first tube at %.2f is inside its %.2f border, the edge screws cut its bore", first, row.Inner)
		}
	}
	for _, i := range layout.Crowded(diams, row.Offsets, fit) {
		c.warnf(field, "tubes %d and %d are %.2f apart, their bores overlap",
			i, i+1, row.Offsets[i+1]-row.Offsets[i])
	}
	return row, true
}

// fitOr selects the configured fit epsilon when a parameter set leaves it 0.
func fitOr(fit float64, cfg config.Config) float64 {
	if fit == 0 {
		return cfg.FitEpsilon
	}
	return fit
}
