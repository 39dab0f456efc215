package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/design"
	"github.com/chazu/tubeclamp/pkg/engine"
	"github.com/chazu/tubeclamp/pkg/export"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
	"github.com/chazu/tubeclamp/pkg/tessellate"
)

// finding is an evaluation or validation problem in report form.
type finding struct {
	Line    int    `json:"line,omitempty"`
	Part    string `json:"part,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (f finding) String() string {
	var where string
	switch {
	case f.Line > 0:
		where = fmt.Sprintf("line %d: ", f.Line)
	case f.Part != "" && f.Field != "":
		where = fmt.Sprintf("part %q: %s: ", f.Part, f.Field)
	case f.Part != "":
		where = fmt.Sprintf("part %q: ", f.Part)
	case f.Field != "":
		where = f.Field + ": "
	}
	return where + f.Message
}

// partSummary describes one built part.
type partSummary struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
	Tubes  int     `json:"tubes"`
	Screws int     `json:"screws"`
	File   string  `json:"file,omitempty"`
}

func summarize(b tessellate.Built) partSummary {
	return partSummary{
		Name:   b.Name,
		Width:  b.Result.Width,
		Depth:  b.Result.Depth,
		Height: b.Result.Height,
		Tubes:  len(b.Result.Tubes),
		Screws: len(b.Result.Screws),
	}
}

// report is the outcome of evaluating and checking a design. Slices are
// never nil so JSON output shows [] rather than null.
type report struct {
	Parts    []partSummary `json:"parts"`
	Errors   []finding     `json:"errors"`
	Warnings []finding     `json:"warnings"`
}

func newReport() report {
	return report{Parts: []partSummary{}, Errors: []finding{}, Warnings: []finding{}}
}

func (r report) ok() bool { return len(r.Errors) == 0 }

func (r *report) addValidation(v design.Result) {
	conv := func(f design.Finding) finding {
		return finding{Part: f.Part, Field: f.Field, Message: f.Message}
	}
	for _, f := range v.Errors {
		r.Errors = append(r.Errors, conv(f))
	}
	for _, f := range v.Warnings {
		r.Warnings = append(r.Warnings, conv(f))
	}
}

func (r report) print(w io.Writer) {
	for _, p := range r.Parts {
		fmt.Fprintf(w, "%-16s %7.1f x %6.1f x %5.1f mm  %d tubes  %d screws\n",
			p.Name, p.Width, p.Depth, p.Height, p.Tubes, p.Screws)
	}
	for _, f := range r.Errors {
		fmt.Fprintf(w, "error    %s\n", f)
	}
	for _, f := range r.Warnings {
		fmt.Fprintf(w, "warning  %s\n", f)
	}
}

// evaluate runs a part script and validates the design it defines. The
// design is nil when the script itself failed.
func evaluate(ctx context.Context, source string, cfg config.Config) (*design.Design, report) {
	logger := loggerFromContext(ctx)
	r := newReport()

	d, evalErrs, err := engine.NewEngine(cfg).Evaluate(source)
	if err != nil {
		logger.Error("evaluation failed", "err", err)
		r.Errors = append(r.Errors, finding{Message: err.Error()})
		return nil, r
	}
	for _, e := range evalErrs {
		r.Errors = append(r.Errors, finding{Line: e.Line, Message: e.Message})
	}
	if d == nil {
		return nil, r
	}
	logger.Debug("evaluated script", "parts", d.Len(), "version", d.Version)
	r.addValidation(design.Validate(d))
	return d, r
}

// check validates d and logs the warnings. It fails on blocking findings.
func check(ctx context.Context, d *design.Design) error {
	r := newReport()
	r.addValidation(design.Validate(d))
	logger := loggerFromContext(ctx)
	for _, f := range r.Warnings {
		logger.Warn(f.String())
	}
	if !r.ok() {
		for _, f := range r.Errors {
			logger.Error(f.String())
		}
		return fmt.Errorf("%d errors in design: %w", len(r.Errors), clamp.ErrInvalid)
	}
	return nil
}

// preview builds d on the scad kernel, which is cheap, to report part sizes.
func preview(ctx context.Context, d *design.Design) ([]partSummary, error) {
	built, err := tessellate.Build(ctx, d, scad.New())
	if err != nil {
		return nil, err
	}
	out := make([]partSummary, len(built))
	for i, b := range built {
		out[i] = summarize(b)
	}
	return out, nil
}

// produce builds every part of d and writes each one to a file derived
// from out.
func (o *options) produce(ctx context.Context, d *design.Design, out string) ([]partSummary, error) {
	logger := loggerFromContext(ctx)
	if err := check(ctx, d); err != nil {
		return nil, err
	}

	k := o.kernelFor(out, d.Config)
	logger.Debug("building", "parts", d.Len(), "kernel", fmt.Sprintf("%T", k))
	p := newProgress(logger)
	built, err := tessellate.Build(ctx, d, k)
	if err != nil {
		return nil, err
	}

	summaries := make([]partSummary, len(built))
	for i, b := range built {
		path := export.PartPath(out, b.Name, len(built))
		if err := export.Write(path, b, k, d.Config); err != nil {
			return nil, err
		}
		s := summarize(b)
		s.File = path
		summaries[i] = s
		logger.Debug("wrote part", "part", b.Name, "file", path,
			"width", s.Width, "depth", s.Depth, "screws", s.Screws)
	}
	p.done(fmt.Sprintf("Built %d parts", len(built)), "output", out)
	return summaries, nil
}
