package clamp

import (
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// RoundParams describes tubes turning 90° in parallel. Tube i enters along X
// from the x=0 edge and leaves along -Y through the y=0 edge.
type RoundParams struct {
	Diameters []float64
	SpacingsX layout.Spacing // outlet positions along X
	SpacingsY layout.Spacing // inlet positions along Y; empty reuses SpacingsX
	Fit       float64
	Kind      PartKind
}

var _ Request = RoundParams{}

func (p RoundParams) spacingsY() layout.Spacing {
	if p.SpacingsY.Len() == 0 {
		return p.SpacingsX
	}
	return p.SpacingsY
}

func (p RoundParams) Validate(cfg config.Config) ValidationErrors {
	c := newChecker(cfg)
	c.diameters("diameters", p.Diameters)
	c.fit(p.Fit)
	c.kind(p.Kind)
	if n := len(p.Diameters); n > 0 {
		fit := fitOr(p.Fit, cfg)
		c.row("spacings_x", p.Diameters, p.SpacingsX.Resolve(n), fit, cfg)
		c.row("spacings_y", p.Diameters, p.spacingsY().Resolve(n), fit, cfg)
	}
	return c.findings
}

func (p RoundParams) Build(k kernel.Kernel, cfg config.Config) (*Result, error) {
	return MultipleRound(k, cfg, p)
}

// MultipleRound builds a corner fastener: every tube gets a quarter torus
// elbow joined to a straight inlet and outlet. All tubes turn the same way;
// mirror the result for the other hand.
func MultipleRound(k kernel.Kernel, cfg config.Config, p RoundParams) (*Result, error) {
	findings := p.Validate(cfg)
	if err := findings.Err(); err != nil {
		return nil, err
	}
	fit := fitOr(p.Fit, cfg)
	n := len(p.Diameters)
	xs, err := layout.Layout(p.Diameters, p.SpacingsX.Resolve(n), fit, cfg)
	if err != nil {
		return nil, err
	}
	ys, err := layout.Layout(p.Diameters, p.spacingsY().Resolve(n), fit, cfg)
	if err != nil {
		return nil, err
	}

	b := newParts(k, cfg, p.Kind)
	res := &Result{Kind: p.Kind, Width: xs.Extent, Depth: ys.Extent, Warnings: findings}
	b.plate(res.Width, res.Depth)

	bends := make([]bend, n)
	for i, d := range p.Diameters {
		bends[i] = elbowAt(xs.Offsets[i], ys.Offsets[i], tubeOn(d, fit, 0, cfg))
	}
	for _, e := range bends {
		b.addBend(e, res)
	}

	for _, s := range cornerScrews(res.Width, res.Depth, bends, cfg) {
		res.Screws = append(res.Screws, b.screw(cfg, s.X, s.Y, 0))
	}
	res.Solid = b.a.compose(k, p.Kind)
	return res, nil
}

// addBend adds e and records its placement.
func (p *parts) addBend(e bend, res *Result) {
	p.elbow(e.cx, e.cy, e.r, e.t, 0)
	res.Tubes = append(res.Tubes, e.placement())
	res.Height = max(res.Height, e.t.z+e.t.outer)
}

// outermost returns the bend reaching furthest from the plate origin, nil
// when there are none.
func outermost(bends []bend) *bend {
	var out *bend
	for i := range bends {
		e := &bends[i]
		if out == nil || e.cx+e.cy+e.r > out.cx+out.cy+out.r {
			out = e
		}
	}
	return out
}
