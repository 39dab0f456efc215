package clamp

import (
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
	"github.com/chazu/tubeclamp/pkg/shapes"
)

// TeeParams describes a branching part: tubes enter through the y=0 edge
// and either turn towards the left edge, turn towards the right edge, or
// run straight through the middle.
type TeeParams struct {
	Diameters       []float64 // elbows of each side group
	SpacingsX       layout.Spacing
	SpacingsY       layout.Spacing // empty reuses SpacingsX
	Straight        []float64      // diameters of the straight-through tubes
	StraightSpacing layout.Spacing
	Fit             float64
	Kind            PartKind
	// Branches are extra solids in part coordinates, unioned with the body
	// before bores and screws are cut.
	Branches []kernel.Solid
}

var _ Request = TeeParams{}

func (p TeeParams) round() RoundParams {
	return RoundParams{
		Diameters: p.Diameters,
		SpacingsX: p.SpacingsX,
		SpacingsY: p.SpacingsY,
		Fit:       p.Fit,
		Kind:      p.Kind,
	}
}

func (p TeeParams) Validate(cfg config.Config) ValidationErrors {
	c := &checker{strict: cfg.Strict, findings: p.round().Validate(cfg)}
	for i, s := range p.Branches {
		if s == nil {
			c.errorf("branches", "branch %d is nil", i)
		}
	}
	if len(p.Straight) == 0 {
		if !p.StraightSpacing.IsScalar() && p.StraightSpacing.Len() > 0 {
			c.errorf("straight_spacing", "%d spacings without straight tubes", p.StraightSpacing.Len())
		}
		return c.findings
	}
	c.diameters("straight", p.Straight)
	c.row("straight_spacing", p.Straight, p.StraightSpacing.Resolve(len(p.Straight)), fitOr(p.Fit, cfg), cfg)
	return c.findings
}

func (p TeeParams) Build(k kernel.Kernel, cfg config.Config) (*Result, error) {
	return TeeWithSideStraight(k, cfg, p)
}

// TeeWithSideStraight builds two mirrored elbow groups around a strip of
// straight tubes. The strip is filled up to the tube axes so the tubes cross
// solid material.
func TeeWithSideStraight(k kernel.Kernel, cfg config.Config, p TeeParams) (*Result, error) {
	findings := p.Validate(cfg)
	if err := findings.Err(); err != nil {
		return nil, err
	}
	fit := fitOr(p.Fit, cfg)
	rp := p.round()
	n := len(p.Diameters)
	xs, err := layout.Layout(p.Diameters, rp.SpacingsX.Resolve(n), fit, cfg)
	if err != nil {
		return nil, err
	}
	ys, err := layout.Layout(p.Diameters, rp.spacingsY().Resolve(n), fit, cfg)
	if err != nil {
		return nil, err
	}
	var strip layout.Row
	if len(p.Straight) > 0 {
		strip, err = layout.Layout(p.Straight, p.StraightSpacing.Resolve(len(p.Straight)), fit, cfg)
		if err != nil {
			return nil, err
		}
	}

	side := xs.Extent
	res := &Result{Kind: p.Kind, Width: 2*side + strip.Extent, Depth: ys.Extent, Warnings: findings}
	mirror := func(s kernel.Solid) kernel.Solid {
		return k.Translate(k.Mirror(s, kernel.AxisX), res.Width, 0, 0)
	}

	left := newParts(k, cfg, p.Kind)
	bends := make([]bend, n)
	for i, d := range p.Diameters {
		bends[i] = elbowAt(xs.Offsets[i], ys.Offsets[i], tubeOn(d, fit, 0, cfg))
		left.addBend(bends[i], res)
	}
	for i := range bends {
		place := res.Tubes[i]
		place.X = res.Width - place.X
		place.Quadrant[0] = -1
		res.Tubes = append(res.Tubes, place)
	}

	b := newParts(k, cfg, p.Kind)
	b.plate(res.Width, res.Depth)
	b.a.merge(left.a, nil)
	b.a.merge(left.a, mirror)

	var top float64
	for _, t := range res.Tubes {
		top = max(top, t.Z)
	}
	for i, d := range p.Straight {
		t := tubeOn(d, fit, 0, cfg)
		x := side + strip.Offsets[i]
		b.straight(kernel.AxisY, x, 0, res.Depth, t, 0, bothEnds)
		res.Tubes = append(res.Tubes, TubePlacement{
			Diameter: d, BoreRadius: t.bore, X: x, Z: t.z, Axis: kernel.AxisY,
		})
		res.Height = max(res.Height, t.z+t.outer)
		top = max(top, t.z)
	}
	if strip.Extent > 0 {
		b.a.extras = append(b.a.extras, shapes.Cube(k, shapes.Vec{side, 0, 0}, strip.Extent, res.Depth, top))
	}
	b.a.extras = append(b.a.extras, p.Branches...)

	c := layout.ScrewClearance(cfg)
	inner := clearOfBends(layout.Point{X: c, Y: c}, bends, cfg)
	pts := []layout.Point{
		inner,
		{X: res.Width - inner.X, Y: inner.Y},
		{X: c, Y: res.Depth - c},
		{X: res.Width - c, Y: res.Depth - c},
	}
	if outer := outermost(bends); outer != nil {
		d := outer.diagonal(cfg)
		pts = append(pts, d, layout.Point{X: res.Width - d.X, Y: d.Y})
	}
	for _, s := range pts {
		res.Screws = append(res.Screws, b.screw(cfg, s.X, s.Y, 0))
	}

	res.Solid = b.a.compose(k, p.Kind)
	return res, nil
}
