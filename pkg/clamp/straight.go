package clamp

import (
	"math"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// StraightParams describes a row of parallel tubes running along Y.
type StraightParams struct {
	Width     float64        // plate extent along the tubes
	Diameters []float64      // tube diameters, left to right
	Spacing   layout.Spacing // gaps between tube centers
	ThickHull bool           // hull all tube bodies together
	Fit       float64        // bore allowance; 0 selects the configured epsilon
	Kind      PartKind
}

var _ Request = StraightParams{}

func (p StraightParams) Validate(cfg config.Config) ValidationErrors {
	c := newChecker(cfg)
	c.positive("width", p.Width)
	c.diameters("diameters", p.Diameters)
	c.fit(p.Fit)
	c.kind(p.Kind)
	if len(p.Diameters) > 0 {
		c.row("spacing", p.Diameters, p.Spacing.Resolve(len(p.Diameters)), fitOr(p.Fit, cfg), cfg)
	}
	return c.findings
}

func (p StraightParams) Build(k kernel.Kernel, cfg config.Config) (*Result, error) {
	return MultipleStraight(k, cfg, p)
}

// MultipleStraight builds a clamp for parallel tubes. The plate is laid out
// along X from the tube diameters and spacing; the tubes run the full plate
// width along Y.
func MultipleStraight(k kernel.Kernel, cfg config.Config, p StraightParams) (*Result, error) {
	findings := p.Validate(cfg)
	if err := findings.Err(); err != nil {
		return nil, err
	}
	fit := fitOr(p.Fit, cfg)
	row, err := layout.Layout(p.Diameters, p.Spacing.Resolve(len(p.Diameters)), fit, cfg)
	if err != nil {
		return nil, err
	}

	b := newParts(k, cfg, p.Kind)
	res := &Result{Kind: p.Kind, Width: row.Extent, Depth: p.Width, Warnings: findings}
	b.plate(res.Width, res.Depth)

	for i, d := range p.Diameters {
		t := tubeOn(d, fit, 0, cfg)
		x := row.Offsets[i]
		b.straight(kernel.AxisY, x, 0, p.Width, t, 0, bothEnds)
		res.Tubes = append(res.Tubes, TubePlacement{
			Diameter: d, BoreRadius: t.bore, X: x, Z: t.z, Axis: kernel.AxisY,
		})
		res.Height = math.Max(res.Height, t.z+t.outer)
	}
	if p.ThickHull {
		b.a.bodies = []kernel.Solid{k.Hull(b.a.bodies...)}
	}

	for _, s := range layout.ScrewPositions(res.Width, res.Depth, cfg) {
		res.Screws = append(res.Screws, b.screw(cfg, s.X, s.Y, 0))
	}

	res.Solid = b.a.compose(k, p.Kind)
	return res, nil
}
