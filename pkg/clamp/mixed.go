package clamp

import (
	"fmt"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// Segment is the path one tube takes through a StraightRound part. It is
// either a Turn or a Straight.
type Segment interface {
	// spacings returns the gap from the previous tube along X and along Y.
	// An axis the tube does not advance on is Undefined.
	spacings() (x, y float64)
}

// Turn is a tube that bends 90° like the tubes of MultipleRound.
type Turn struct {
	SpacingX, SpacingY float64
}

func (t Turn) spacings() (float64, float64) { return t.SpacingX, t.SpacingY }

// Straight is a tube crossing the whole plate along Axis. Spacing is its gap
// from the previous tube across the run direction.
type Straight struct {
	Axis    kernel.Axis
	Spacing float64
}

func (s Straight) spacings() (float64, float64) {
	if s.Axis == kernel.AxisX {
		return layout.Undefined(), s.Spacing
	}
	return s.Spacing, layout.Undefined()
}

// StraightRoundParams describes a mix of turning and straight tubes. The
// spacing carried by the first segment is ignored: the first tube sits at the
// inner border on both axes.
type StraightRoundParams struct {
	Diameters []float64
	Segments  []Segment
	Fit       float64
	Kind      PartKind
}

var _ Request = StraightRoundParams{}

// axes splits the segments into one spacing list per axis.
func (p StraightRoundParams) axes() (xs, ys []float64) {
	for i := 1; i < len(p.Segments); i++ {
		if p.Segments[i] == nil {
			continue
		}
		x, y := p.Segments[i].spacings()
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

func (p StraightRoundParams) Validate(cfg config.Config) ValidationErrors {
	c := newChecker(cfg)
	c.diameters("diameters", p.Diameters)
	c.fit(p.Fit)
	c.kind(p.Kind)
	if len(p.Segments) != len(p.Diameters) {
		c.errorf("segments", "%d segments for %d tubes", len(p.Segments), len(p.Diameters))
		return c.findings
	}
	for i, s := range p.Segments {
		switch s := s.(type) {
		case nil:
			c.errorf("segments", "segment %d is missing", i)
		case Straight:
			if s.Axis != kernel.AxisX && s.Axis != kernel.AxisY {
				c.errorf("segments", "segment %d runs along %s, want x or y", i, s.Axis)
			}
		}
	}
	if len(c.findings.Errors()) > 0 || len(p.Diameters) == 0 {
		return c.findings
	}
	fit := fitOr(p.Fit, cfg)
	xs, ys := p.axes()
	rx, okx := c.row("segments.x", p.Diameters, xs, fit, cfg)
	ry, oky := c.row("segments.y", p.Diameters, ys, fit, cfg)
	if okx && oky {
		for _, pair := range p.crossings(rx, ry, fit) {
			c.warnf("segments", "straight tube %d crosses tube %d", pair[0], pair[1])
		}
	}
	return c.findings
}

// crossings returns the pairs (straight, other) whose paths meet.
func (p StraightRoundParams) crossings(rx, ry layout.Row, fit float64) [][2]int {
	var out [][2]int
	for i, si := range p.Segments {
		s, ok := si.(Straight)
		if !ok {
			continue
		}
		ri := layout.BoreRadius(p.Diameters[i], fit)
		for j, sj := range p.Segments {
			if j == i {
				continue
			}
			rj := layout.BoreRadius(p.Diameters[j], fit)
			switch o := sj.(type) {
			case Turn:
				// The elbow sweeps x in [0, X] and y in [0, Y].
				if s.Axis == kernel.AxisY && rx.Offsets[i] < rx.Offsets[j]+ri+rj ||
					s.Axis == kernel.AxisX && ry.Offsets[i] < ry.Offsets[j]+ri+rj {
					out = append(out, [2]int{i, j})
				}
			case Straight:
				// Perpendicular straights always meet; report each pair once.
				if o.Axis != s.Axis && i < j {
					out = append(out, [2]int{i, j})
				}
			}
		}
	}
	return out
}

func (p StraightRoundParams) Build(k kernel.Kernel, cfg config.Config) (*Result, error) {
	return StraightRound(k, cfg, p)
}

// StraightRound builds a part in which each tube either turns like in
// MultipleRound or runs straight across the plate along one axis.
func StraightRound(k kernel.Kernel, cfg config.Config, p StraightRoundParams) (*Result, error) {
	findings := p.Validate(cfg)
	if err := findings.Err(); err != nil {
		return nil, err
	}
	fit := fitOr(p.Fit, cfg)
	xs, ys := p.axes()
	rx, err := layout.Layout(p.Diameters, xs, fit, cfg)
	if err != nil {
		return nil, fmt.Errorf("segments x: %w", err)
	}
	ry, err := layout.Layout(p.Diameters, ys, fit, cfg)
	if err != nil {
		return nil, fmt.Errorf("segments y: %w", err)
	}

	b := newParts(k, cfg, p.Kind)
	res := &Result{Kind: p.Kind, Width: rx.Extent, Depth: ry.Extent, Warnings: findings}
	b.plate(res.Width, res.Depth)

	var bends []bend
	for i, d := range p.Diameters {
		t := tubeOn(d, fit, 0, cfg)
		x, y := rx.Offsets[i], ry.Offsets[i]
		switch s := p.Segments[i].(type) {
		case Turn:
			e := elbowAt(x, y, t)
			b.addBend(e, res)
			bends = append(bends, e)
		case Straight:
			place := TubePlacement{Diameter: d, BoreRadius: t.bore, Z: t.z, Axis: s.Axis}
			if s.Axis == kernel.AxisX {
				b.straight(kernel.AxisX, 0, y, res.Width, t, 0, bothEnds)
				place.Y = y
			} else {
				b.straight(kernel.AxisY, x, 0, res.Depth, t, 0, bothEnds)
				place.X = x
			}
			res.Tubes = append(res.Tubes, place)
			res.Height = max(res.Height, t.z+t.outer)
		}
	}

	for _, s := range cornerScrews(res.Width, res.Depth, bends, cfg) {
		res.Screws = append(res.Screws, b.screw(cfg, s.X, s.Y, 0))
	}
	res.Solid = b.a.compose(k, p.Kind)
	return res, nil
}
