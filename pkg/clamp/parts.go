package clamp

import (
	"math"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
	"github.com/chazu/tubeclamp/pkg/shapes"
)

// tube holds the radii of one tube and the height of its centerline.
type tube struct {
	d     float64
	bore  float64
	outer float64
	z     float64
}

// tubeOn seats a tube of diameter d on a floor at z=level.
func tubeOn(d, fit, level float64, cfg config.Config) tube {
	bore := layout.BoreRadius(d, fit)
	return tube{
		d:     d,
		bore:  bore,
		outer: bore + cfg.Thickness,
		z:     level + cfg.Thickness + bore,
	}
}

// ends selects which faces of a straight run get a champfer.
type ends struct {
	start, end bool
}

var bothEnds = ends{start: true, end: true}

// parts builds sub-solids on a kernel into an assembly.
type parts struct {
	k        kernel.Kernel
	cfg      config.Config
	champfer float64
	a        assembly
}

func newParts(k kernel.Kernel, cfg config.Config, kind PartKind) *parts {
	return &parts{k: k, cfg: cfg, champfer: kind.champfer(cfg.Champfer)}
}

// along returns p moved by d in the direction of axis, in the XY plane.
func along(x, y float64, axis kernel.Axis, d float64) (float64, float64) {
	if axis == kernel.AxisX {
		return x + d, y
	}
	return x, y + d
}

// straight adds a straight tube entering at (x, y) and running for length
// along axis, which must be AxisX or AxisY. The support pad reaches down to
// z=ground.
func (p *parts) straight(axis kernel.Axis, x, y, length float64, t tube, ground float64, champ ends) {
	k, cfg := p.k, p.cfg
	n, slack := cfg.Segments, cfg.Slack

	if p.champfer > 0 {
		if champ.start {
			p.a.bores = append(p.a.bores,
				shapes.Champfer(k, axis, shapes.Vec{x, y, t.z}, t.bore, p.champfer, 1, n, slack))
		}
		if champ.end {
			ex, ey := along(x, y, axis, length)
			p.a.bores = append(p.a.bores,
				shapes.Champfer(k, axis, shapes.Vec{ex, ey, t.z}, t.bore, p.champfer, -1, n, slack))
		}
	}
	if length <= 0 {
		return
	}

	pad := shapes.Trapezoid(k, 2*t.outer+cfg.Thickness, 2*t.outer, t.z-ground, length)
	half := t.outer + cfg.Thickness + slack
	under := shapes.Cube(k, shapes.Vec{-half, -slack, ground - slack}, 2*half, length+2*slack, t.z-ground+slack)
	if axis == kernel.AxisX {
		pad = k.Rotate(pad, 0, 0, -90)
		under = k.Rotate(under, 0, 0, -90)
	}
	pad = k.Translate(pad, x, y, ground)
	under = k.Translate(under, x, y, 0)

	shell := shapes.Cylinder(k, axis, shapes.Vec{x, y, t.z}, length, t.outer, n)
	p.a.supports = append(p.a.supports, pad)
	p.a.shells = append(p.a.shells, shell)
	p.a.bodies = append(p.a.bodies, k.Hull(pad, shell))
	p.a.undersides = append(p.a.undersides, under)
	p.a.bores = append(p.a.bores, shapes.Bore(k, axis, shapes.Vec{x, y, t.z}, length, t.bore, 0, n, slack))
}

// elbow adds a quarter bend of radius r around (cx, cy) in the x >= cx,
// y >= cy quadrant, together with the straight inlet from the x=0 edge and
// the straight outlet to the y=0 edge. The entry faces are champfered.
func (p *parts) elbow(cx, cy, r float64, t tube, ground float64) {
	k, cfg := p.k, p.cfg
	n, slack := cfg.Segments, cfg.Slack

	torus := k.Translate(shapes.QuarterTorus(k, r, t.outer, n, slack), cx, cy, t.z)
	skirt := k.Translate(shapes.QuarterAnnulus(k, math.Max(r-t.outer, 0), r+t.outer, t.z-ground, n, slack), cx, cy, ground)
	p.a.supports = append(p.a.supports, skirt)
	p.a.shells = append(p.a.shells, torus)
	p.a.bodies = append(p.a.bodies, k.Union(torus, skirt))

	wall := t.outer + cfg.Thickness + slack
	under := shapes.QuarterAnnulus(k, math.Max(r-wall, 0), r+wall, t.z-ground+slack, n, slack)
	p.a.undersides = append(p.a.undersides, k.Translate(under, cx, cy, ground-slack))
	p.a.bores = append(p.a.bores, k.Translate(shapes.QuarterTorus(k, r, t.bore, n, slack), cx, cy, t.z))

	p.straight(kernel.AxisX, 0, cy+r, cx, t, ground, ends{start: true})
	p.straight(kernel.AxisY, cx+r, 0, cy, t, ground, ends{start: true})
}

// screw adds a screw hole through the whole part, seated on a floor at
// z=level.
func (p *parts) screw(cfg config.Config, x, y, level float64) ScrewHole {
	seat := level + cfg.Thickness
	p.a.screws = append(p.a.screws, shapes.ScrewHole(p.k, cfg, x, y, 0, seat))
	return ScrewHole{X: x, Y: y, Seat: seat}
}

// plate adds the rounded base plate.
func (p *parts) plate(dx, dy float64) {
	p.a.plate = shapes.RoundedPlate(p.k, dx, dy, p.cfg.Thickness, p.cfg.RoundingRadius, p.cfg.Segments)
}

// bend describes one elbow in plate coordinates.
type bend struct {
	cx, cy, r float64
	t         tube
}

// elbowAt derives the bend for a tube whose outlet runs at x and whose
// inlet runs at y.
func elbowAt(x, y float64, t tube) bend {
	r := math.Min(x, y)
	return bend{cx: x - r, cy: y - r, r: r, t: t}
}

func (b bend) placement() TubePlacement {
	return TubePlacement{
		Diameter:   b.t.d,
		BoreRadius: b.t.bore,
		X:          b.cx,
		Y:          b.cy,
		Z:          b.t.z,
		Axis:       kernel.AxisZ,
		Elbow:      true,
		Bend:       b.r,
		Quadrant:   [2]float64{1, 1},
	}
}

// diagonal is the screw position beyond the outer wall of b, on the 45°
// line through its center.
func (b bend) diagonal(cfg config.Config) layout.Point {
	d := (b.r + b.t.outer + layout.ScrewClearance(cfg)) / math.Sqrt2
	return layout.Point{X: b.cx + d, Y: b.cy + d}
}

// cornerScrews returns the screw positions of a corner part: the four plate
// corners plus one hole on the diagonal of the outermost bend.
func cornerScrews(dx, dy float64, bends []bend, cfg config.Config) []layout.Point {
	c := layout.ScrewClearance(cfg)
	pts := []layout.Point{
		clearOfBends(layout.Point{X: c, Y: c}, bends, cfg),
		{X: dx - c, Y: c},
		{X: c, Y: dy - c},
		{X: dx - c, Y: dy - c},
	}
	if outer := outermost(bends); outer != nil {
		pts = append(pts, outer.diagonal(cfg))
	}
	return pts
}

// clearOfBends moves a screw that sits inside the bends towards their
// center until its head clears the inner wall of every one of them.
func clearOfBends(pt layout.Point, bends []bend, cfg config.Config) layout.Point {
	head := cfg.ScrewHeadDiameter / 2
	for _, b := range bends {
		dx, dy := pt.X-b.cx, pt.Y-b.cy
		dist := math.Hypot(dx, dy)
		inner := b.r - b.t.outer
		if dx < 0 || dy < 0 || dist == 0 || dist >= inner {
			continue
		}
		over := dist + head - inner
		if over <= 0 {
			continue
		}
		// The head has to stay on the plate.
		f := (dist - over - cfg.Slack) / dist
		moved := layout.Point{X: b.cx + dx*f, Y: b.cy + dy*f}
		if f > 0 && moved.X >= head && moved.Y >= head {
			pt = moved
		}
	}
	return pt
}
