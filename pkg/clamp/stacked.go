package clamp

import (
	"fmt"
	"math"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
	"github.com/chazu/tubeclamp/pkg/shapes"
)

// StackedParams describes rows of parallel tubes stacked above one plate.
type StackedParams struct {
	Width    float64
	Rows     [][]float64      // tube diameters per row, bottom row first
	Spacings []layout.Spacing // per row; missing entries mean a single tube
	// SpacingsZ[i] is the vertical distance between the floors of rows i
	// and i+1, which is also the centerline distance for tubes of equal
	// diameter. Undefined entries, or a nil slice, stack the upper row one
	// wall above the largest bore of the lower row.
	SpacingsZ []float64
	Fit       float64
	Kind      PartKind
}

var _ Request = StackedParams{}

func (p StackedParams) spacing(i int) layout.Spacing {
	if i < len(p.Spacings) {
		return p.Spacings[i]
	}
	return layout.Spacing{}
}

func (p StackedParams) Validate(cfg config.Config) ValidationErrors {
	c := newChecker(cfg)
	c.positive("width", p.Width)
	c.fit(p.Fit)
	c.kind(p.Kind)
	if len(p.Rows) == 0 {
		c.errorf("rows", "at least one row is required")
		return c.findings
	}
	if len(p.Spacings) > len(p.Rows) {
		c.errorf("spacings", "%d spacings for %d rows", len(p.Spacings), len(p.Rows))
	}
	if p.SpacingsZ != nil && len(p.SpacingsZ) != len(p.Rows)-1 {
		c.errorf("spacings_z", "%d entries for %d rows (want %d)", len(p.SpacingsZ), len(p.Rows), len(p.Rows)-1)
	}
	fit := fitOr(p.Fit, cfg)
	for i, row := range p.Rows {
		field := fmt.Sprintf("rows[%d]", i)
		c.diameters(field, row)
		if len(row) > 0 {
			c.row(field, row, p.spacing(i).Resolve(len(row)), fit, cfg)
		}
	}
	for i, z := range p.SpacingsZ {
		if layout.IsUndefined(z) || i+1 >= len(p.Rows) {
			continue
		}
		if z < 0 {
			c.errorf("spacings_z", "entry %d is %g, must not be negative", i, z)
			continue
		}
		if low := maxBore(p.Rows[i], fit); z < low {
			c.warnf("spacings_z", "rows %d and %d are %g apart, their bores overlap the %.2f bore below", i, i+1, z, low)
		}
	}
	return c.findings
}

func (p StackedParams) Build(k kernel.Kernel, cfg config.Config) (*Result, error) {
	return MultipleStackedStraight(k, cfg, p)
}

// StackOffsets returns the floor offset of every row relative to the bottom
// row. A row sits SpacingsZ above the one below it. An undefined entry
// leaves one plate thickness of wall above the largest bore of the row
// below, so the bores never cut into each other.
func StackOffsets(rows [][]float64, spacingsZ []float64, fit float64, cfg config.Config) []float64 {
	z := make([]float64, len(rows))
	for i := 1; i < len(rows); i++ {
		gap := maxBore(rows[i-1], fit) + cfg.Thickness
		if i-1 < len(spacingsZ) && !layout.IsUndefined(spacingsZ[i-1]) {
			gap = spacingsZ[i-1]
		}
		z[i] = z[i-1] + gap
	}
	return z
}

// MultipleStackedStraight builds a clamp holding several rows of parallel
// tubes above each other. All rows share the plate, which is as wide as the
// widest row, and one hull. Each row gets its own bores and screws seated at
// its own level.
func MultipleStackedStraight(k kernel.Kernel, cfg config.Config, p StackedParams) (*Result, error) {
	findings := p.Validate(cfg)
	if err := findings.Err(); err != nil {
		return nil, err
	}
	fit := fitOr(p.Fit, cfg)

	rows := make([]layout.Row, len(p.Rows))
	res := &Result{Kind: p.Kind, Depth: p.Width, Warnings: findings}
	for i, diams := range p.Rows {
		row, err := layout.Layout(diams, p.spacing(i).Resolve(len(diams)), fit, cfg)
		if err != nil {
			return nil, err
		}
		rows[i] = row
		res.Width = math.Max(res.Width, row.Extent)
	}
	res.RowZ = StackOffsets(p.Rows, p.SpacingsZ, fit, cfg)

	b := newParts(k, cfg, p.Kind)
	b.plate(res.Width, res.Depth)

	shifts := make([]float64, len(p.Rows))
	for i, diams := range p.Rows {
		shifts[i] = (res.Width - rows[i].Extent) / 2
		if i > 0 {
			// Upper rows get a floor of their own; it carries their screw
			// seats once the hull closes over it.
			floor := shapes.Cube(k, shapes.Vec{shifts[i], 0, res.RowZ[i]}, rows[i].Extent, p.Width, cfg.Thickness)
			b.a.bodies = append(b.a.bodies, floor)
		}
		for j, d := range diams {
			// Rows are seated so their centerlines sit RowZ above the
			// centerline the same tube would have in the bottom row.
			t := tubeOn(d, fit, res.RowZ[i], cfg)
			x := shifts[i] + rows[i].Offsets[j]
			b.straight(kernel.AxisY, x, 0, p.Width, t, 0, bothEnds)
			res.Tubes = append(res.Tubes, TubePlacement{
				Diameter: d, BoreRadius: t.bore, X: x, Z: t.z, Axis: kernel.AxisY,
			})
			res.Height = math.Max(res.Height, t.z+t.outer)
		}
	}

	// A screw runs from the plate up through its seat and leaves head room
	// above it, so it has to clear the tubes of every row. Lower rows come
	// first, so a shared position keeps the lowest seat.
	var seats []screwSeat
	for i := range p.Rows {
		for _, s := range layout.ScrewPositions(rows[i].Extent, p.Width, cfg) {
			pt := layout.Point{X: shifts[i] + s.X, Y: s.Y}
			if !seated(seats, pt) && clearOf(res.Tubes, pt.X, cfg) {
				seats = append(seats, screwSeat{pt: pt, level: res.RowZ[i]})
			}
		}
	}
	// Always thick: every row goes into one envelope.
	b.a.bodies = []kernel.Solid{k.Hull(b.a.bodies...)}

	for _, s := range seats {
		// The head has to reach its seat through everything above it.
		sc := cfg
		sc.ScrewExtension = math.Max(cfg.ScrewExtension, res.Height-s.level+cfg.Slack)
		res.Screws = append(res.Screws, b.screw(sc, s.pt.X, s.pt.Y, s.level))
	}

	res.Solid = b.a.compose(k, p.Kind)
	return res, nil
}

// screwSeat is a screw position and the floor level its head rests on.
type screwSeat struct {
	pt    layout.Point
	level float64
}

// clearOf reports whether a screw head at x stays clear of every tube bore.
func clearOf(tubes []TubePlacement, x float64, cfg config.Config) bool {
	for _, t := range tubes {
		if math.Abs(t.X-x) < t.BoreRadius+cfg.ScrewHeadDiameter/2 {
			return false
		}
	}
	return true
}

// seated reports whether a screw already goes through pt.
func seated(seats []screwSeat, pt layout.Point) bool {
	for _, s := range seats {
		if s.pt == pt {
			return true
		}
	}
	return false
}

// maxBore is the largest bored diameter among diams.
func maxBore(diams []float64, fit float64) float64 {
	m := 0.0
	for _, d := range diams {
		m = math.Max(m, 2*layout.BoreRadius(d, fit))
	}
	return m
}
