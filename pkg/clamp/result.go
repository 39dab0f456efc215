package clamp

import (
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
)

// Request is a parameter set for one of the builders.
type Request interface {
	// Validate reports every finding without building geometry.
	Validate(cfg config.Config) ValidationErrors
	// Build validates and then builds the part on k.
	Build(k kernel.Kernel, cfg config.Config) (*Result, error)
}

// TubePlacement records where one tube runs through a part.
type TubePlacement struct {
	Diameter   float64
	BoreRadius float64
	// X, Y, Z is a point on the centerline. Straight tubes report their entry
	// point; elbows report the center of the bend.
	X, Y, Z float64
	Axis    kernel.Axis // run direction of a straight tube
	Elbow   bool
	Bend    float64 // bend radius, elbows only
	// Quadrant holds the signs of the X and Y offsets swept by an elbow,
	// relative to its center. Unmirrored elbows sweep {1, 1}.
	Quadrant [2]float64
}

// ScrewHole is a screw position on the plate.
type ScrewHole struct {
	X, Y float64
	Seat float64 // z of the head seat
}

// Result is a built part together with the layout facts behind it.
type Result struct {
	Solid    kernel.Solid
	Kind     PartKind
	Width    float64 // plate extent along X
	Depth    float64 // plate extent along Y
	Height   float64 // top of the highest tube body
	Tubes    []TubePlacement
	Screws   []ScrewHole
	RowZ     []float64 // stacked parts only: centerline offset of each row
	Warnings ValidationErrors
}

// assembly gathers the sub-solids of a part before the part kind decides
// which of them end up in the result.
type assembly struct {
	plate      kernel.Solid
	supports   []kernel.Solid // pads and skirts under the tubes
	shells     []kernel.Solid // tube walls
	bodies     []kernel.Solid // supports and shells merged per tube
	extras     []kernel.Solid // filled patches and caller geometry
	bores      []kernel.Solid
	screws     []kernel.Solid
	undersides []kernel.Solid // removed for PartBridge
}

func (a *assembly) compose(k kernel.Kernel, kind PartKind) kernel.Solid {
	cuts := make([]kernel.Solid, 0, len(a.bores)+len(a.screws)+len(a.undersides))
	cuts = append(cuts, a.bores...)
	cuts = append(cuts, a.screws...)

	var keep []kernel.Solid
	switch kind {
	case PartSupport:
		keep = append(keep, a.plate)
		keep = append(keep, a.supports...)
	case PartTubes:
		keep = append(keep, a.shells...)
	case PartBridge:
		keep = append(keep, a.bodies...)
		keep = append(keep, a.extras...)
		cuts = append(cuts, a.undersides...)
	default:
		keep = append(keep, a.plate)
		keep = append(keep, a.bodies...)
		keep = append(keep, a.extras...)
	}
	return k.Difference(k.Union(keep...), cuts...)
}

// merge appends every sub-solid of o, passed through f when f is non-nil.
// The plate of o is ignored.
func (a *assembly) merge(o assembly, f func(kernel.Solid) kernel.Solid) {
	conv := func(ss []kernel.Solid) []kernel.Solid {
		if f == nil {
			return ss
		}
		out := make([]kernel.Solid, len(ss))
		for i, s := range ss {
			out[i] = f(s)
		}
		return out
	}
	a.supports = append(a.supports, conv(o.supports)...)
	a.shells = append(a.shells, conv(o.shells)...)
	a.bodies = append(a.bodies, conv(o.bodies)...)
	a.extras = append(a.extras, conv(o.extras)...)
	a.bores = append(a.bores, conv(o.bores)...)
	a.screws = append(a.screws, conv(o.screws)...)
	a.undersides = append(a.undersides, conv(o.undersides)...)
}

// Mirrored returns a copy of r reflected across the plane normal to axis
// and moved back so the part again starts at the origin. Placements are
// reflected with it.
func (r *Result) Mirrored(k kernel.Kernel, axis kernel.Axis) *Result {
	out := *r
	var shift float64
	switch axis {
	case kernel.AxisX:
		shift = r.Width
	case kernel.AxisY:
		shift = r.Depth
	default:
		shift = r.Height
	}
	flip := func(x, y, z float64) (float64, float64, float64) {
		switch axis {
		case kernel.AxisX:
			return shift - x, y, z
		case kernel.AxisY:
			return x, shift - y, z
		}
		return x, y, shift - z
	}

	dx, dy, dz := flip(0, 0, 0)
	out.Solid = k.Translate(k.Mirror(r.Solid, axis), dx, dy, dz)

	out.Tubes = make([]TubePlacement, len(r.Tubes))
	for i, t := range r.Tubes {
		t.X, t.Y, t.Z = flip(t.X, t.Y, t.Z)
		if t.Elbow && axis != kernel.AxisZ {
			t.Quadrant[axis] = -t.Quadrant[axis]
		}
		out.Tubes[i] = t
	}
	out.Screws = make([]ScrewHole, len(r.Screws))
	for i, s := range r.Screws {
		s.X, s.Y, s.Seat = flip(s.X, s.Y, s.Seat)
		out.Screws[i] = s
	}
	return &out
}
