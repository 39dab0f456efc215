package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// insideTolerance is how far outside a surface a support point may sit and
// still count as inside. Points on shared faces evaluate to roughly zero.
const insideTolerance = 1e-6

// hullDirections is the number of Fibonacci sphere directions used to
// approximate a convex hull by its support function.
const hullDirections = 256

// torusSDF is a torus around the Z axis. sdfx only offers revolving a 2D
// profile, which does not give an exact distance near the axis.
type torusSDF struct {
	major, minor float64
	bb           sdf.Box3
}

func newTorus(major, minor float64) *torusSDF {
	r := major + minor
	return &torusSDF{
		major: major,
		minor: minor,
		bb: sdf.Box3{
			Min: v3.Vec{X: -r, Y: -r, Z: -minor},
			Max: v3.Vec{X: r, Y: r, Z: minor},
		},
	}
}

func (t *torusSDF) Evaluate(p v3.Vec) float64 {
	q := math.Hypot(p.X, p.Y) - t.major
	return math.Hypot(q, p.Z) - t.minor
}

func (t *torusSDF) BoundingBox() sdf.Box3 {
	return t.bb
}

// hullSDF approximates the convex hull of a point set as the intersection of
// the half-spaces n·p <= h(n) for a fixed set of directions n, where h is the
// support function of the points. The result is a bound on the true
// distance, which is all marching cubes needs.
type hullSDF struct {
	normals []v3.Vec
	offsets []float64
	bb      sdf.Box3
}

func newHull(pts []v3.Vec) *hullSDF {
	dirs := hullNormals()
	h := &hullSDF{
		normals: dirs,
		offsets: make([]float64, len(dirs)),
	}
	for i, n := range dirs {
		best := math.Inf(-1)
		for _, p := range pts {
			best = math.Max(best, n.Dot(p))
		}
		h.offsets[i] = best
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	h.bb = sdf.Box3{Min: lo, Max: hi}
	return h
}

func (h *hullSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for i, n := range h.normals {
		d = math.Max(d, n.Dot(p)-h.offsets[i])
	}
	return d
}

func (h *hullSDF) BoundingBox() sdf.Box3 {
	return h.bb
}

// hullNormals returns unit directions covering the sphere: a Fibonacci
// lattice plus the 26 axis, edge and corner directions so that boxes and
// axis-aligned cylinders keep flat faces.
func hullNormals() []v3.Vec {
	dirs := make([]v3.Vec, 0, hullDirections+26)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < hullDirections; i++ {
		z := 1 - 2*(float64(i)+0.5)/hullDirections
		r := math.Sqrt(1 - z*z)
		phi := golden * float64(i)
		dirs = append(dirs, v3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z})
	}
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				v := v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
				dirs = append(dirs, v.Normalize())
			}
		}
	}
	return dirs
}
