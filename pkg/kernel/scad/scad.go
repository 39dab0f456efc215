// Package scad implements kernel.Kernel by emitting OpenSCAD source.
//
// Solids are kept as a statement tree and rendered on demand with Source.
// Bounding boxes are tracked from sample points carried through every
// transform, so builders can query extents without a renderer.
package scad

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/tubeclamp/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// minRing bounds how coarsely circles are sampled for bounding boxes.
const minRing = 16

// Solid is an OpenSCAD statement with optional children.
type Solid struct {
	stmt     string
	children []*Solid
	pts      []r3.Vec
}

// BoundingBox returns the axis-aligned bounds of the tracked points.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	if len(s.pts) == 0 {
		return min, max
	}
	lo, hi := s.pts[0], s.pts[0]
	for _, p := range s.pts[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// Kernel builds OpenSCAD statement trees.
type Kernel struct{}

// New returns an OpenSCAD kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) *Solid {
	return s.(*Solid)
}

func num(v float64) string {
	if v == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func vec(x, y, z float64) string {
	return "[" + num(x) + ", " + num(y) + ", " + num(z) + "]"
}

func leaf(stmt string, pts []r3.Vec) *Solid {
	return &Solid{stmt: stmt, pts: pts}
}

func group(stmt string, pts []r3.Vec, children ...kernel.Solid) *Solid {
	s := &Solid{stmt: stmt, pts: pts}
	for _, c := range children {
		s.children = append(s.children, unwrap(c))
	}
	return s
}

func ring(r, z float64, segments int) []r3.Vec {
	n := max(segments, minRing)
	pts := make([]r3.Vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
	}
	return pts
}

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	var pts []r3.Vec
	for _, px := range []float64{0, x} {
		for _, py := range []float64{0, y} {
			for _, pz := range []float64{0, z} {
				pts = append(pts, r3.Vec{X: px, Y: py, Z: pz})
			}
		}
	}
	return leaf(fmt.Sprintf("cube(%s)", vec(x, y, z)), pts)
}

func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	pts := append(ring(radius, 0, segments), ring(radius, height, segments)...)
	return leaf(fmt.Sprintf("cylinder(h = %s, r = %s, $fn = %d)", num(height), num(radius), segments), pts)
}

func (k *Kernel) Cone(height, r0, r1 float64, segments int) kernel.Solid {
	pts := append(ring(r0, 0, segments), ring(r1, height, segments)...)
	return leaf(fmt.Sprintf("cylinder(h = %s, r1 = %s, r2 = %s, $fn = %d)", num(height), num(r0), num(r1), segments), pts)
}

func (k *Kernel) Sphere(radius float64, segments int) kernel.Solid {
	pts := append(ring(radius, 0, segments),
		r3.Vec{Z: radius}, r3.Vec{Z: -radius})
	return leaf(fmt.Sprintf("sphere(r = %s, $fn = %d)", num(radius), segments), pts)
}

// Torus is a circle of radius minor revolved at distance major.
func (k *Kernel) Torus(major, minor float64, segments int) kernel.Solid {
	pts := append(ring(major+minor, 0, segments),
		append(ring(major, minor, segments), ring(major, -minor, segments)...)...)
	circle := leaf(fmt.Sprintf("circle(r = %s, $fn = %d)", num(minor), segments), nil)
	moved := &Solid{stmt: fmt.Sprintf("translate(%s)", vec(major, 0, 0)), children: []*Solid{circle}}
	return &Solid{
		stmt:     fmt.Sprintf("rotate_extrude($fn = %d)", segments),
		children: []*Solid{moved},
		pts:      pts,
	}
}

func (k *Kernel) Prism(outline [][2]float64, height float64) kernel.Solid {
	coords := make([]string, len(outline))
	pts := make([]r3.Vec, 0, 2*len(outline))
	for i, p := range outline {
		coords[i] = "[" + num(p[0]) + ", " + num(p[1]) + "]"
		pts = append(pts, r3.Vec{X: p[0], Y: p[1]}, r3.Vec{X: p[0], Y: p[1], Z: height})
	}
	poly := leaf("polygon(points = ["+strings.Join(coords, ", ")+"])", nil)
	return &Solid{
		stmt:     fmt.Sprintf("linear_extrude(height = %s)", num(height)),
		children: []*Solid{poly},
		pts:      pts,
	}
}

func (k *Kernel) Union(solids ...kernel.Solid) kernel.Solid {
	if len(solids) == 1 {
		return solids[0]
	}
	var pts []r3.Vec
	for _, s := range solids {
		pts = append(pts, unwrap(s).pts...)
	}
	return group("union()", pts, solids...)
}

func (k *Kernel) Difference(a kernel.Solid, cut ...kernel.Solid) kernel.Solid {
	if len(cut) == 0 {
		return a
	}
	return group("difference()", unwrap(a).pts, append([]kernel.Solid{a}, cut...)...)
}

// Intersection bounds the result by the overlap of both bounding boxes.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var lo, hi [3]float64
	for i := range lo {
		lo[i] = math.Max(amin[i], bmin[i])
		hi[i] = math.Min(amax[i], bmax[i])
		if hi[i] < lo[i] {
			hi[i] = lo[i]
		}
	}
	pts := []r3.Vec{{X: lo[0], Y: lo[1], Z: lo[2]}, {X: hi[0], Y: hi[1], Z: hi[2]}}
	return group("intersection()", pts, a, b)
}

func (k *Kernel) Hull(solids ...kernel.Solid) kernel.Solid {
	var pts []r3.Vec
	for _, s := range solids {
		pts = append(pts, unwrap(s).pts...)
	}
	return group("hull()", pts, solids...)
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	d := r3.Vec{X: x, Y: y, Z: z}
	src := unwrap(s).pts
	pts := make([]r3.Vec, len(src))
	for i, p := range src {
		pts[i] = r3.Add(p, d)
	}
	return group("translate("+vec(x, y, z)+")", pts, s)
}

// Rotate follows OpenSCAD: X first, then Y, then Z, angles in degrees.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rots := []r3.Rotation{
		r3.NewRotation(x*math.Pi/180, r3.Vec{X: 1}),
		r3.NewRotation(y*math.Pi/180, r3.Vec{Y: 1}),
		r3.NewRotation(z*math.Pi/180, r3.Vec{Z: 1}),
	}
	src := unwrap(s).pts
	pts := make([]r3.Vec, len(src))
	for i, p := range src {
		for _, r := range rots {
			p = r.Rotate(p)
		}
		pts[i] = p
	}
	return group("rotate("+vec(x, y, z)+")", pts, s)
}

func (k *Kernel) Mirror(s kernel.Solid, axis kernel.Axis) kernel.Solid {
	var n r3.Vec
	switch axis {
	case kernel.AxisX:
		n.X = 1
	case kernel.AxisY:
		n.Y = 1
	case kernel.AxisZ:
		n.Z = 1
	default:
		panic(fmt.Sprintf("scad.Mirror: invalid axis %v", axis))
	}
	src := unwrap(s).pts
	pts := make([]r3.Vec, len(src))
	for i, p := range src {
		// p - 2(p·n)n
		pts[i] = r3.Sub(p, r3.Scale(2*r3.Dot(p, n), n))
	}
	return group("mirror("+vec(n.X, n.Y, n.Z)+")", pts, s)
}

// ToMesh always fails: OpenSCAD source has to be rendered externally.
func (k *Kernel) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return nil, kernel.ErrNoMesh
}

// Source renders s as an OpenSCAD program.
func Source(s kernel.Solid) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = Write(&b, s)
	return b.String()
}

// Write renders s as an OpenSCAD program to w.
func Write(w io.Writer, s kernel.Solid) error {
	sol, ok := s.(*Solid)
	if !ok {
		return fmt.Errorf("scad: solid %T was not built by the scad kernel", s)
	}
	var b strings.Builder
	render(&b, sol, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func render(b *strings.Builder, s *Solid, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(s.stmt)
	switch len(s.children) {
	case 0:
		b.WriteString(";\n")
	case 1:
		if len(s.children[0].children) == 0 {
			// single leaf child stays on one line
			b.WriteString(" " + s.children[0].stmt + ";\n")
			return
		}
		fallthrough
	default:
		b.WriteString(" {\n")
		for _, c := range s.children {
			render(b, c, depth+1)
		}
		b.WriteString(indent + "}\n")
	}
}
