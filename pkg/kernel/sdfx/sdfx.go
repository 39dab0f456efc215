// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// minRing is the fewest points used to sample a circle for hull support.
const minRing = 16

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. pts samples the
// surface densely enough to rebuild a convex hull; sdfx has no hull
// operation of its own.
type sdfxSolid struct {
	s   sdf.SDF3
	pts []v3.Vec
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing with the default resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel whose ToMesh uses the given number of
// marching cubes cells along the longest bounding box axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// wrap creates a kernel.Solid from an sdf.SDF3 and its support points.
func wrap(s sdf.SDF3, pts []v3.Vec) kernel.Solid {
	return &sdfxSolid{s: s, pts: pts}
}

// lift moves a z-centered sdfx primitive so it stands on z=0.
func lift(s sdf.SDF3, height float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))
}

// Box creates a box with its minimum corner at the origin.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	pts := make([]v3.Vec, 0, 8)
	for _, px := range []float64{0, x} {
		for _, py := range []float64{0, y} {
			for _, pz := range []float64{0, z} {
				pts = append(pts, v3.Vec{X: px, Y: py, Z: pz})
			}
		}
	}
	return wrap(sdf.Transform3D(s, m), pts)
}

// Cylinder creates a cylinder standing on z=0. segments only affects how
// finely the rim is sampled for hulls; the SDF surface itself is smooth.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	pts := append(ring(radius, 0, segments), ring(radius, height, segments)...)
	return wrap(lift(s, height), pts)
}

// Cone creates a truncated cone standing on z=0 with radius r0 at the base
// and r1 at the top.
func (k *SdfxKernel) Cone(height, r0, r1 float64, segments int) kernel.Solid {
	s, err := sdf.Cone3D(height, r0, r1, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cone3D: %v", err))
	}
	pts := append(ring(r0, 0, segments), ring(r1, height, segments)...)
	return wrap(lift(s, height), pts)
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64, segments int) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	n := max(segments, minRing)
	var pts []v3.Vec
	for i := 0; i <= n/2; i++ {
		phi := math.Pi * float64(i) / float64(n/2)
		pts = append(pts, ring(radius*math.Sin(phi), radius*math.Cos(phi), n)...)
	}
	return wrap(s, pts)
}

// Torus creates a torus centered on the origin around the Z axis.
func (k *SdfxKernel) Torus(major, minor float64, segments int) kernel.Solid {
	if major <= 0 || minor <= 0 {
		panic(fmt.Sprintf("sdfx.Torus: radii must be positive, got %g and %g", major, minor))
	}
	n := max(segments, minRing)
	var pts []v3.Vec
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, ring(major+minor*math.Cos(a), minor*math.Sin(a), n)...)
	}
	return wrap(newTorus(major, minor), pts)
}

// Prism extrudes a closed outline in the XY plane from z=0 to height.
func (k *SdfxKernel) Prism(outline [][2]float64, height float64) kernel.Solid {
	vs := make([]v2.Vec, len(outline))
	pts := make([]v3.Vec, 0, 2*len(outline))
	for i, p := range outline {
		vs[i] = v2.Vec{X: p[0], Y: p[1]}
		pts = append(pts, v3.Vec{X: p[0], Y: p[1]}, v3.Vec{X: p[0], Y: p[1], Z: height})
	}
	poly, err := sdf.Polygon2D(vs)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Polygon2D: %v", err))
	}
	return wrap(lift(sdf.Extrude3D(poly, height), height), pts)
}

// Union returns the union of all solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	if len(solids) == 1 {
		return solids[0]
	}
	ss := make([]sdf.SDF3, len(solids))
	var pts []v3.Vec
	for i, s := range solids {
		u := unwrap(s)
		ss[i] = u.s
		pts = append(pts, u.pts...)
	}
	return wrap(sdf.Union3D(ss...), pts)
}

// Difference returns a with every cut solid removed.
func (k *SdfxKernel) Difference(a kernel.Solid, cut ...kernel.Solid) kernel.Solid {
	if len(cut) == 0 {
		return a
	}
	base := unwrap(a)
	tool := unwrap(k.Union(cut...))
	return wrap(sdf.Difference3D(base.s, tool.s), base.pts)
}

// Intersection returns the intersection of two solids. Support points are
// the points of each operand that lie inside the other.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	var pts []v3.Vec
	for _, p := range sa.pts {
		if sb.s.Evaluate(p) <= insideTolerance {
			pts = append(pts, p)
		}
	}
	for _, p := range sb.pts {
		if sa.s.Evaluate(p) <= insideTolerance {
			pts = append(pts, p)
		}
	}
	return wrap(sdf.Intersect3D(sa.s, sb.s), pts)
}

// Hull returns the convex hull of all solids.
func (k *SdfxKernel) Hull(solids ...kernel.Solid) kernel.Solid {
	var pts []v3.Vec
	for _, s := range solids {
		pts = append(pts, unwrap(s).pts...)
	}
	if len(pts) == 0 {
		panic("sdfx.Hull: no support points")
	}
	return wrap(newHull(pts), pts)
}

// transform applies m to both the SDF and its support points.
func transform(s kernel.Solid, m sdf.M44) kernel.Solid {
	u := unwrap(s)
	pts := make([]v3.Vec, len(u.pts))
	for i, p := range u.pts {
		pts[i] = m.MulPosition(p)
	}
	return wrap(sdf.Transform3D(u.s, m), pts)
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return transform(s, m)
}

// Mirror reflects a solid across the plane normal to axis.
func (k *SdfxKernel) Mirror(s kernel.Solid, axis kernel.Axis) kernel.Solid {
	scale := v3.Vec{X: 1, Y: 1, Z: 1}
	switch axis {
	case kernel.AxisX:
		scale.X = -1
	case kernel.AxisY:
		scale.Y = -1
	case kernel.AxisZ:
		scale.Z = -1
	default:
		panic(fmt.Sprintf("sdfx.Mirror: invalid axis %v", axis))
	}
	return transform(s, sdf.Scale3d(scale))
}

// Distance returns the signed distance from (x, y, z) to the surface of s.
// It is negative inside the solid.
func (k *SdfxKernel) Distance(s kernel.Solid, x, y, z float64) float64 {
	return unwrap(s).s.Evaluate(v3.Vec{X: x, Y: y, Z: z})
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (mesh *kernel.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sdfx: meshing failed: %v", r)
		}
	}()
	sdf3 := unwrap(s).s

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// ring samples a circle of radius r at height z.
func ring(r, z float64, segments int) []v3.Vec {
	n := max(segments, minRing)
	pts := make([]v3.Vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
	}
	return pts
}
