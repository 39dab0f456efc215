// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, scad) provide solid modeling and boolean
// operations behind this interface. The part builders only ever talk to
// a Kernel, so the same recipe can be meshed directly or emitted as
// OpenSCAD source for an external renderer.
package kernel

import "errors"

// ErrNoMesh is returned by kernels that describe geometry without
// evaluating it.
var ErrNoMesh = errors.New("kernel: backend does not produce meshes")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Kernel is the abstract geometry kernel interface.
//
// Placement follows OpenSCAD conventions: boxes have their minimum corner at
// the origin, cylinders and cones stand on z=0, spheres and tori are centered
// on the origin with the torus lying in the XY plane.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Cone(height, r0, r1 float64, segments int) Solid // r0 at z=0, r1 at z=height
	Sphere(radius float64, segments int) Solid
	Torus(major, minor float64, segments int) Solid
	Prism(outline [][2]float64, height float64) Solid // outline extruded from z=0

	// Boolean operations
	Union(solids ...Solid) Solid
	Difference(a Solid, cut ...Solid) Solid
	Intersection(a, b Solid) Solid
	Hull(solids ...Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, X then Y then Z
	Mirror(s Solid, axis Axis) Solid       // reflect across the plane normal to axis

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
