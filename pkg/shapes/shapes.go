// Package shapes builds the small solids every clamp is made of: placed
// boxes, axis-aligned cylinders and cones, champfered bores, rounded plates,
// quarter tori and screw holes. Each helper is a pure function over a
// kernel.Kernel.
package shapes

import (
	"fmt"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
)

// Vec is a point in part coordinates.
type Vec [3]float64

// Cube places a box with its minimum corner at p.
func Cube(k kernel.Kernel, p Vec, dx, dy, dz float64) kernel.Solid {
	return k.Translate(k.Box(dx, dy, dz), p[0], p[1], p[2])
}

// orient turns a solid built along +Z so that it runs along +axis, then moves
// its base to p.
func orient(k kernel.Kernel, s kernel.Solid, axis kernel.Axis, p Vec) kernel.Solid {
	switch axis {
	case kernel.AxisX:
		s = k.Rotate(s, 0, 90, 0)
	case kernel.AxisY:
		s = k.Rotate(s, -90, 0, 0)
	case kernel.AxisZ:
	default:
		panic(fmt.Sprintf("shapes: invalid axis %v", axis))
	}
	return k.Translate(s, p[0], p[1], p[2])
}

// Cylinder is a cylinder of the given length starting at base and running
// along +axis.
func Cylinder(k kernel.Kernel, axis kernel.Axis, base Vec, length, r float64, segments int) kernel.Solid {
	return orient(k, k.Cylinder(length, r, segments), axis, base)
}

// Cone is a truncated cone from radius r0 at base to r1 at base+length along
// axis.
func Cone(k kernel.Kernel, axis kernel.Axis, base Vec, length, r0, r1 float64, segments int) kernel.Solid {
	return orient(k, k.Cone(length, r0, r1, segments), axis, base)
}

// Tube is a hollow cylinder. The inner cut is lengthened by slack at both
// ends so it never shares a face with the outer wall.
func Tube(k kernel.Kernel, axis kernel.Axis, base Vec, length, outer, inner float64, segments int, slack float64) kernel.Solid {
	cut := Cylinder(k, axis, along(base, axis, -slack), length+2*slack, inner, segments)
	return k.Difference(Cylinder(k, axis, base, length, outer, segments), cut)
}

// Champfer is the bevel cut at a bore entrance: a cone widening from the bore
// radius r to r+depth at the face. toward selects which way the bore runs
// from the face, +1 along axis or -1 against it.
func Champfer(k kernel.Kernel, axis kernel.Axis, face Vec, r, depth float64, toward float64, segments int, slack float64) kernel.Solid {
	if toward >= 0 {
		return Cone(k, axis, along(face, axis, -slack), depth+slack, r+depth+slack, r, segments)
	}
	return Cone(k, axis, along(face, axis, -depth), depth+slack, r, r+depth+slack, segments)
}

// Bore is the cut for a tube running from base for length along axis. It
// overshoots both faces by slack and carries a champfer at each end when
// champfer is positive.
func Bore(k kernel.Kernel, axis kernel.Axis, base Vec, length, r, champfer float64, segments int, slack float64) kernel.Solid {
	cut := Cylinder(k, axis, along(base, axis, -slack), length+2*slack, r, segments)
	if champfer <= 0 {
		return cut
	}
	return k.Union(
		cut,
		Champfer(k, axis, base, r, champfer, 1, segments, slack),
		Champfer(k, axis, along(base, axis, length), r, champfer, -1, segments, slack),
	)
}

// RoundedPlate is a dx × dy × dz plate at the origin whose vertical edges
// are rounded with radius r.
func RoundedPlate(k kernel.Kernel, dx, dy, dz, r float64, segments int) kernel.Solid {
	if r <= 0 || 2*r > dx || 2*r > dy {
		return k.Box(dx, dy, dz)
	}
	var corners []kernel.Solid
	for _, x := range []float64{r, dx - r} {
		for _, y := range []float64{r, dy - r} {
			corners = append(corners, k.Translate(k.Cylinder(dz, r, segments), x, y, 0))
		}
	}
	return k.Hull(corners...)
}

// Trapezoid is a prism whose cross-section lies in the XZ plane and is
// extruded along +Y for length: bottom width wb centered on x=0 at z=0,
// top width wt at z=h.
func Trapezoid(k kernel.Kernel, wb, wt, h, length float64) kernel.Solid {
	outline := [][2]float64{
		{-wb / 2, 0},
		{wb / 2, 0},
		{wt / 2, h},
		{-wt / 2, h},
	}
	// Prism extrudes along Z; lay the XY outline into XZ.
	return k.Rotate(k.Translate(k.Prism(outline, length), 0, 0, -length), 90, 0, 0)
}

// quadrant is a box covering x >= 0, y >= 0 out to reach and z in
// [-depth, depth], grown by slack so it fully contains the clipped quarter.
func quadrant(k kernel.Kernel, reach, depth, slack float64) kernel.Solid {
	return Cube(k, Vec{0, 0, -depth - slack}, reach+slack, reach+slack, 2*(depth+slack))
}

// QuarterTorus is the x >= 0, y >= 0 quarter of a torus centered on the
// origin in the XY plane.
func QuarterTorus(k kernel.Kernel, major, minor float64, segments int, slack float64) kernel.Solid {
	return k.Intersection(k.Torus(major, minor, segments), quadrant(k, major+minor, minor, slack))
}

// QuarterAnnulus is the x >= 0, y >= 0 quarter of a flat ring between radii
// inner and outer, standing on z=0 with height h.
func QuarterAnnulus(k kernel.Kernel, inner, outer, h float64, segments int, slack float64) kernel.Solid {
	ring := k.Cylinder(h, outer, segments)
	if inner > 0 {
		ring = k.Difference(ring, k.Translate(k.Cylinder(h+2*slack, inner, segments), 0, 0, -slack))
	}
	return k.Intersection(ring, Cube(k, Vec{0, 0, -slack}, outer+slack, outer+slack, h+2*slack))
}

// ScrewHole is the cut for one screw at (x, y) through a part whose bottom
// is at z=bottom, with the screw head seated at z=seat. The shaft starts
// below the part; above the seat a head-sized extension clears everything
// in the way of the screwdriver.
func ScrewHole(k kernel.Kernel, cfg config.Config, x, y, bottom, seat float64) kernel.Solid {
	sr := cfg.ScrewDiameter / 2
	hr := cfg.ScrewHeadDiameter / 2
	n := cfg.Segments
	slack := cfg.Slack

	parts := []kernel.Solid{
		Cylinder(k, kernel.AxisZ, Vec{x, y, bottom - slack}, seat-bottom+2*slack, sr, n),
		Cylinder(k, kernel.AxisZ, Vec{x, y, seat}, cfg.ScrewExtension, hr, n),
	}
	if cfg.Countersunk && hr > sr {
		sink := hr - sr
		parts = append(parts, Cone(k, kernel.AxisZ, Vec{x, y, seat - sink}, sink+slack, sr, hr+slack, n))
	}
	return k.Union(parts...)
}

// along moves p by d in the direction of axis.
func along(p Vec, axis kernel.Axis, d float64) Vec {
	p[int(axis)] += d
	return p
}
