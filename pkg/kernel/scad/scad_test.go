package scad

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bounds(t *testing.T, s kernel.Solid, min, max [3]float64) {
	t.Helper()
	gotMin, gotMax := s.BoundingBox()
	assert.InDeltaSlice(t, min[:], gotMin[:], 1e-6)
	assert.InDeltaSlice(t, max[:], gotMax[:], 1e-6)
}

func TestPrimitivesSource(t *testing.T) {
	k := New()
	tests := []struct {
		name  string
		solid kernel.Solid
		want  string
	}{
		{"box", k.Box(10, 20, 2.5), "cube([10, 20, 2.5]);\n"},
		{"cylinder", k.Cylinder(30, 4.2, 64), "cylinder(h = 30, r = 4.2, $fn = 64);\n"},
		{"cone", k.Cone(1, 9.2, 8.2, 32), "cylinder(h = 1, r1 = 9.2, r2 = 8.2, $fn = 32);\n"},
		{"sphere", k.Sphere(3, 24), "sphere(r = 3, $fn = 24);\n"},
		{"prism", k.Prism([][2]float64{{0, 0}, {4, 0}, {0, 3}}, 2),
			"linear_extrude(height = 2) polygon(points = [[0, 0], [4, 0], [0, 3]]);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Source(tt.solid))
		})
	}
}

func TestTorusSource(t *testing.T) {
	k := New()
	src := Source(k.Torus(20, 5, 48))
	assert.Equal(t, "rotate_extrude($fn = 48) {\n  translate([20, 0, 0]) circle(r = 5, $fn = 48);\n}\n", src)
	bounds(t, k.Torus(20, 5, 48), [3]float64{-25, -25, -5}, [3]float64{25, 25, 5})
}

func TestNestedSource(t *testing.T) {
	k := New()
	s := k.Difference(
		k.Box(10, 10, 10),
		k.Translate(k.Cylinder(12, 2, 16), 5, 5, -1),
	)
	want := strings.Join([]string{
		"difference() {",
		"  cube([10, 10, 10]);",
		"  translate([5, 5, -1]) cylinder(h = 12, r = 2, $fn = 16);",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, Source(s))
}

func TestBoxBounds(t *testing.T) {
	k := New()
	bounds(t, k.Box(100, 50, 25), [3]float64{0, 0, 0}, [3]float64{100, 50, 25})
	bounds(t, k.Translate(k.Box(10, 10, 10), 100, 200, 300),
		[3]float64{100, 200, 300}, [3]float64{110, 210, 310})
}

func TestRotateBounds(t *testing.T) {
	k := New()
	// Tubes are laid along +Y by rotating a Z cylinder -90 degrees about X.
	cyl := k.Rotate(k.Cylinder(40, 5, 32), -90, 0, 0)
	bounds(t, cyl, [3]float64{-5, 0, -5}, [3]float64{5, 40, 5})

	box := k.Rotate(k.Box(100, 10, 10), 0, 0, 90)
	bounds(t, box, [3]float64{-10, 0, 0}, [3]float64{0, 100, 10})
	assert.Equal(t, "rotate([0, 0, 90]) cube([100, 10, 10]);\n", Source(box))
}

func TestMirrorBounds(t *testing.T) {
	k := New()
	m := k.Mirror(k.Translate(k.Box(10, 10, 10), 5, 0, 0), kernel.AxisX)
	bounds(t, m, [3]float64{-15, 0, 0}, [3]float64{-5, 10, 10})
	assert.True(t, strings.HasPrefix(Source(m), "mirror([1, 0, 0]) {\n"))
}

func TestBooleanBounds(t *testing.T) {
	k := New()
	a := k.Box(10, 10, 10)
	b := k.Translate(k.Box(10, 10, 10), 5, 0, 0)

	bounds(t, k.Union(a, b), [3]float64{0, 0, 0}, [3]float64{15, 10, 10})
	bounds(t, k.Hull(a, b), [3]float64{0, 0, 0}, [3]float64{15, 10, 10})
	bounds(t, k.Difference(a, b), [3]float64{0, 0, 0}, [3]float64{10, 10, 10})
	bounds(t, k.Intersection(a, b), [3]float64{5, 0, 0}, [3]float64{10, 10, 10})
}

func TestSingleUnionIsIdentity(t *testing.T) {
	k := New()
	a := k.Box(1, 2, 3)
	assert.Same(t, a, k.Union(a))
	assert.Same(t, a, k.Difference(a))
}

func TestToMesh(t *testing.T) {
	_, err := New().ToMesh(New().Box(1, 1, 1))
	assert.ErrorIs(t, err, kernel.ErrNoMesh)
}

type foreign struct{}

func (foreign) BoundingBox() (min, max [3]float64) { return }

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, New().Box(1, 1, 1)))
	assert.Equal(t, "cube([1, 1, 1]);\n", buf.String())

	assert.Error(t, Write(&buf, foreign{}))
}

func TestNegativeZero(t *testing.T) {
	assert.Equal(t, "0", num(-0.0))
	assert.Equal(t, "-1.5", num(-1.5))
}
