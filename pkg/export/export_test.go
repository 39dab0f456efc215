package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hschendel/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
	"github.com/chazu/tubeclamp/pkg/kernel/sdfx"
	"github.com/chazu/tubeclamp/pkg/layout"
	"github.com/chazu/tubeclamp/pkg/tessellate"
)

func straightResult(t *testing.T) *clamp.Result {
	t.Helper()
	res, err := clamp.MultipleStraight(scad.New(), config.Default(), clamp.StraightParams{
		Width: 20, Diameters: []float64{16, 20, 16}, Spacing: layout.List(25, 35),
	})
	require.NoError(t, err)
	return res
}

func roundResult(t *testing.T) *clamp.Result {
	t.Helper()
	res, err := clamp.MultipleRound(scad.New(), config.Default(), clamp.RoundParams{Diameters: []float64{16}})
	require.NoError(t, err)
	return res
}

func TestTemplateStraight(t *testing.T) {
	cfg := config.Default()
	res := straightResult(t)
	dr := template(res, cfg)

	assert.Len(t, dr.outline, 4)
	assert.Len(t, dr.corners, 4)
	require.Len(t, dr.tubes, 3)
	for i, l := range dr.tubes {
		assert.Equal(t, line{res.Tubes[i].X, 0, res.Tubes[i].X, res.Depth}, l)
	}
	require.Len(t, dr.holes, len(res.Screws))
	assert.Equal(t, cfg.ScrewDiameter/2, dr.holes[0].r)
	assert.Equal(t, cfg.ScrewHeadDiameter/2, dr.heads[0].r)
	assert.Empty(t, dr.bends)
}

func TestTemplateSquareCorners(t *testing.T) {
	cfg := config.Default()
	cfg.RoundingRadius = 0
	dr := template(straightResult(t), cfg)
	assert.Empty(t, dr.corners)
	assert.Equal(t, 0.0, dr.outline[0].x0)
}

func TestTemplateElbow(t *testing.T) {
	cfg := config.Default()
	res := roundResult(t)
	e := res.Tubes[0]

	dr := template(res, cfg)
	require.Len(t, dr.bends, 1)
	assert.Equal(t, arc{e.X, e.Y, e.Bend, 0, 90}, dr.bends[0])
	require.Len(t, dr.tubes, 2)
	assert.Equal(t, line{0, e.Y + e.Bend, e.X, e.Y + e.Bend}, dr.tubes[0])
	assert.Equal(t, line{e.X + e.Bend, 0, e.X + e.Bend, e.Y}, dr.tubes[1])

	m := res.Mirrored(scad.New(), kernel.AxisX)
	dr = template(m, cfg)
	me := m.Tubes[0]
	assert.Equal(t, arc{me.X, me.Y, me.Bend, 90, 180}, dr.bends[0])
	assert.Equal(t, line{m.Width, me.Y + me.Bend, me.X, me.Y + me.Bend}, dr.tubes[0])
}

func TestArcPoints(t *testing.T) {
	pts := arc{1, 1, 2, 0, 90}.points(4)
	require.Len(t, pts, 5)
	assert.InDelta(t, 3, pts[0][0], 1e-9)
	assert.InDelta(t, 1, pts[0][1], 1e-9)
	assert.InDelta(t, 1, pts[4][0], 1e-9)
	assert.InDelta(t, 3, pts[4][1], 1e-9)
}

func TestWriteDXF(t *testing.T) {
	res := roundResult(t)
	path := filepath.Join(t.TempDir(), "corner.dxf")
	require.NoError(t, WriteDXF(path, "corner", res, config.Default()))

	d, err := dxf.Open(path)
	require.NoError(t, err)
	var circles, arcs, lines int
	for _, ent := range d.Entities() {
		switch ent.(type) {
		case *entity.Circle:
			circles++
		case *entity.Arc:
			arcs++
		case *entity.Line:
			lines++
		}
	}
	assert.Equal(t, 2*len(res.Screws), circles)
	assert.Equal(t, 4+1, arcs)  // plate corners and the bend
	assert.Equal(t, 4+2, lines) // plate edges, inlet and outlet
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.pdf")
	require.NoError(t, WritePDF(path, "clip", straightResult(t), config.Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWritePDFRejectsEmptyPlate(t *testing.T) {
	err := WritePDF(filepath.Join(t.TempDir(), "x.pdf"), "x", &clamp.Result{}, config.Default())
	assert.Error(t, err)
}

func TestWriteSCAD(t *testing.T) {
	res := straightResult(t)
	path := filepath.Join(t.TempDir(), "clip.scad")
	require.NoError(t, WriteSCAD(path, "clip", res.Solid))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "// clip\n"+scad.Source(res.Solid), string(data))
}

func TestWriteSTL(t *testing.T) {
	// Unit tetrahedron, outward winding.
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:  []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
		PartName: "tetra",
	}
	path := filepath.Join(t.TempDir(), "tetra.stl")
	require.NoError(t, WriteSTL(path, m))

	s, err := stl.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, s.Triangles, 4)
	assert.Equal(t, stl.Vec3{0, 0, -1}, s.Triangles[0].Normal)

	assert.Error(t, WriteSTL(path, &kernel.Mesh{}))
}

func TestWriteDispatch(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	b := tessellate.Built{Name: "clip", Result: straightResult(t)}

	for _, ext := range []string{".scad", ".dxf", ".pdf", ".PDF"} {
		path := filepath.Join(dir, "clip"+ext)
		require.NoError(t, Write(path, b, scad.New(), cfg), ext)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}

	err := Write(filepath.Join(dir, "clip.obj"), b, scad.New(), cfg)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	err = Write(filepath.Join(dir, "clip.stl"), b, scad.New(), cfg)
	assert.ErrorIs(t, err, kernel.ErrNoMesh)
}

func TestKernelFor(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &sdfx.SdfxKernel{}, KernelFor("a.STL", cfg))
	assert.IsType(t, &scad.Kernel{}, KernelFor("a.scad", cfg))
	assert.IsType(t, &scad.Kernel{}, KernelFor("a.pdf", cfg))
}

func TestPartPath(t *testing.T) {
	tests := []struct {
		path, name string
		parts      int
		want       string
	}{
		{"out.stl", "left", 1, "out.stl"},
		{"out.stl", "left", 2, "out-left.stl"},
		{"dir/out.tar.pdf", "b", 3, "dir/out.tar-b.pdf"},
		{"noext", "b", 2, "noext-b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PartPath(tt.path, tt.name, tt.parts))
	}
}
