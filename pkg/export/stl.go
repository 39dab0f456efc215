package export

import (
	"fmt"
	"math"

	"github.com/hschendel/stl"

	"github.com/chazu/tubeclamp/pkg/kernel"
)

// WriteSTL writes m as a binary STL file. Facet normals are recomputed
// from the winding.
func WriteSTL(path string, m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("stl: empty mesh")
	}
	s := toSTL(m)
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	return nil
}

func toSTL(m *kernel.Mesh) *stl.Solid {
	s := &stl.Solid{Name: m.PartName, Triangles: make([]stl.Triangle, 0, m.TriangleCount())}
	vertex := func(i uint32) stl.Vec3 {
		return stl.Vec3{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := stl.Triangle{Vertices: [3]stl.Vec3{
			vertex(m.Indices[t]), vertex(m.Indices[t+1]), vertex(m.Indices[t+2]),
		}}
		tri.Normal = facetNormal(tri.Vertices)
		s.Triangles = append(s.Triangles, tri)
	}
	return s
}

func facetNormal(v [3]stl.Vec3) stl.Vec3 {
	var a, b [3]float64
	for i := 0; i < 3; i++ {
		a[i] = float64(v[1][i] - v[0][i])
		b[i] = float64(v[2][i] - v[0][i])
	}
	n := [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return stl.Vec3{}
	}
	return stl.Vec3{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
}
