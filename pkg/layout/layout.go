// Package layout computes plate extents, tube center offsets and screw
// positions from tube diameters and spacing lists. Everything here is plain
// arithmetic; no geometry kernel is involved.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/tubeclamp/pkg/config"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNoTubes is returned when a layout is requested for zero tubes.
	ErrNoTubes = errors.New("layout: at least one tube diameter is required")
	// ErrSpacingLength is returned when a spacing list is neither n-1 nor n long.
	ErrSpacingLength = errors.New("layout: spacing count does not match tube count")
)

// Undefined marks a missing spacing entry. Sigma and Layout count it as 0.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

// defined replaces Undefined with 0.
func defined(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Sigma returns the sum of the first n entries of values. Entries past the end
// of the slice and Undefined entries count as 0.
func Sigma(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	if n <= 0 {
		return 0
	}
	clean := make([]float64, n)
	for i := 0; i < n; i++ {
		clean[i] = defined(values[i])
	}
	return floats.Sum(clean)
}

// BoreRadius is the radius of the hole cut for a tube of diameter d.
func BoreRadius(d, fit float64) float64 {
	return (d + fit) / 2
}

// ScrewClearance is the distance kept between a screw center and any edge or
// wall: half the shaft plus half the head.
func ScrewClearance(cfg config.Config) float64 {
	return (cfg.ScrewDiameter + cfg.ScrewHeadDiameter) / 2
}

// Border is the distance from a plate edge to the center of the nearest tube.
// It leaves room for the tube wall and a screw between the wall and the edge.
func Border(d, fit float64, cfg config.Config) float64 {
	return BoreRadius(d, fit) + cfg.Thickness + 2*ScrewClearance(cfg)
}

// Row is the result of laying out tubes along one axis.
type Row struct {
	Offsets []float64 // tube center positions measured from the plate edge
	Inner   float64   // border before the first tube
	Outer   float64   // border after the last tube
	Extent  float64   // total plate length along the axis
}

// Layout places len(diams) tubes along one axis.
//
// With len(diams)-1 spacings each entry is the gap between consecutive tube
// centers and the first tube sits at the inner border. With len(diams)
// spacings the first entry is the absolute offset of the first tube from the
// plate edge. Any other length is an error.
func Layout(diams, spacings []float64, fit float64, cfg config.Config) (Row, error) {
	n := len(diams)
	if n == 0 {
		return Row{}, ErrNoTubes
	}
	row := Row{
		Inner: Border(diams[0], fit, cfg),
		Outer: Border(diams[n-1], fit, cfg),
	}

	var first float64
	var gaps []float64
	switch len(spacings) {
	case n - 1:
		first = row.Inner
		gaps = spacings
	case n:
		first = defined(spacings[0])
		gaps = spacings[1:]
	default:
		return Row{}, fmt.Errorf("%w: %d tubes, %d spacings (want %d or %d)",
			ErrSpacingLength, n, len(spacings), n-1, n)
	}

	row.Offsets = make([]float64, n)
	row.Offsets[0] = first
	if n > 1 {
		clean := make([]float64, n-1)
		for i := range clean {
			clean[i] = defined(gaps[i])
		}
		cum := floats.CumSum(make([]float64, n-1), clean)
		for i := 1; i < n; i++ {
			row.Offsets[i] = first + cum[i-1]
		}
	}
	row.Extent = row.Offsets[n-1] + row.Outer
	return row, nil
}

// MinBorder returns the smallest Border among diams.
func MinBorder(diams []float64, fit float64, cfg config.Config) float64 {
	if len(diams) == 0 {
		return 0
	}
	min := Border(diams[0], fit, cfg)
	for _, d := range diams[1:] {
		min = math.Min(min, Border(d, fit, cfg))
	}
	return min
}

// Crowded returns the indices i for which tube i and tube i+1 sit closer than
// the sum of their bore radii, so the bores cut into each other. Tubes whose
// centers coincide are an intentional merge and are not reported.
func Crowded(diams, offsets []float64, fit float64) []int {
	var out []int
	for i := 0; i+1 < len(diams) && i+1 < len(offsets); i++ {
		g := math.Abs(offsets[i+1] - offsets[i])
		if g == 0 {
			continue
		}
		if g < BoreRadius(diams[i], fit)+BoreRadius(diams[i+1], fit) {
			out = append(out, i)
		}
	}
	return out
}
