package layout

import "github.com/chazu/tubeclamp/pkg/config"

// Point is a position on the base plate.
type Point struct {
	X, Y float64
}

// ScrewRow returns screw positions across a span. When the span minus the
// edge clearance leaves less than one head diameter there is room for a
// single centered screw; otherwise two screws sit clearance/2 from each edge.
// Both results are symmetric about span/2.
func ScrewRow(span, clearance, head float64) []float64 {
	if span-clearance < head {
		return []float64{span / 2}
	}
	return []float64{clearance / 2, span - clearance/2}
}

// ScrewPositions places the screws of a rectangular dx × dy plate whose tubes
// run along Y. Screws go into the end zones at x = c and x = dx-c, with c the
// screw clearance, and one or two per end depending on dy. The result has 2
// or 4 points.
func ScrewPositions(dx, dy float64, cfg config.Config) []Point {
	c := ScrewClearance(cfg)
	ys := ScrewRow(dy, 2*c, cfg.ScrewHeadDiameter)
	pts := make([]Point, 0, 2*len(ys))
	for _, x := range []float64{c, dx - c} {
		for _, y := range ys {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return pts
}
