package export

import (
	"math"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
)

// Drawings are in part coordinates: mm, origin at the plate corner, Y up.

type line struct{ x0, y0, x1, y1 float64 }

// arc angles are in degrees, counter-clockwise from +X.
type arc struct{ cx, cy, r, start, end float64 }

type circle struct{ cx, cy, r float64 }

// drawing is the top view of a part used for drilling templates.
type drawing struct {
	width, depth float64
	outline      []line
	corners      []arc
	holes        []circle // screw shafts
	heads        []circle
	tubes        []line // centerlines
	bends        []arc
}

func template(res *clamp.Result, cfg config.Config) drawing {
	w, d := res.Width, res.Depth
	dr := drawing{width: w, depth: d}

	r := cfg.RoundingRadius
	if r <= 0 || 2*r > w || 2*r > d {
		r = 0
	}
	dr.outline = []line{
		{r, 0, w - r, 0},
		{w, r, w, d - r},
		{w - r, d, r, d},
		{0, d - r, 0, r},
	}
	if r > 0 {
		dr.corners = []arc{
			{w - r, r, r, 270, 360},
			{w - r, d - r, r, 0, 90},
			{r, d - r, r, 90, 180},
			{r, r, r, 180, 270},
		}
	}

	for _, s := range res.Screws {
		dr.holes = append(dr.holes, circle{s.X, s.Y, cfg.ScrewDiameter / 2})
		dr.heads = append(dr.heads, circle{s.X, s.Y, cfg.ScrewHeadDiameter / 2})
	}

	for _, t := range res.Tubes {
		switch {
		case t.Elbow:
			dr.addElbow(t)
		case t.Axis == kernel.AxisX:
			dr.tubes = append(dr.tubes, line{0, t.Y, w, t.Y})
		default:
			dr.tubes = append(dr.tubes, line{t.X, 0, t.X, d})
		}
	}
	return dr
}

// addElbow draws the inlet from the X edge, the bend, and the outlet to the
// Y edge.
func (dr *drawing) addElbow(t clamp.TubePlacement) {
	sx, sy := t.Quadrant[0], t.Quadrant[1]
	edgeX, edgeY := 0.0, 0.0
	if sx < 0 {
		edgeX = dr.width
	}
	if sy < 0 {
		edgeY = dr.depth
	}
	inY := t.Y + sy*t.Bend
	outX := t.X + sx*t.Bend
	dr.tubes = append(dr.tubes,
		line{edgeX, inY, t.X, inY},
		line{outX, edgeY, outX, t.Y},
	)
	if t.Bend > 0 {
		mid := math.Atan2(sy, sx) * 180 / math.Pi
		start := math.Mod(mid-45+360, 360)
		dr.bends = append(dr.bends, arc{t.X, t.Y, t.Bend, start, start + 90})
	}
}

// points approximates a by n chords.
func (a arc) points(n int) [][2]float64 {
	pts := make([][2]float64, n+1)
	for i := range pts {
		deg := a.start + (a.end-a.start)*float64(i)/float64(n)
		s, c := math.Sincos(deg * math.Pi / 180)
		pts[i] = [2]float64{a.cx + a.r*c, a.cy + a.r*s}
	}
	return pts
}
