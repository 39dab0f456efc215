package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
)

// DXF layer names.
const (
	LayerOutline = "OUTLINE"
	LayerScrews  = "SCREWS"
	LayerHeads   = "HEADS"
	LayerTubes   = "TUBES"
)

// WriteDXF writes a 1:1 drilling template of res: plate outline, screw
// holes with their head circles, and tube centerlines, each on its own
// layer.
func WriteDXF(path, name string, res *clamp.Result, cfg config.Config) error {
	dr := template(res, cfg)
	d := dxf.NewDrawing()

	layers := []struct {
		name string
		col  color.ColorNumber
		draw func() error
	}{
		{LayerOutline, color.White, func() error {
			for _, l := range dr.outline {
				if _, err := d.Line(l.x0, l.y0, 0, l.x1, l.y1, 0); err != nil {
					return err
				}
			}
			for _, a := range dr.corners {
				if _, err := d.Arc(a.cx, a.cy, 0, a.r, a.start, a.end); err != nil {
					return err
				}
			}
			if name != "" {
				_, err := d.Text(name, 0, dr.depth+2, 0, 3)
				return err
			}
			return nil
		}},
		{LayerScrews, color.Red, func() error {
			for _, c := range dr.holes {
				if _, err := d.Circle(c.cx, c.cy, 0, c.r); err != nil {
					return err
				}
			}
			return nil
		}},
		{LayerHeads, color.Yellow, func() error {
			for _, c := range dr.heads {
				if _, err := d.Circle(c.cx, c.cy, 0, c.r); err != nil {
					return err
				}
			}
			return nil
		}},
		{LayerTubes, color.Cyan, func() error {
			for _, l := range dr.tubes {
				if _, err := d.Line(l.x0, l.y0, 0, l.x1, l.y1, 0); err != nil {
					return err
				}
			}
			for _, a := range dr.bends {
				if _, err := d.Arc(a.cx, a.cy, 0, a.r, a.start, a.end); err != nil {
					return err
				}
			}
			return nil
		}},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("dxf: layer %s: %w", l.name, err)
		}
		if err := l.draw(); err != nil {
			return fmt.Errorf("dxf: layer %s: %w", l.name, err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	return nil
}
