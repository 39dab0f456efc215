package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
)

// Page layout constants in mm. The part is drawn at 1:1.
const (
	margin       = 15.0
	headerHeight = 12.0
	scaleBar     = 50.0 // length of the printed check bar
	arcChords    = 24
)

// WritePDF writes a 1:1 drilling template of res on a page sized to the
// part. A 50 mm bar below the drawing lets the print scale be checked.
func WritePDF(path, name string, res *clamp.Result, cfg config.Config) error {
	if !(res.Width > 0 && res.Depth > 0) {
		return fmt.Errorf("pdf: part %q has no plate", name)
	}
	dr := template(res, cfg)

	pageW := max(dr.width, scaleBar) + 2*margin
	pageH := dr.depth + 2*margin + 2*headerHeight
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: pageW, Ht: pageH})

	top := margin + headerHeight
	// Page Y grows downwards.
	px := func(x float64) float64 { return margin + x }
	py := func(y float64) float64 { return top + dr.depth - y }

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 6, name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(pageW-2*margin, 4,
		fmt.Sprintf("%.1f x %.1f mm, %d screws, scale 1:1", dr.width, dr.depth, len(dr.heads)),
		"", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	for _, l := range dr.outline {
		pdf.Line(px(l.x0), py(l.y0), px(l.x1), py(l.y1))
	}
	for _, a := range dr.corners {
		polyline(pdf, a.points(arcChords), px, py)
	}

	pdf.SetDrawColor(200, 0, 0)
	for _, c := range dr.holes {
		pdf.Circle(px(c.cx), py(c.cy), c.r, "D")
		pdf.Line(px(c.cx)-c.r, py(c.cy), px(c.cx)+c.r, py(c.cy))
		pdf.Line(px(c.cx), py(c.cy)-c.r, px(c.cx), py(c.cy)+c.r)
	}
	pdf.SetLineWidth(0.15)
	for _, c := range dr.heads {
		pdf.Circle(px(c.cx), py(c.cy), c.r, "D")
	}

	pdf.SetDrawColor(0, 120, 200)
	pdf.SetDashPattern([]float64{2, 1}, 0)
	for _, l := range dr.tubes {
		pdf.Line(px(l.x0), py(l.y0), px(l.x1), py(l.y1))
	}
	for _, a := range dr.bends {
		polyline(pdf, a.points(arcChords), px, py)
	}
	pdf.SetDashPattern(nil, 0)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	barY := top + dr.depth + headerHeight/2
	pdf.Line(margin, barY, margin+scaleBar, barY)
	pdf.Line(margin, barY-1.5, margin, barY+1.5)
	pdf.Line(margin+scaleBar, barY-1.5, margin+scaleBar, barY+1.5)
	pdf.SetXY(margin, barY+1.5)
	pdf.CellFormat(scaleBar, 4, fmt.Sprintf("%.0f mm", scaleBar), "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

func polyline(pdf *fpdf.Fpdf, pts [][2]float64, px, py func(float64) float64) {
	for i := 1; i < len(pts); i++ {
		pdf.Line(px(pts[i-1][0]), py(pts[i-1][1]), px(pts[i][0]), py(pts[i][1]))
	}
}
