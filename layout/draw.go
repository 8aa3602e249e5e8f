package layout

import (
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/quartercastle/vector"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is the observable state of a simulation after a tick.
type Snapshot struct {
	Tick      int              `json:"tick"`
	Alpha     float64          `json:"alpha"`
	Settled   bool             `json:"settled"`
	Positions map[string]Point `json:"positions"`
	// Hulls are closed curves, keyed by category
	Hulls map[int][]Point `json:"hulls"`
}

const (
	drawMargin     = 20
	drawNodeRadius = 3
)

// categoryColors are cycled through by category
var categoryColors = []color.RGBA{
	{R: 0xe4, G: 0x1a, B: 0x1c, A: 0xff},
	{R: 0x37, G: 0x7e, B: 0xb8, A: 0xff},
	{R: 0x4d, G: 0xaf, B: 0x4a, A: 0xff},
	{R: 0x98, G: 0x4e, B: 0xa3, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x00, A: 0xff},
	{R: 0xa6, G: 0x56, B: 0x28, A: 0xff},
}

func categoryColor(category int) color.RGBA {
	return categoryColors[(max(category, 1)-1)%len(categoryColors)]
}

// DrawGraph renders hulls, links and nodes of g as PNG into w. Positions
// are scaled to fit the image.
func DrawGraph(w io.Writer, g *Graph, hulls map[int][]vector.Vector, width, height int, invertColor bool) error {
	dc := gg.NewContext(width, height)
	if invertColor {
		dc.SetRGB(0, 0, 0)
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.Clear()
	project := projection(g, hulls, width, height)

	for category, hull := range hulls {
		if len(hull) < 2 {
			continue
		}
		c := categoryColor(category)
		for i, p := range hull {
			x, y, ok := project(p)
			if !ok {
				continue
			}
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 0x30)
		dc.FillPreserve()
		dc.SetColor(c)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	dc.SetRGB(0.66, 0.66, 0.66)
	dc.SetLineWidth(1)
	for _, link := range g.Links {
		x0, y0, ok0 := project(g.Nodes[link.Source].Pos)
		x1, y1, ok1 := project(g.Nodes[link.Target].Pos)
		if ok0 && ok1 {
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
		}
	}

	for _, node := range g.Nodes {
		x, y, ok := project(node.Pos)
		if !ok {
			continue
		}
		dc.DrawCircle(x, y, drawNodeRadius)
		dc.SetColor(categoryColor(node.Category))
		if node.IsPinned() {
			dc.FillPreserve()
			dc.SetRGB(0.5, 0.5, 0.5)
			dc.Stroke()
		} else {
			dc.Fill()
		}
	}
	return dc.EncodePNG(w)
}

// projection maps the bounding box of all nodes and hull points onto the
// image, keeping the aspect ratio.
func projection(g *Graph, hulls map[int][]vector.Vector, width, height int) func(vector.Vector) (float64, float64, bool) {
	x0, y0 := math.Inf(+1), math.Inf(+1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	extend := func(p vector.Vector) {
		if !isFinite(p) {
			return
		}
		x0, y0 = min(x0, p[0]), min(y0, p[1])
		x1, y1 = max(x1, p[0]), max(y1, p[1])
	}
	for _, node := range g.Nodes {
		extend(node.Pos)
	}
	for _, hull := range hulls {
		for _, p := range hull {
			extend(p)
		}
	}
	if x0 > x1 {
		x0, y0, x1, y1 = 0, 0, 1, 1
	}
	scale := min(
		float64(width-2*drawMargin)/max(x1-x0, 1e-9),
		float64(height-2*drawMargin)/max(y1-y0, 1e-9),
	)
	return func(p vector.Vector) (float64, float64, bool) {
		if !isFinite(p) {
			return 0, 0, false
		}
		return drawMargin + (p[0]-x0)*scale, drawMargin + (p[1]-y0)*scale, true
	}
}
