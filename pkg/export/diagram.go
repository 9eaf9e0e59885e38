// Package export renders layout configurations as shareable diagrams.
//
// Diagrams show the viewport frame, the board square, every placed
// element with its identifier, and any scroll container outlines. They
// are meant for bug reports: a single image answers "what did the
// engine decide for this viewport".
package export

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo/float"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

// Palette for the diagram. Board gets the accent; elements are keyed by
// kind so control clusters and info panels read differently at a glance.
var (
	colorFrame   = color.RGBA{R: 0x3a, G: 0x3a, B: 0x4a, A: 0xff}
	colorBoard   = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}
	colorControl = color.RGBA{R: 0x9e, G: 0xce, B: 0x6a, A: 0xff}
	colorInfo    = color.RGBA{R: 0xe0, G: 0xaf, B: 0x68, A: 0xff}
	colorMenu    = color.RGBA{R: 0xbb, G: 0x9a, B: 0xf7, A: 0xff}
	colorScroll  = color.RGBA{R: 0xf7, G: 0x76, B: 0x8e, A: 0xff}
)

// Diagram couples one configuration with the viewport it was computed
// for and the element kinds needed for coloring.
type Diagram struct {
	Viewport geometry.ViewportDimensions
	Config   layout.Configuration
	Kinds    map[string]layout.ElementKind
}

// NewDiagram builds a diagram from an analysis result. kinds may be nil;
// unknown elements draw in the info color.
func NewDiagram(viewport geometry.ViewportDimensions, cfg layout.Configuration, kinds map[string]layout.ElementKind) Diagram {
	return Diagram{Viewport: viewport, Config: cfg, Kinds: kinds}
}

// WriteSVG writes the diagram as an SVG document.
func (d Diagram) WriteSVG(path string) error {
	if !d.Viewport.Valid() {
		return fmt.Errorf("export svg: invalid viewport")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export svg: %w", err)
	}
	defer f.Close()

	canvas := svg.New(f)
	canvas.Start(d.Viewport.Width, d.Viewport.Height)
	canvas.Rect(0, 0, d.Viewport.Width, d.Viewport.Height,
		"fill:#1a1b26", fmt.Sprintf("stroke:%s", hex(colorFrame)), "stroke-width:2")

	bp := d.Config.BoardPosition
	canvas.Rect(bp.X, bp.Y, bp.Width, bp.Height,
		fillStyle(colorBoard), strokeStyle(colorBoard))
	canvas.Text(bp.X+8, bp.Y+20, "board", labelStyle(colorBoard))

	for _, id := range d.sortedElementIDs() {
		pos := d.Config.ElementPositions[id]
		c := d.colorFor(id)
		canvas.Rect(pos.X, pos.Y, pos.Width, pos.Height, fillStyle(c), strokeStyle(c))
		canvas.Text(pos.X+8, pos.Y+20, id, labelStyle(c))
	}

	for _, sc := range d.Config.ScrollContainers {
		r := d.containerExtent(sc)
		if r.Empty() {
			continue
		}
		canvas.Rect(r.X, r.Y, r.Width, r.Height,
			"fill:none", strokeStyle(colorScroll), "stroke-dasharray:6,4")
		canvas.Text(r.X+8, r.Y-6, sc.ID, labelStyle(colorScroll))
	}

	canvas.End()
	return nil
}

// WritePNG rasterizes the diagram.
func (d Diagram) WritePNG(path string) error {
	if !d.Viewport.Valid() {
		return fmt.Errorf("export png: invalid viewport")
	}

	dc := gg.NewContext(int(d.Viewport.Width), int(d.Viewport.Height))
	dc.SetRGB255(0x1a, 0x1b, 0x26)
	dc.Clear()

	drawRect := func(pos geometry.Position, c color.RGBA, label string) {
		dc.SetColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0x30})
		dc.DrawRectangle(pos.X, pos.Y, pos.Width, pos.Height)
		dc.Fill()
		dc.SetColor(c)
		dc.SetLineWidth(2)
		dc.DrawRectangle(pos.X, pos.Y, pos.Width, pos.Height)
		dc.Stroke()
		if label != "" {
			dc.DrawString(label, pos.X+8, pos.Y+20)
		}
	}

	drawRect(d.Config.BoardPosition, colorBoard, "board")
	for _, id := range d.sortedElementIDs() {
		drawRect(d.Config.ElementPositions[id], d.colorFor(id), id)
	}

	for _, sc := range d.Config.ScrollContainers {
		r := d.containerExtent(sc)
		if r.Empty() {
			continue
		}
		dc.SetColor(colorScroll)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Stroke()
		dc.SetDash()
		dc.DrawString(sc.ID, r.X+8, r.Y-6)
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}

// sortedElementIDs gives deterministic draw order.
func (d Diagram) sortedElementIDs() []string {
	ids := make([]string, 0, len(d.Config.ElementPositions))
	for id := range d.Config.ElementPositions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// containerExtent is the union of the container's member positions.
func (d Diagram) containerExtent(sc layout.ScrollContainerSpec) geometry.Rect {
	var r geometry.Rect
	first := true
	for _, id := range sc.ElementIDs {
		pos, ok := d.Config.ElementPositions[id]
		if !ok {
			continue
		}
		er := pos.Rect()
		if first {
			r = er
			first = false
			continue
		}
		minX := min(r.X, er.X)
		minY := min(r.Y, er.Y)
		maxX := max(r.Right(), er.Right())
		maxY := max(r.Bottom(), er.Bottom())
		r = geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
	return r
}

func (d Diagram) colorFor(id string) color.RGBA {
	kind, ok := d.Kinds[id]
	if !ok {
		return colorInfo
	}
	switch kind {
	case layout.KindControl:
		return colorControl
	case layout.KindMenu:
		return colorMenu
	case layout.KindBoard:
		return colorBoard
	default:
		return colorInfo
	}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func fillStyle(c color.RGBA) string {
	return fmt.Sprintf("fill:%s;fill-opacity:0.2", hex(c))
}

func strokeStyle(c color.RGBA) string {
	return fmt.Sprintf("stroke:%s;stroke-width:2", hex(c))
}

func labelStyle(c color.RGBA) string {
	return fmt.Sprintf("fill:%s;font-family:monospace;font-size:14px", hex(c))
}
