package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

func testDiagram() Diagram {
	cfg := layout.Configuration{
		BoardSize:     geometry.Size{Width: 400, Height: 400},
		BoardPosition: geometry.Position{X: 16, Y: 16, Width: 400, Height: 400},
		ElementPositions: map[string]geometry.Position{
			"move-history":  {X: 432, Y: 16, Width: 200, Height: 160},
			"left-controls": {X: 432, Y: 192, Width: 180, Height: 140},
		},
		Strategy:          layout.StrategyHorizontal,
		RequiresScrolling: true,
		ScrollContainers: []layout.ScrollContainerSpec{
			{ID: "ui-scroll", ElementIDs: []string{"move-history", "left-controls"}, MaxHeight: 300},
		},
	}
	kinds := map[string]layout.ElementKind{
		"move-history":  layout.KindInfo,
		"left-controls": layout.KindControl,
	}
	return NewDiagram(geometry.NewViewportDimensions(800, 600, 1), cfg, kinds)
}

func TestWriteSVG(t *testing.T) {
	d := testDiagram()
	path := filepath.Join(t.TempDir(), "layout.svg")

	if err := d.WriteSVG(path); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc := string(data)
	for _, want := range []string{"<svg", "board", "move-history", "left-controls", "ui-scroll"} {
		if !strings.Contains(doc, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestWriteSVG_InvalidViewport(t *testing.T) {
	d := testDiagram()
	d.Viewport = geometry.ViewportDimensions{}

	if err := d.WriteSVG(filepath.Join(t.TempDir(), "bad.svg")); err == nil {
		t.Fatal("WriteSVG accepted an invalid viewport")
	}
}

func TestWritePNG(t *testing.T) {
	d := testDiagram()
	path := filepath.Join(t.TempDir(), "layout.png")

	if err := d.WritePNG(path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PNG file is empty")
	}
}

func TestContainerExtent_UnionOfMembers(t *testing.T) {
	d := testDiagram()
	r := d.containerExtent(d.Config.ScrollContainers[0])

	if r.X != 432 || r.Y != 16 {
		t.Errorf("extent origin = (%v, %v), want (432, 16)", r.X, r.Y)
	}
	if r.Right() != 632 || r.Bottom() != 332 {
		t.Errorf("extent bounds = (%v, %v), want (632, 332)", r.Right(), r.Bottom())
	}
}
