package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
)

func TestMapProjection(t *testing.T) {
	bounds := math3d.NewBox(math3d.V3(0, 0, 0), math3d.V3(10, 1, 10))
	proj := NewMapProjection(bounds, 12, 12)

	x, y := proj.Project(math3d.V3(0, 0, 0))
	if x != 1 || y != 10 {
		t.Errorf("min corner at (%d, %d), want (1, 10)", x, y)
	}
	x, y = proj.Project(math3d.V3(10, 0, 10))
	if x != 11 || y != 0 {
		t.Errorf("max corner at (%d, %d), want (11, 0)", x, y)
	}
}

func TestDrawMap(t *testing.T) {
	l := world.Corridor(testCells, testCellLen)
	r := NewRenderer(l, DefaultOptions())
	v := shortView()
	rep, _ := renderFrame(t, r, v)

	fb := NewFramebuffer(40, 80)
	DrawMap(fb, l, rep, v.Camera.Position)

	counts := map[Color]int{}
	for _, p := range fb.Pixels {
		counts[p]++
	}
	if counts[ColorVisited] == 0 {
		t.Error("no visited leaf drawn")
	}
	if counts[ColorLeaf] == 0 {
		t.Error("no unvisited leaf drawn")
	}
	if counts[ColorEye] == 0 {
		t.Error("eye not drawn")
	}

	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 80 {
		t.Errorf("png size = %v", b)
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(-1, 0, ColorEye)
	fb.SetPixel(4, 4, ColorEye)
	fb.FillRect(3, 3, -2, -2, ColorPortal)
	for i, p := range fb.Pixels {
		if p != ColorPortal {
			t.Fatalf("pixel %d = %v, want filled", i, p)
		}
	}
	if got := fb.GetPixel(9, 9); got != (Color{}) {
		t.Errorf("out of range pixel = %v", got)
	}
}
