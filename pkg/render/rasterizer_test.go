package render

import (
	"math"
	"testing"

	"github.com/taigrr/roam/pkg/math3d"
	"github.com/taigrr/roam/pkg/scene"
)

var testBG = scene.RGB(0, 0, 0)

func testScene(light math3d.Vec3, tris ...scene.Triangle) *scene.Scene {
	return &scene.Scene{Triangles: tris, Light: light, Background: testBG}
}

func countNonBackground(f *Frame) int {
	n := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.At(x, y) != testBG {
				n++
			}
		}
	}
	return n
}

// A unit right triangle on the z=-1 plane, facing the default camera,
// fully lit by a head-on light, fills the quadrant right of and above
// the screen center at full base color.
func TestDrawSceneHeadOnTriangle(t *testing.T) {
	f := NewFrame(80, 40)
	cam := NewCamera()
	var r Rasterizer

	red := scene.RGB(255, 0, 0)
	s := testScene(math3d.V3(0, 0, 1), scene.Triangle{
		A:     math3d.V3(0, 0, -1),
		B:     math3d.V3(1, 0, -1),
		C:     math3d.V3(0, 1, -1),
		Color: red,
	})

	r.DrawScene(f, cam, s)

	// With focal 1.5 the vertices project to (40,20), (70,20), (40,-10):
	// the filled region touches the center and extends right and up.
	if got := f.At(45, 15); got != red {
		t.Errorf("interior pixel = %v, want fully lit red", got)
	}
	if d := f.DepthAt(45, 15); math.Abs(d-1) > 1e-9 {
		t.Errorf("interior depth = %v, want 1", d)
	}

	// Left of center and below remain background.
	if got := f.At(30, 20); got != testBG {
		t.Errorf("pixel left of triangle = %v, want background", got)
	}
	if got := f.At(45, 30); got != testBG {
		t.Errorf("pixel below triangle = %v, want background", got)
	}

	if countNonBackground(f) == 0 {
		t.Fatal("nothing was drawn")
	}

	stats := r.Stats()
	if stats.Submitted != 1 || stats.Drawn != 1 || stats.Culled != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

// Every filled pixel must lie inside the convex hull of the projected
// vertices; rasterization never spills outside the triangle.
func TestDrawSceneStaysInsideHull(t *testing.T) {
	f := NewFrame(64, 64)
	cam := NewCamera()
	var r Rasterizer

	tri := scene.Triangle{
		A:     math3d.V3(-0.4, -0.3, -2),
		B:     math3d.V3(0.5, -0.1, -2),
		C:     math3d.V3(0.1, 0.6, -2),
		Color: scene.RGB(255, 255, 255),
	}
	r.DrawScene(f, cam, testScene(math3d.V3(0, 0, 1), tri))

	x0, y0, _ := f.project(cam.ToView(tri.A), cam.FocalLength)
	x1, y1, _ := f.project(cam.ToView(tri.B), cam.FocalLength)
	x2, y2, _ := f.project(cam.ToView(tri.C), cam.FocalLength)

	// Half-plane test against each hull edge with a half-pixel margin
	// for center sampling.
	edges := [3][4]float64{{x0, y0, x1, y1}, {x1, y1, x2, y2}, {x2, y2, x0, y0}}
	area := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.At(x, y) == testBG {
				continue
			}
			px, py := float64(x)+0.5, float64(y)+0.5
			for _, e := range edges {
				w := (e[2]-e[0])*(py-e[1]) - (e[3]-e[1])*(px-e[0])
				if area < 0 {
					w = -w
				}
				if w < -1 {
					t.Fatalf("pixel (%d,%d) outside hull edge %v", x, y, e)
				}
			}
		}
	}
}

// Submission order must not change the image when depths differ.
func TestDrawSceneOrderIndependent(t *testing.T) {
	near := scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, -0.5, -2), C: math3d.V3(0, 0.5, -2),
		Color: scene.RGB(255, 0, 0),
	}
	far := scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -4), B: math3d.V3(0.5, -0.5, -4), C: math3d.V3(0, 0.5, -4),
		Color: scene.RGB(0, 0, 255),
	}
	light := math3d.V3(0, 0, 1)

	fa := NewFrame(60, 40)
	fb := NewFrame(60, 40)
	var r Rasterizer
	r.DrawScene(fa, NewCamera(), testScene(light, near, far))
	r.DrawScene(fb, NewCamera(), testScene(light, far, near))

	for i := range fa.Color {
		if fa.Color[i] != fb.Color[i] {
			t.Fatalf("pixel %d differs across submission orders: %v vs %v",
				i, fa.Color[i], fb.Color[i])
		}
	}
}

// Exactly coincident triangles tie on every fragment; the first
// submitted must own every covered pixel.
func TestDrawSceneCoincidentDepthDeterministic(t *testing.T) {
	base := scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, -0.5, -2), C: math3d.V3(0, 0.5, -2),
	}
	first := base
	first.Color = scene.RGB(255, 0, 0)
	second := base
	second.Color = scene.RGB(0, 0, 255)

	f := NewFrame(60, 40)
	var r Rasterizer
	r.DrawScene(f, NewCamera(), testScene(math3d.V3(0, 0, 1), first, second))

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if c := f.At(x, y); c != testBG && c.B != 0 {
				t.Fatalf("pixel (%d,%d) = %v taken by the later triangle", x, y, c)
			}
		}
	}
}

// Adjacent triangles sharing an edge paint every interior pixel exactly
// once: the shared edge belongs to one triangle only.
func TestFillRuleSharedEdge(t *testing.T) {
	f := NewFrame(40, 40)
	cam := NewCamera()
	var r Rasterizer

	// A quad split along the diagonal; equal depth, so a pixel rendered
	// by both triangles would keep the first color and a seam of
	// misses would show background.
	a := scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, -0.5, -2), C: math3d.V3(0.5, 0.5, -2),
		Color: scene.RGB(255, 0, 0),
	}
	b := scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, 0.5, -2), C: math3d.V3(-0.5, 0.5, -2),
		Color: scene.RGB(0, 0, 255),
	}

	r.DrawScene(f, cam, testScene(math3d.V3(0, 0, 1), a, b))

	// Interior of the quad: project corners and walk well inside them.
	if f.At(20, 20) == testBG {
		t.Error("quad center not covered")
	}
	// No seam: scan the diagonal neighborhood for background gaps.
	for i := 14; i <= 26; i++ {
		if f.At(i, 40-i-1) == testBG && f.At(i, 40-i) == testBG {
			t.Errorf("seam gap near (%d,%d)", i, 40-i)
		}
	}
}

func TestDrawSceneBehindCameraCulled(t *testing.T) {
	f := NewFrame(40, 40)
	var r Rasterizer

	s := testScene(math3d.V3(0, 0, 1), scene.Triangle{
		A: math3d.V3(0, 0, 3), B: math3d.V3(1, 0, 3), C: math3d.V3(0, 1, 3),
		Color: scene.RGB(255, 255, 255),
	})
	r.DrawScene(f, NewCamera(), s)

	if n := countNonBackground(f); n != 0 {
		t.Errorf("%d pixels drawn for geometry behind the camera", n)
	}
	if stats := r.Stats(); stats.Culled != 1 {
		t.Errorf("stats = %+v, want 1 culled", stats)
	}
}

// A triangle straddling the near plane is clipped, not dropped: the
// part in front still renders.
func TestDrawSceneNearClip(t *testing.T) {
	f := NewFrame(40, 40)
	cam := NewCamera()
	var r Rasterizer

	s := testScene(math3d.V3(0, 0, 1), scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, -0.5, -2), C: math3d.V3(0, 0.5, 2),
		Color: scene.RGB(255, 255, 255),
	})
	r.DrawScene(f, cam, s)

	if countNonBackground(f) == 0 {
		t.Error("clipped triangle rendered nothing")
	}
	if stats := r.Stats(); stats.Clipped != 1 {
		t.Errorf("stats = %+v, want 1 clipped", stats)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if d := f.DepthAt(x, y); d < cam.Near {
				t.Fatalf("fragment at (%d,%d) closer than the near plane: %v", x, y, d)
			}
		}
	}
}

func TestDrawSceneDegenerateSkipped(t *testing.T) {
	f := NewFrame(40, 40)
	var r Rasterizer

	s := testScene(math3d.V3(0, 0, 1), scene.Triangle{
		A: math3d.V3(0, 0, -2), B: math3d.V3(1, 1, -2), C: math3d.V3(2, 2, -2),
		Color: scene.RGB(255, 255, 255),
	})
	r.DrawScene(f, NewCamera(), s)

	if n := countNonBackground(f); n != 0 {
		t.Errorf("%d pixels drawn for a degenerate triangle", n)
	}
}

func TestDrawSceneWireframeOverlay(t *testing.T) {
	f := NewFrame(60, 40)
	r := Rasterizer{Wireframe: true}

	s := testScene(math3d.V3(0, 0, 1), scene.Triangle{
		A: math3d.V3(-0.5, -0.5, -2), B: math3d.V3(0.5, -0.5, -2), C: math3d.V3(0, 0.5, -2),
		Color: scene.RGB(120, 0, 0),
	})
	r.DrawScene(f, NewCamera(), s)

	found := false
	for i := range f.Color {
		if f.Color[i] == WireColor {
			found = true
			break
		}
	}
	if !found {
		t.Error("no wireframe pixels drawn")
	}
}

func clipNearZs(zs ...float64) []math3d.Vec3 {
	vs := make([]math3d.Vec3, len(zs))
	for i, z := range zs {
		vs[i] = math3d.V3(float64(i), 0, z)
	}
	return vs
}

func TestClipNear(t *testing.T) {
	tests := []struct {
		name string
		zs   []float64
		want int
	}{
		{"all in front", []float64{1, 2, 3}, 3},
		{"all behind", []float64{-1, -2, 0.05}, 0},
		{"one behind", []float64{1, 2, -1}, 4},
		{"two behind", []float64{1, -2, -1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := clipNear(clipNearZs(tt.zs...), 0.1)
			if len(out) != tt.want {
				t.Fatalf("got %d vertices, want %d", len(out), tt.want)
			}
			for _, v := range out {
				if v.Z < 0.1-1e-12 {
					t.Fatalf("vertex %v behind the near plane", v)
				}
			}
		})
	}
}

func BenchmarkDrawScene(b *testing.B) {
	f := NewFrame(160, 96)
	cam := NewCamera()
	s := &scene.Scene{
		Triangles:  scene.TessellateSphere(math3d.V3(0, 0, -4), 1.2, scene.RGB(200, 160, 90), 16),
		Light:      math3d.V3(0.3, 0.5, 1),
		Background: testBG,
	}
	var r Rasterizer

	b.ReportAllocs()
	for b.Loop() {
		r.DrawScene(f, cam, s)
	}
}
