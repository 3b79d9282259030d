package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/taigrr/roam/pkg/scene"
)

// Frame is a color buffer with a matching depth buffer. Pixels map to
// terminal half-cells: one terminal row holds two frame rows. Depth is
// camera-space distance along the view direction; smaller is closer.
type Frame struct {
	Width, Height int
	Color         []scene.Color
	Depth         []float64
}

// NewFrame allocates a frame of the given size.
func NewFrame(width, height int) *Frame {
	f := &Frame{}
	f.Resize(width, height)
	return f
}

// Resize reallocates the buffers for a new size. Contents are discarded;
// callers redraw after a resize.
func (f *Frame) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	f.Width = width
	f.Height = height
	f.Color = make([]scene.Color, width*height)
	f.Depth = make([]float64, width*height)
}

// Begin clears the frame to the background color and resets every depth
// to +Inf so any finite fragment wins the first comparison.
func (f *Frame) Begin(bg scene.Color) {
	if len(f.Color) == 0 {
		return
	}

	f.Color[0] = bg
	f.Depth[0] = math.Inf(1)
	// Doubling copy: fill the rest from the already-initialized prefix.
	for i := 1; i < len(f.Color); i *= 2 {
		copy(f.Color[i:], f.Color[:i])
		copy(f.Depth[i:], f.Depth[:i])
	}
}

// Write stores a fragment if it passes the depth test. Fragments outside
// the frame are discarded. The test is strictly less-than: the first
// fragment written at a given depth keeps the pixel, so equal-depth
// overlaps resolve deterministically by submission order.
func (f *Frame) Write(x, y int, depth float64, c scene.Color) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	i := y*f.Width + x
	if depth < f.Depth[i] {
		f.Depth[i] = depth
		f.Color[i] = c
	}
}

// At returns the color at (x, y). Out-of-bounds reads return the zero
// color.
func (f *Frame) At(x, y int) scene.Color {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return scene.Color{}
	}
	return f.Color[y*f.Width+x]
}

// DepthAt returns the depth at (x, y), or +Inf out of bounds.
func (f *Frame) DepthAt(x, y int) float64 {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return math.Inf(1)
	}
	return f.Depth[y*f.Width+x]
}

// DrawLine draws a 1-pixel line with Bresenham's algorithm, ignoring
// depth. Used for wireframe overlays, which always draw on top.
func (f *Frame) DrawLine(x0, y0, x1, y1 int, c scene.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < f.Width && y0 >= 0 && y0 < f.Height {
			f.Color[y0*f.Width+x0] = c
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// ToImage copies the frame into an image.RGBA.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, f.Color[y*f.Width+x])
		}
	}
	return img
}

// SavePNG writes the frame to a PNG file. Handy for screenshots and for
// debugging rasterizer output outside a terminal.
func (f *Frame) SavePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, f.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
