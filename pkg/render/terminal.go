package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalRenderer presents frames on a terminal using half-block
// characters: each cell shows two vertically stacked pixels via the
// upper half block with the cell's foreground and background colors.
// A terminal of w x h cells therefore backs a frame of w x 2h pixels,
// which also roughly squares up the 1:2 aspect of terminal cells.
type TerminalRenderer struct {
	term   *uv.Terminal
	width  int // terminal columns
	height int // terminal rows
}

// NewTerminalRenderer wraps a terminal of the given size in cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel dimensions a frame must have to
// fill the terminal.
func (r *TerminalRenderer) FramebufferSize() (width, height int) {
	return r.width, r.height * 2
}

// Render converts the frame into terminal cells. Call Flush to push the
// cells to the screen.
func (r *TerminalRenderer) Render(f *Frame) {
	for row := 0; row < r.height; row++ {
		topY := row * 2
		botY := topY + 1

		for col := 0; col < r.width && col < f.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(f.At(col, topY)),
					Bg: cellColor(f.At(col, botY)),
				},
			}
			r.term.SetCell(col, row, cell)
		}
	}
}

// Flush pushes pending cells to the terminal.
func (r *TerminalRenderer) Flush() error {
	return r.term.Display()
}

// cellColor converts to the terminal color interface; zero alpha means
// no color at all.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
