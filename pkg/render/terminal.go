package render

import (
	"fmt"
	"io"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the rendered frame to terminal cells. The screen is
// y-up with row 0 at the bottom, while terminals number rows from the
// top, so this is the single place the vertical flip happens.
func (s *Screen) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := s.Height - 1 - (row - area.Min.Y)
		if y < 0 {
			break
		}
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < s.Width; col++ {
			c := s.GetPixel(col-area.Min.X, y)
			cell := &uv.Cell{
				Content: string(rune(c.Glyph)),
				Width:   1,
				Style:   uv.Style{Fg: c.Color.RGBA()},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// WriteANSI writes the frame as truecolor ANSI escape sequences,
// homing the cursor first. It is the presentation path for plain
// io.Writer targets (tests, piping a single frame); interactive use
// goes through Draw and ultraviolet instead.
func (s *Screen) WriteANSI(w io.Writer) error {
	if _, err := io.WriteString(w, "\x1b[H"); err != nil {
		return err
	}
	var last Color
	haveLast := false
	for y := s.Height - 1; y >= 0; y-- {
		for x := 0; x < s.Width; x++ {
			c := s.GetPixel(x, y)
			if !haveLast || c.Color != last {
				rgba := c.Color.RGBA()
				if _, err := fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", rgba.R, rgba.G, rgba.B); err != nil {
					return err
				}
				last = c.Color
				haveLast = true
			}
			if _, err := w.Write([]byte{c.Glyph}); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\x1b[0m\n"); err != nil {
			return err
		}
		haveLast = false
	}
	return nil
}
