package render

import (
	"bytes"
	"strings"
	"testing"
)

// stripEscapes drops CSI sequences, leaving only the glyph bytes.
func stripEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			for i < len(s) && s[i] != 'm' && s[i] != 'H' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestWriteANSIShape(t *testing.T) {
	s, err := NewScreen(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	s.Clear()

	var buf bytes.Buffer
	if err := s.WriteANSI(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\x1b[H") {
		t.Errorf("output does not home the cursor: %q", out[:min(len(out), 8)])
	}
	if got := strings.Count(out, "\x1b[0m\n"); got != 3 {
		t.Errorf("got %d row resets, want 3", got)
	}
	rows := strings.Split(strings.TrimSuffix(stripEscapes(out), "\n"), "\n")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if len(row) != 4 {
			t.Errorf("row %d has %d glyphs, want 4: %q", i, len(row), row)
		}
	}
}

func TestWriteANSIVerticalFlip(t *testing.T) {
	s, err := NewScreen(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	s.Clear()
	// Screen y=1 is the top row and must come out first.
	s.SetPixel(1, 1, Cell{Glyph: '@', Depth: 0.5, Color: White})

	var buf bytes.Buffer
	if err := s.WriteANSI(&buf); err != nil {
		t.Fatal(err)
	}
	rows := strings.Split(strings.TrimSuffix(stripEscapes(buf.String()), "\n"), "\n")
	if rows[0] != " @ " {
		t.Errorf("top row = %q, want %q", rows[0], " @ ")
	}
	if rows[1] != "   " {
		t.Errorf("bottom row = %q, want %q", rows[1], "   ")
	}
}

func TestWriteANSIColorRuns(t *testing.T) {
	s, err := NewScreen(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Clear()
	// One red pixel mid-row splits the black background into two runs,
	// so the row needs exactly three color sequences.
	s.SetPixel(2, 0, Cell{Glyph: '#', Depth: 0.5, Color: Red})

	var buf bytes.Buffer
	if err := s.WriteANSI(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\x1b[38;2;"); got != 3 {
		t.Errorf("got %d color sequences, want 3", got)
	}
	if !strings.Contains(buf.String(), "\x1b[38;2;255;0;0m#") {
		t.Errorf("red pixel not emitted as truecolor: %q", buf.String())
	}
}
