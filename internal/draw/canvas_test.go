package draw

import (
	"bytes"
	"strings"
	"testing"
)

func countPixels(c *Canvas) int {
	n := 0
	for _, p := range c.pixels {
		if p {
			n++
		}
	}
	return n
}

// TestFillRectScaling verifies logical rectangles map onto the sub-pixel grid
func TestFillRectScaling(t *testing.T) {
	// 40x20 terminal -> 40x40 sub-pixels for a 400x400 field: 10 units per pixel
	c := NewScaledCanvas(40, 20, 400, 400)

	c.FillRect(0, 0, 100, 50)

	if got := countPixels(c); got != 10*5 {
		t.Errorf("Expected 50 pixels, got %d", got)
	}
	if !c.Pixel(0, 0) || !c.Pixel(9, 4) {
		t.Error("Expected corners set")
	}
	if c.Pixel(10, 0) || c.Pixel(0, 5) {
		t.Error("Expected pixels outside the rect unset")
	}
}

func TestFillRectKeepsTinyRectsVisible(t *testing.T) {
	c := NewScaledCanvas(40, 20, 400, 400)
	c.FillRect(100, 100, 1, 1)
	if got := countPixels(c); got != 1 {
		t.Errorf("Expected 1 pixel, got %d", got)
	}
}

func TestFillRectClipsToCanvas(t *testing.T) {
	c := NewScaledCanvas(40, 20, 400, 400)
	c.FillRect(-62.5, 380, 125, 20)
	if got := countPixels(c); got == 0 {
		t.Error("Expected visible part of an off-field paddle")
	}
	if c.Pixel(7, 38) {
		t.Error("Expected pixels past the paddle's right edge unset")
	}
}

func TestFillCircle(t *testing.T) {
	c := NewScaledCanvas(40, 20, 400, 400)
	c.FillCircle(200, 200, 10)

	if !c.Pixel(20, 20) || !c.Pixel(19, 19) {
		t.Error("Expected center pixels set")
	}
	if c.Pixel(22, 20) || c.Pixel(20, 22) {
		t.Error("Expected pixels beyond the radius unset")
	}
}

func TestStrokeRectOutlineOnly(t *testing.T) {
	c := NewScaledCanvas(40, 20, 400, 400)
	c.StrokeRect(100, 150, 200, 100)

	if !c.Pixel(10, 15) || !c.Pixel(30, 25) {
		t.Error("Expected corners set")
	}
	if c.Pixel(20, 20) {
		t.Error("Expected interior unset")
	}
}

// TestRenderOnlyChangedCells verifies the diffing renderer
func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	var out bytes.Buffer

	c.FillRect(0, 0, 1, 2)
	c.Render(&out)
	if !strings.Contains(out.String(), "\033[1;1H"+string(BlockFull)) {
		t.Fatalf("Expected full block at 1;1, got %q", out.String())
	}

	out.Reset()
	c.Render(&out)
	if out.Len() != 0 {
		t.Errorf("Expected no output for unchanged frame, got %q", out.String())
	}

	out.Reset()
	c.Clear()
	c.Render(&out)
	if out.String() != "\033[1;1H " {
		t.Errorf("Expected cell blanked, got %q", out.String())
	}
}

func TestRenderHalfBlocks(t *testing.T) {
	c := NewScaledCanvas(2, 1, 2, 2)
	var out bytes.Buffer

	c.SetFloat(0, 0)
	c.SetFloat(1, 1)
	c.Render(&out)

	got := out.String()
	if !strings.Contains(got, string(BlockUpperHalf)) || !strings.Contains(got, string(BlockLowerHalf)) {
		t.Errorf("Expected upper and lower half blocks, got %q", got)
	}
}

func TestLogicalToTerminal(t *testing.T) {
	c := NewScaledCanvas(100, 50, 400, 400)
	col, row := c.LogicalToTerminal(200, 200)
	if col != 51 || row != 26 {
		t.Errorf("Expected (51, 26), got (%d, %d)", col, row)
	}
}

func TestClampTermSize(t *testing.T) {
	cases := []struct {
		name                   string
		w, h, maxW, maxH       int
		rw, rh, offCol, offRow int
	}{
		{"fits", 80, 24, 160, 50, 80, 24, 0, 0},
		{"wide", 200, 24, 160, 50, 160, 24, 20, 0},
		{"tall", 80, 70, 160, 50, 80, 50, 0, 10},
		{"unlimited", 300, 90, 0, 0, 300, 90, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rw, rh, oc, or := ClampTermSize(tc.w, tc.h, tc.maxW, tc.maxH)
			if rw != tc.rw || rh != tc.rh || oc != tc.offCol || or != tc.offRow {
				t.Errorf("Got (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					rw, rh, oc, or, tc.rw, tc.rh, tc.offCol, tc.offRow)
			}
		})
	}
}
