package draw

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tomz197/breakpong/internal/game"
)

// SurfaceOptions configures a CanvasSurface.
type SurfaceOptions struct {
	TermSizeFunc TermSizeFunc
	MaxCols      int // Render area is clamped to this many columns (0 = unlimited)
	MaxRows      int // Render area is clamped to this many rows (0 = unlimited)
}

// overlay is a line of text placed in terminal cells on top of the canvas.
type overlay struct {
	col, row int
	text     string
}

// CanvasSurface draws game frames onto a half-block Canvas and presents them
// to a terminal writer. The last terminal row is reserved for a status line.
// Colors are ignored.
type CanvasSurface struct {
	canvas   *Canvas
	cw       *ChunkWriter
	sizeFunc TermSizeFunc
	maxCols  int
	maxRows  int

	termWidth, termHeight int // Last seen terminal size

	texts      []overlay
	shownTexts []overlay
	status     string
	dirty      bool
}

var _ game.Surface = (*CanvasSurface)(nil)

// NewCanvasSurface creates a surface mapping a logicalWidth x logicalHeight field onto w.
func NewCanvasSurface(w io.Writer, logicalWidth, logicalHeight float64, opts SurfaceOptions) *CanvasSurface {
	sizeFunc := opts.TermSizeFunc
	if sizeFunc == nil {
		sizeFunc = DefaultTermSizeFunc
	}
	s := &CanvasSurface{
		canvas:   NewScaledCanvas(0, 0, logicalWidth, logicalHeight),
		cw:       NewChunkWriter(w, 0, 0),
		sizeFunc: sizeFunc,
		maxCols:  opts.MaxCols,
		maxRows:  opts.MaxRows,
		dirty:    true,
	}
	s.updateSize()
	return s
}

// Canvas exposes the underlying pixel buffer.
func (s *CanvasSurface) Canvas() *Canvas {
	return s.canvas
}

// Clear blanks the canvas and drops all text overlays.
func (s *CanvasSurface) Clear() {
	s.canvas.Clear()
	s.texts = s.texts[:0]
	s.dirty = true
}

// FillCircle draws a filled circle.
func (s *CanvasSurface) FillCircle(x, y, radius float64, _ game.Color) {
	s.canvas.FillCircle(x, y, radius)
	s.dirty = true
}

// FillRect draws a filled rectangle.
func (s *CanvasSurface) FillRect(x, y, w, h float64, _ game.Color) {
	s.canvas.FillRect(x, y, w, h)
	s.dirty = true
}

// StrokeRect draws a rectangle outline.
func (s *CanvasSurface) StrokeRect(x, y, w, h float64, _ game.Color) {
	s.canvas.StrokeRect(x, y, w, h)
	s.dirty = true
}

// Text places str centered on the terminal cell under (x, y).
func (s *CanvasSurface) Text(str string, x, y float64, _ game.Color) {
	col, row := s.canvas.LogicalToTerminal(x, y)
	col -= utf8.RuneCountInString(str) / 2
	if col < 1 {
		col = 1
	}
	s.texts = append(s.texts, overlay{col: col, row: row, text: str})
	s.dirty = true
}

// SetStatus sets the text of the status line below the field.
func (s *CanvasSurface) SetStatus(text string) {
	if text != s.status {
		s.status = text
		s.dirty = true
	}
}

// Resized picks up a new terminal size. Returns true if the layout changed,
// in which case the caller should redraw the scene.
func (s *CanvasSurface) Resized() bool {
	return s.updateSize()
}

// updateSize follows the terminal size, clamping the render area and centering it.
// Returns true when the layout changed and the terminal was cleared.
func (s *CanvasSurface) updateSize() bool {
	width, height, err := s.sizeFunc()
	if err != nil || (width == s.termWidth && height == s.termHeight) {
		return false
	}
	s.termWidth, s.termHeight = width, height

	// One row is reserved for the status line
	renderWidth, renderHeight, offsetCol, offsetRow := ClampTermSize(width, height-1, s.maxCols, s.maxRows)
	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.cw.SetOffset(offsetCol, offsetRow)
	s.canvas.ForceRedraw()
	s.shownTexts = s.shownTexts[:0]

	s.cw.WriteString(ansiClear)
	s.canvas.RenderBorder(s.cw)
	s.dirty = true
	return true
}

// Present writes everything drawn since the last Present to the terminal.
// It is a no-op when nothing changed. Size changes are left for Resized,
// so the caller always gets the chance to redraw after the canvas is reset.
func (s *CanvasSurface) Present() error {
	if !s.dirty {
		return nil
	}

	if !slices.Equal(s.texts, s.shownTexts) {
		// Blank old text cells, then repaint every set pixel over them
		for _, t := range s.shownTexts {
			s.cw.WriteAt(t.col, t.row, blank(t.text))
		}
		s.canvas.ForceRedraw()
	}

	s.canvas.Render(s.cw)
	for _, t := range s.texts {
		s.cw.WriteAt(t.col, t.row, t.text)
	}
	s.shownTexts = append(s.shownTexts[:0], s.texts...)

	s.writeStatus()
	s.dirty = false
	return s.cw.Flush()
}

// writeStatus draws the status line on the last terminal row, outside the canvas offset.
func (s *CanvasSurface) writeStatus() {
	if s.termHeight <= 0 {
		return
	}
	line := s.status
	if n := utf8.RuneCountInString(line); n < s.termWidth {
		line += blankN(s.termWidth - n)
	}
	fmt.Fprintf(s.cw, "\033[%d;1H%s%s%s", s.termHeight, ansiReverse, truncate(line, s.termWidth), ansiReset)
}

// ClampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area. A zero max leaves that axis unclamped.
func ClampTermSize(termWidth, termHeight, maxWidth, maxHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(termWidth, 0)
	renderHeight = max(termHeight, 0)
	if maxWidth > 0 && renderWidth > maxWidth {
		renderWidth = maxWidth
	}
	if maxHeight > 0 && renderHeight > maxHeight {
		renderHeight = maxHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

func blank(s string) string {
	return blankN(utf8.RuneCountInString(s))
}

func blankN(n int) string {
	return strings.Repeat(" ", n)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
