package draw

import (
	"math"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/tomz197/breakpong/internal/game"
)

// ScreenSurface draws game frames onto a tcell screen, one cell per pixel,
// with colors. The last row is reserved for the status line.
type ScreenSurface struct {
	screen        tcell.Screen
	logicalWidth  float64
	logicalHeight float64
	cols, rows    int // Field area in cells
	status        string
	styles        map[game.Color]tcell.Style
}

var _ game.Surface = (*ScreenSurface)(nil)

// NewScreenSurface creates a surface mapping a logicalWidth x logicalHeight field onto screen.
func NewScreenSurface(screen tcell.Screen, logicalWidth, logicalHeight float64) *ScreenSurface {
	s := &ScreenSurface{
		screen:        screen,
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		styles:        make(map[game.Color]tcell.Style),
	}
	s.Resized()
	return s
}

// Resized picks up a new screen size. Returns true if the size changed,
// in which case the caller should redraw the scene.
func (s *ScreenSurface) Resized() bool {
	w, h := s.screen.Size()
	h-- // status line
	if h < 0 {
		h = 0
	}
	if w == s.cols && h == s.rows {
		return false
	}
	s.cols, s.rows = w, h
	s.screen.Sync()
	return true
}

func (s *ScreenSurface) style(c game.Color) tcell.Style {
	if st, ok := s.styles[c]; ok {
		return st
	}
	st := tcell.StyleDefault
	if c != "" {
		st = st.Foreground(tcell.GetColor(string(c)))
	}
	s.styles[c] = st
	return st
}

func (s *ScreenSurface) scale() (sx, sy float64) {
	return float64(s.cols) / s.logicalWidth, float64(s.rows) / s.logicalHeight
}

func (s *ScreenSurface) set(col, row int, r rune, st tcell.Style) {
	if col >= 0 && col < s.cols && row >= 0 && row < s.rows {
		s.screen.SetContent(col, row, r, nil, st)
	}
}

// Clear blanks the screen.
func (s *ScreenSurface) Clear() {
	s.screen.Clear()
}

// FillCircle fills the cells whose centers fall inside the circle.
func (s *ScreenSurface) FillCircle(x, y, radius float64, c game.Color) {
	sx, sy := s.scale()
	if sx == 0 || sy == 0 {
		return
	}
	st := s.style(c)
	c0 := int(math.Floor((x - radius) * sx))
	c1 := int(math.Ceil((x + radius) * sx))
	r0 := int(math.Floor((y - radius) * sy))
	r1 := int(math.Ceil((y + radius) * sy))
	for row := r0; row <= r1; row++ {
		ly := (float64(row)+0.5)/sy - y
		for col := c0; col <= c1; col++ {
			lx := (float64(col)+0.5)/sx - x
			if lx*lx+ly*ly <= radius*radius {
				s.set(col, row, BlockFull, st)
			}
		}
	}
	s.set(int(math.Floor(x*sx)), int(math.Floor(y*sy)), BlockFull, st)
}

// FillRect fills the cells covered by the rectangle.
func (s *ScreenSurface) FillRect(x, y, w, h float64, c game.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	sx, sy := s.scale()
	st := s.style(c)
	c0, c1 := pixelSpan(x, w, sx)
	r0, r1 := pixelSpan(y, h, sy)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			s.set(col, row, BlockFull, st)
		}
	}
}

// StrokeRect draws a box-drawing outline around the cells covered by the rectangle.
func (s *ScreenSurface) StrokeRect(x, y, w, h float64, c game.Color) {
	sx, sy := s.scale()
	st := s.style(c)
	c0, c1 := pixelSpan(x, w, sx)
	r0, r1 := pixelSpan(y, h, sy)
	for col := c0 + 1; col < c1; col++ {
		s.set(col, r0, BoxHorizontal, st)
		s.set(col, r1, BoxHorizontal, st)
	}
	for row := r0 + 1; row < r1; row++ {
		s.set(c0, row, BoxVertical, st)
		s.set(c1, row, BoxVertical, st)
	}
	s.set(c0, r0, BoxTopLeft, st)
	s.set(c1, r0, BoxTopRight, st)
	s.set(c0, r1, BoxBottomLeft, st)
	s.set(c1, r1, BoxBottomRight, st)
}

// Text writes str centered on the cell under (x, y).
func (s *ScreenSurface) Text(str string, x, y float64, c game.Color) {
	sx, sy := s.scale()
	st := s.style(c).Bold(true)
	col := int(math.Floor(x*sx)) - utf8.RuneCountInString(str)/2
	row := int(math.Floor(y * sy))
	for _, r := range str {
		s.set(col, row, r, st)
		col++
	}
}

// SetStatus sets the status line text.
func (s *ScreenSurface) SetStatus(text string) {
	s.status = text
}

// Present draws the status line and shows the screen.
func (s *ScreenSurface) Present() error {
	w, h := s.screen.Size()
	if h > 0 {
		st := tcell.StyleDefault.Reverse(true)
		col := 0
		for _, r := range s.status {
			if col >= w {
				break
			}
			s.screen.SetContent(col, h-1, r, nil, st)
			col++
		}
		for ; col < w; col++ {
			s.screen.SetContent(col, h-1, ' ', nil, st)
		}
	}
	s.screen.Show()
	return nil
}
