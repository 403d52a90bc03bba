package game

import "math"

// Brick is one destructible cell of the grid.
type Brick struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	Visible       bool
	Color         Color
}

// Break hides the brick. Returns false if it was already hidden.
func (b *Brick) Break() bool {
	if !b.Visible {
		return false
	}
	b.Visible = false
	return true
}

// BrickGrid is a fixed rows x cols layout of bricks along the top of the field.
// Cell lookup uses precomputed row height and column width, so a ball position
// maps to a cell with two divisions.
type BrickGrid struct {
	Rows, Cols  int
	Padding     float64
	BrickWidth  float64
	BrickHeight float64
	RowHeight   float64 // BrickHeight + Padding
	ColWidth    float64 // BrickWidth + Padding
	Bricks      [][]Brick
	Active      int // Number of visible bricks
}

// NewBrickGrid creates a fully populated grid.
func NewBrickGrid(f Field, cfg BrickConfig) BrickGrid {
	g := BrickGrid{
		Rows:        cfg.Rows,
		Cols:        cfg.Cols,
		Padding:     cfg.Padding,
		BrickHeight: cfg.Height,
	}
	g.Reset(f, cfg.Color)
	return g
}

// Reset recomputes the geometry from the field width and makes every brick visible.
func (g *BrickGrid) Reset(f Field, c Color) {
	g.BrickWidth = f.Width/float64(g.Cols) - g.Padding
	g.RowHeight = g.BrickHeight + g.Padding
	g.ColWidth = g.BrickWidth + g.Padding

	if len(g.Bricks) != g.Rows {
		g.Bricks = make([][]Brick, g.Rows)
	}
	for i := range g.Bricks {
		if len(g.Bricks[i]) != g.Cols {
			g.Bricks[i] = make([]Brick, g.Cols)
		}
		for j := range g.Bricks[i] {
			g.Bricks[i][j] = Brick{
				X:       float64(j)*g.ColWidth + g.Padding,
				Y:       float64(i)*g.RowHeight + g.Padding,
				Width:   g.BrickWidth,
				Height:  g.BrickHeight,
				Visible: true,
				Color:   c,
			}
		}
	}
	g.Active = g.Rows * g.Cols
}

// Cell converts a field position to grid coordinates. The result may be out of range.
func (g *BrickGrid) Cell(x, y float64) (row, col int) {
	row = int(math.Floor(y / g.RowHeight))
	col = int(math.Floor(x / g.ColWidth))
	return row, col
}

// Hit breaks the visible brick whose cell contains (x, y), if any.
// Only the point is tested, not the ball's extent.
func (g *BrickGrid) Hit(x, y float64) (row, col int, ok bool) {
	row, col = g.Cell(x, y)
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return row, col, false
	}
	if !g.Bricks[row][col].Break() {
		return row, col, false
	}
	g.Active--
	return row, col, true
}

// Cleared reports whether no bricks remain.
func (g *BrickGrid) Cleared() bool {
	return g.Active == 0
}

// Draw renders all visible bricks.
func (g *BrickGrid) Draw(s Surface) {
	for i := range g.Bricks {
		for j := range g.Bricks[i] {
			b := &g.Bricks[i][j]
			if b.Visible {
				s.FillRect(b.X, b.Y, b.Width, b.Height, b.Color)
			}
		}
	}
}
