package game

// Paddle is the player-controlled bar pinned to the bottom of the field.
type Paddle struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	Step          float64 // Horizontal move per frame while a direction is held
	Color         Color
}

// NewPaddle creates a paddle at its starting position.
func NewPaddle(f Field, cfg PaddleConfig) Paddle {
	p := Paddle{
		Width:  cfg.Width,
		Height: cfg.Height,
		Step:   cfg.Step,
		Color:  cfg.Color,
	}
	p.Reset(f)
	return p
}

// Reset centers the paddle horizontally on the bottom edge.
func (p *Paddle) Reset(f Field) {
	p.X = (f.Width - p.Width) / 2
	p.Y = f.Height - p.Height
}

// Move applies held directions. Both may apply in the same frame.
// The paddle may slide half its width past either side of the field.
func (p *Paddle) Move(left, right bool, fieldWidth float64) {
	if left {
		lo := -p.Width / 2
		if p.X-p.Step > lo {
			p.X -= p.Step
		} else {
			p.X = lo
		}
	}
	if right {
		hi := fieldWidth - p.Width/2
		if p.X+p.Step < hi {
			p.X += p.Step
		} else {
			p.X = hi
		}
	}
}

// CenterX returns the horizontal center of the paddle.
func (p *Paddle) CenterX() float64 {
	return p.X + p.Width/2
}

// Covers reports whether x lies strictly inside the paddle's horizontal span.
func (p *Paddle) Covers(x float64) bool {
	return x > p.X && x < p.X+p.Width
}

// Deflect returns the horizontal velocity for a ball striking the paddle at x.
// The rebound angle grows linearly with the distance from the paddle center.
func (p *Paddle) Deflect(x float64) float64 {
	return (x - p.CenterX()) * p.Height / p.Width
}

// Draw renders the paddle as a filled rectangle.
func (p *Paddle) Draw(s Surface) {
	s.FillRect(p.X, p.Y, p.Width, p.Height, p.Color)
}
