package game

// Ball is the bouncing ball. Velocity is a per-frame displacement.
type Ball struct {
	X, Y   float64 // Center position
	DX, DY float64 // Per-frame velocity
	Radius float64
	Color  Color
}

// NewBall creates a ball at its starting position.
func NewBall(f Field, cfg BallConfig) Ball {
	b := Ball{Radius: cfg.Radius, Color: cfg.Color}
	b.Reset(f, cfg.SpeedRatio)
	return b
}

// Reset puts the ball at the field center moving straight down.
func (b *Ball) Reset(f Field, speedRatio float64) {
	b.X = f.Width / 2
	b.Y = f.Height / 2
	b.DX = 0
	b.DY = f.Height * speedRatio
}

// Move applies one frame of velocity.
func (b *Ball) Move() {
	b.X += b.DX
	b.Y += b.DY
}

// Draw renders the ball as a filled circle.
func (b *Ball) Draw(s Surface) {
	s.FillCircle(b.X, b.Y, b.Radius, b.Color)
}

// hitsSideWall reports whether the next horizontal step puts the leading edge past a side wall.
func (b *Ball) hitsSideWall(f Field) bool {
	return b.X+b.Radius+b.DX > f.Width || b.X+b.DX-b.Radius < 0
}

func (b *Ball) hitsTop() bool {
	return b.Y+b.DY-b.Radius < 0
}

func (b *Ball) hitsBottom(f Field) bool {
	return b.Y+b.Radius+b.DY > f.Height
}
