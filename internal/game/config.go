package game

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when the game geometry cannot produce a playable field.
var ErrInvalidConfig = errors.New("invalid game config")

// Config holds the fixed geometry of a game. Values are in field units.
type Config struct {
	Width  float64      `mapstructure:"width" yaml:"width"`
	Height float64      `mapstructure:"height" yaml:"height"`
	Ball   BallConfig   `mapstructure:"ball" yaml:"ball"`
	Paddle PaddleConfig `mapstructure:"paddle" yaml:"paddle"`
	Bricks BrickConfig  `mapstructure:"bricks" yaml:"bricks"`
}

// BallConfig describes the ball.
type BallConfig struct {
	Radius     float64 `mapstructure:"radius" yaml:"radius"`
	SpeedRatio float64 `mapstructure:"speed_ratio" yaml:"speed_ratio"` // Initial dy as a fraction of field height
	Color      Color   `mapstructure:"color" yaml:"color"`
}

// PaddleConfig describes the paddle.
type PaddleConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
	Step   float64 `mapstructure:"step" yaml:"step"` // Horizontal move per frame
	Color  Color   `mapstructure:"color" yaml:"color"`
}

// BrickConfig describes the brick grid.
type BrickConfig struct {
	Rows    int     `mapstructure:"rows" yaml:"rows"`
	Cols    int     `mapstructure:"cols" yaml:"cols"`
	Padding float64 `mapstructure:"padding" yaml:"padding"`
	Height  float64 `mapstructure:"height" yaml:"height"`
	Color   Color   `mapstructure:"color" yaml:"color"`
}

// DefaultConfig returns the classic 400x400 layout with a 3x5 grid.
func DefaultConfig() Config {
	return Config{
		Width:  400,
		Height: 400,
		Ball: BallConfig{
			Radius:     10,
			SpeedRatio: 0.01,
			Color:      "white",
		},
		Paddle: PaddleConfig{
			Width:  125,
			Height: 20,
			Step:   10,
			Color:  "aqua",
		},
		Bricks: BrickConfig{
			Rows:    3,
			Cols:    5,
			Padding: 5,
			Height:  20,
			Color:   "orange",
		},
	}
}

// Validate reports the first geometry problem found, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: field must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	case c.Ball.Radius <= 0:
		return fmt.Errorf("%w: ball radius must be positive, got %g", ErrInvalidConfig, c.Ball.Radius)
	case c.Ball.SpeedRatio <= 0:
		return fmt.Errorf("%w: ball speed ratio must be positive, got %g", ErrInvalidConfig, c.Ball.SpeedRatio)
	case c.Paddle.Width <= 0 || c.Paddle.Height <= 0:
		return fmt.Errorf("%w: paddle must be positive, got %gx%g", ErrInvalidConfig, c.Paddle.Width, c.Paddle.Height)
	case c.Paddle.Height >= c.Height:
		return fmt.Errorf("%w: paddle height %g does not fit field height %g", ErrInvalidConfig, c.Paddle.Height, c.Height)
	case c.Paddle.Step < 0:
		return fmt.Errorf("%w: paddle step must not be negative, got %g", ErrInvalidConfig, c.Paddle.Step)
	case c.Bricks.Rows <= 0 || c.Bricks.Cols <= 0:
		return fmt.Errorf("%w: brick grid must have rows and columns, got %dx%d", ErrInvalidConfig, c.Bricks.Rows, c.Bricks.Cols)
	case c.Bricks.Padding < 0 || c.Bricks.Height <= 0:
		return fmt.Errorf("%w: brick padding %g / height %g", ErrInvalidConfig, c.Bricks.Padding, c.Bricks.Height)
	case c.Width/float64(c.Bricks.Cols)-c.Bricks.Padding <= 0:
		return fmt.Errorf("%w: %d columns with padding %g leave no brick width", ErrInvalidConfig, c.Bricks.Cols, c.Bricks.Padding)
	}
	return nil
}

// Field returns the playable area described by the config.
func (c Config) Field() Field {
	return Field{Width: c.Width, Height: c.Height}
}
