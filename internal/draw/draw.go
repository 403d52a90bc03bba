// Package draw renders game frames to terminals.
package draw

import "math"

// Point represents a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Box-drawing characters used for borders and strokes.
const (
	BoxHorizontal  = '─'
	BoxVertical    = '│'
	BoxTopLeft     = '┌'
	BoxTopRight    = '┐'
	BoxBottomLeft  = '└'
	BoxBottomRight = '┘'
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func round(v float64) int {
	return int(math.Round(v))
}
