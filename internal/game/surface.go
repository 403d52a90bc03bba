package game

// Color is a named display color ("white", "orange", "#ff8800").
// Surfaces that cannot show color ignore it.
type Color string

// Surface is an immediate-mode 2D drawing target in field coordinates.
type Surface interface {
	// Clear blanks the whole field.
	Clear()
	// FillCircle draws a filled circle centered at (x, y).
	FillCircle(x, y, radius float64, c Color)
	// FillRect draws a filled rectangle with its top-left corner at (x, y).
	FillRect(x, y, w, h float64, c Color)
	// StrokeRect draws a rectangle outline with its top-left corner at (x, y).
	StrokeRect(x, y, w, h float64, c Color)
	// Text draws s centered on (x, y).
	Text(s string, x, y float64, c Color)
}

// Scheduler drives Frame once per display refresh while a request is active.
type Scheduler interface {
	// Request registers the game for per-frame callbacks.
	Request()
	// Cancel withdraws the registration; no further frames run until Request.
	Cancel()
}

// Field is the fixed-size rectangular playable area.
type Field struct {
	Width  float64
	Height float64
}
