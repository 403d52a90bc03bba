package game

// Key identifies one of the two directional inputs.
type Key int

const (
	KeyLeft Key = iota
	KeyRight
)

// EventType identifies the kind of Event.
type EventType int

const (
	EventKeyDown EventType = iota // Directional key pressed
	EventKeyUp                    // Directional key released
	EventStart                    // Start control triggered
	EventStop                     // Stop control triggered
)

// Event is a message consumed by Game.Handle at the top of a tick.
type Event struct {
	Type EventType
	Key  Key // For EventKeyDown and EventKeyUp
}

// KeyDown returns a key press event.
func KeyDown(k Key) Event { return Event{Type: EventKeyDown, Key: k} }

// KeyUp returns a key release event.
func KeyUp(k Key) Event { return Event{Type: EventKeyUp, Key: k} }

// Start returns a start command.
func Start() Event { return Event{Type: EventStart} }

// Stop returns a stop command.
func Stop() Event { return Event{Type: EventStop} }

// Effect is a notable moment in the simulation, reported to an Observer.
type Effect int

const (
	EffectStarted Effect = iota
	EffectStopped
	EffectBrickHit
	EffectWallBounce
	EffectPaddleBounce
	EffectWin
	EffectLoss
)

func (e Effect) String() string {
	switch e {
	case EffectStarted:
		return "started"
	case EffectStopped:
		return "stopped"
	case EffectBrickHit:
		return "brick_hit"
	case EffectWallBounce:
		return "wall_bounce"
	case EffectPaddleBounce:
		return "paddle_bounce"
	case EffectWin:
		return "win"
	case EffectLoss:
		return "loss"
	default:
		return "unknown"
	}
}

// Observer receives effects as they happen, synchronously inside Handle or Frame.
type Observer interface {
	Observe(e Effect, g *Game)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Effect, g *Game)

// Observe calls f.
func (f ObserverFunc) Observe(e Effect, g *Game) { f(e, g) }
