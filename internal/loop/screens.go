package loop

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomz197/breakpong/internal/game"
)

const controlsHelp = "←/→ move  [Q] Quit"

// updateStatus composes the control bar: the visible control, a short key
// help, and any pending disconnect warning.
func (r *Runner) updateStatus(now time.Time) {
	parts := []string{" " + r.controls.Label(), controlsHelp}

	if r.game.State() == game.StateRunning {
		parts = append(parts, fmt.Sprintf("Bricks: %d", r.game.Grid.Active))
	}

	switch {
	case !r.shutdownAt.IsZero():
		parts = append(parts, fmt.Sprintf("SERVER SHUTTING DOWN, disconnecting in %ds", secondsLeft(r.shutdownAt.Sub(now))))
	case r.idleWarning(now):
		left := r.opts.IdleTimeout - now.Sub(r.lastActivity)
		parts = append(parts, fmt.Sprintf("Inactive, disconnecting in %ds", secondsLeft(left)))
	}

	r.surface.SetStatus(strings.Join(parts, "  |  "))
}

// idleWarning reports whether the session is close enough to the idle timeout to warn.
func (r *Runner) idleWarning(now time.Time) bool {
	if r.opts.IdleTimeout <= 0 {
		return false
	}
	warnAfter := time.Duration(float64(r.opts.IdleTimeout) * idleWarnFraction)
	return now.Sub(r.lastActivity) >= warnAfter
}

func secondsLeft(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
