package loop

import "time"

// Frame loop defaults.
const (
	DefaultFPS = 60
)

// Session lifetime defaults.
const (
	DefaultShutdownNotice = 10 * time.Second // How long the shutdown notice shows before disconnecting
	DefaultIdleTimeout    = 2 * time.Minute  // Disconnect after this long without input (0 disables)
	idleWarnFraction      = 0.75             // Warn once this share of the idle timeout has passed
)
