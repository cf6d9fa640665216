// Package lifecycle holds shared constants for application startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown hooks such as database pings
// and HTTP server drain.
const DefaultTimeout = 10 * time.Second
