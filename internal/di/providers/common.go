package providers

import "time"

// shutdownTimeout bounds graceful teardown of the HTTP server and workers.
const shutdownTimeout = 30 * time.Second
