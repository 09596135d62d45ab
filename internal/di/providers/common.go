// Package providers contains dependency injection providers for the inventory daemon.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 10 * time.Second
)
