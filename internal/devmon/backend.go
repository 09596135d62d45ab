package devmon

import "context"

// Backend defines the platform-specific device event implementation
type Backend interface {
	// Start begins listening for events and returns once the backend is
	// running. Listening ends when the context is cancelled or Stop is
	// called.
	Start(ctx context.Context) error

	// Stop stops the backend and releases all resources
	Stop() error

	// Events returns the channel for receiving device events
	Events() <-chan Event

	// Errors returns the channel for receiving errors. An error on this
	// channel means the subscription is gone; the monitor cannot recover.
	Errors() <-chan error
}
