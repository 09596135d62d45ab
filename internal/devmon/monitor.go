// Package devmon delivers kernel device events for the microSD card slot.
package devmon

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// Options configures the device monitor.
type Options struct {
	// MountPath is where the card's filesystem appears once mounted.
	// Only the fallback backend uses it; the netlink backend listens to
	// the kernel directly.
	MountPath string
}

// Monitor watches for card-slot device events.
//
// The monitor automatically selects the best backend for the current platform:
// - Linux: raw netlink kobject-uevent socket, the mechanism udev itself uses
// - Others: fsnotify on the mount parent directory, synthesizing bind events
//   when the mount point appears (development convenience)
type Monitor struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a new device monitor.
func New(logger *slog.Logger, opts Options) (*Monitor, error) {
	var backend Backend
	var err error

	if runtime.GOOS == "linux" {
		if backend, err = newNetlinkBackend(logger); err == nil {
			logger.Info("using netlink uevent backend", "subsystem", SubsystemMMC)
		}
	} else {
		if backend, err = newFallbackBackend(logger, opts); err == nil {
			logger.Info("using fsnotify mount-watch backend", "platform", runtime.GOOS)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	return &Monitor{
		backend: backend,
		logger:  logger,
	}, nil
}

// Start begins listening for events. It returns once the backend is
// running; events arrive on Events until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	return m.backend.Start(ctx)
}

// Stop stops the monitor and releases resources
func (m *Monitor) Stop() error {
	return m.backend.Stop()
}

// Events returns the channel for receiving device events
func (m *Monitor) Events() <-chan Event {
	return m.backend.Events()
}

// Errors returns the channel for receiving errors
func (m *Monitor) Errors() <-chan error {
	return m.backend.Errors()
}
