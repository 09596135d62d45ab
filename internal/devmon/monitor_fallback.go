//go:build !linux

package devmon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fallbackBackend implements Backend using fsnotify. There is no uevent
// socket off Linux, so instead we watch the mount parent directory and
// synthesize a bind event when the mount point appears. Good enough for
// development; the daemon always re-scans the fixed mount path anyway.
type fallbackBackend struct {
	logger    *slog.Logger
	mountPath string
	watcher   *fsnotify.Watcher

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// newFallbackBackend creates a fallback backend using fsnotify.
func newFallbackBackend(logger *slog.Logger, opts Options) (*fallbackBackend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &fallbackBackend{
		logger:    logger,
		mountPath: filepath.Clean(opts.MountPath),
		watcher:   watcher,
		events:    make(chan Event, 16),
		errors:    make(chan error, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start adds the watch and launches event processing. It returns
// immediately; processing runs until the context is cancelled.
func (b *fallbackBackend) Start(ctx context.Context) error {
	parent := filepath.Dir(b.mountPath)
	if err := b.watcher.Add(parent); err != nil {
		return fmt.Errorf("failed to watch %s: %w", parent, err)
	}

	b.wg.Add(1)
	go b.processEvents(ctx)

	return nil
}

// Stop stops the backend and releases resources.
func (b *fallbackBackend) Stop() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.watcher.Close()
		b.wg.Wait()
	})
	return err
}

// Events returns the channel for receiving device events
func (b *fallbackBackend) Events() <-chan Event {
	return b.events
}

// Errors returns the channel for receiving errors
func (b *fallbackBackend) Errors() <-chan error {
	return b.errors
}

func (b *fallbackBackend) processEvents(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case fsEvent, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !fsEvent.Has(fsnotify.Create) || filepath.Clean(fsEvent.Name) != b.mountPath {
				continue
			}

			b.logger.Debug("mount point appeared, synthesizing bind", "path", fsEvent.Name)
			select {
			case b.events <- Event{
				Action:    ActionBind,
				Subsystem: SubsystemMMC,
				DevPath:   b.mountPath,
			}:
			case <-b.done:
				return
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			select {
			case b.errors <- err:
			case <-b.done:
				return
			}
		}
	}
}

// newNetlinkBackend is a stub that should never be called off Linux.
// It exists only to satisfy the compiler when monitor.go references it.
func newNetlinkBackend(_ *slog.Logger) (Backend, error) {
	return nil, fmt.Errorf("netlink backend only available on Linux")
}
