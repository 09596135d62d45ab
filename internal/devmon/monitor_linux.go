//go:build linux

package devmon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"
)

// ueventBufSize is comfortably above the kernel's uevent payload limit.
const ueventBufSize = 8 * 1024

// netlinkBackend implements Backend on a raw NETLINK_KOBJECT_UEVENT socket.
// Loss of the socket is unrecoverable: the error is surfaced and the caller
// is expected to exit so the supervisor restarts the process.
type netlinkBackend struct {
	logger *slog.Logger
	fd     int

	events chan Event
	errors chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// newNetlinkBackend opens and binds the uevent socket.
func newNetlinkBackend(logger *slog.Logger) (*netlinkBackend, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("open uevent socket: %w", err)
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1, // kernel broadcast group
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind uevent socket: %w", err)
	}

	return &netlinkBackend{
		logger: logger,
		fd:     fd,
		events: make(chan Event, 16),
		errors: make(chan error, 1),
		closed: make(chan struct{}),
	}, nil
}

// Start launches the read loop. It returns immediately; the loop runs until
// the context is cancelled or the socket dies.
func (b *netlinkBackend) Start(ctx context.Context) error {
	go b.readLoop()

	go func() {
		select {
		case <-ctx.Done():
			_ = b.Stop()
		case <-b.closed:
		}
	}()

	return nil
}

// Stop closes the socket, which unblocks the read loop.
func (b *netlinkBackend) Stop() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.closed)
		err = unix.Close(b.fd)
	})
	return err
}

// Events returns the channel for receiving device events
func (b *netlinkBackend) Events() <-chan Event {
	return b.events
}

// Errors returns the channel for receiving errors
func (b *netlinkBackend) Errors() <-chan error {
	return b.errors
}

func (b *netlinkBackend) readLoop() {
	buf := make([]byte, ueventBufSize)
	for {
		n, _, err := unix.Recvfrom(b.fd, buf, 0)
		if err != nil {
			select {
			case <-b.closed:
				// Shutdown path, not a failure.
			default:
				b.errors <- fmt.Errorf("uevent socket read: %w", err)
			}
			return
		}

		ev, err := parseUevent(buf[:n])
		if err != nil {
			// udev chatter and malformed frames are routine on this
			// socket; drop them quietly.
			b.logger.Debug("ignoring uevent datagram", "error", err)
			continue
		}

		if ev.Subsystem != SubsystemMMC {
			continue
		}

		select {
		case b.events <- ev:
		case <-b.closed:
			return
		}
	}
}

// newFallbackBackend is a stub that should never be called on Linux.
// It exists only to satisfy the compiler when monitor.go references it.
func newFallbackBackend(_ *slog.Logger, _ Options) (Backend, error) {
	return nil, fmt.Errorf("fallback backend not available on Linux")
}
