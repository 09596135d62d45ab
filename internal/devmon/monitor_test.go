package devmon

import (
	"io"
	"log/slog"
	"runtime"
	"testing"
)

// Both backend constructors must exist on every platform so the untagged
// monitor code links; the one for the other platform is a stub that refuses.
func TestInactivePlatformConstructorRefuses(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if runtime.GOOS == "linux" {
		if _, err := newFallbackBackend(logger, Options{MountPath: "/tmp/card"}); err == nil {
			t.Fatal("fallback constructor did not refuse on linux")
		}
	} else {
		if _, err := newNetlinkBackend(logger); err == nil {
			t.Fatal("netlink constructor did not refuse off linux")
		}
	}
}
