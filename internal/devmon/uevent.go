package devmon

import (
	"bytes"
	"fmt"
	"strings"
)

// udev rebroadcasts events on the same netlink protocol with its own framing,
// marked by this magic prefix. We only want raw kernel messages.
const libudevMagic = "libudev\x00"

// parseUevent decodes one kernel uevent datagram.
//
// The wire format is "action@devpath" followed by NUL-separated KEY=VALUE
// pairs, e.g.
//
//	bind@/devices/.../mmc0:0001\0ACTION=bind\0DEVPATH=...\0SUBSYSTEM=mmc\0...
func parseUevent(data []byte) (Event, error) {
	if len(data) == 0 {
		return Event{}, fmt.Errorf("empty uevent datagram")
	}
	if bytes.HasPrefix(data, []byte(libudevMagic)) {
		return Event{}, fmt.Errorf("udev-originated message, not a kernel uevent")
	}

	fields := bytes.Split(data, []byte{0})

	header := string(fields[0])
	if !strings.Contains(header, "@") {
		return Event{}, fmt.Errorf("malformed uevent header %q", header)
	}

	var ev Event
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(string(field), "=")
		if !ok {
			continue
		}
		switch key {
		case "ACTION":
			ev.Action = value
		case "DEVPATH":
			ev.DevPath = value
		case "SUBSYSTEM":
			ev.Subsystem = value
		}
	}

	if ev.Action == "" {
		return Event{}, fmt.Errorf("uevent without ACTION: %q", header)
	}
	return ev, nil
}
