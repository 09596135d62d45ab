package api

// Port is the fixed TCP port the query API listens on. The frontend has no
// discovery mechanism; it dials this port on localhost.
const Port = 55555

// Identity reported by hello and status.
const (
	Name    = "microsdeck"
	Version = "1.0.0"
)
