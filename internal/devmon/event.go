package devmon

// Kernel uevent actions we care about. Bind is the one action that
// coincides with the device's filesystem being ready to read; Add fires
// before the partition is usable.
const (
	ActionAdd    = "add"
	ActionBind   = "bind"
	ActionRemove = "remove"
	ActionChange = "change"
	ActionUnbind = "unbind"
)

// SubsystemMMC is the kernel subsystem for SD/MMC card readers.
const SubsystemMMC = "mmc"

// Event is one kernel device event.
type Event struct {
	// Action is the uevent action (add, bind, remove, ...).
	Action string

	// Subsystem is the kernel subsystem the device belongs to.
	Subsystem string

	// DevPath is the kernel device path, for logging only. The reconciler
	// always re-reads the fixed mount point regardless of which device
	// fired.
	DevPath string
}
