package scanner

import (
	"os"
	"strings"
)

// Sysfs paths for the card slot. mmcblk0 is the device's one microSD slot.
const (
	sysBlockPath = "/sys/block/mmcblk0"
	sysCIDPath   = "/sys/block/mmcblk0/device/cid"
)

// IsCardInserted reports whether a card is physically present in the slot.
func IsCardInserted() bool {
	return cardPresent(sysBlockPath)
}

// CardCID reads the raw hardware card identifier from sysfs. It is a
// diagnostic read only: reconciliation identifies cards by the content id
// Steam writes to the filesystem, not by hardware identity.
// See https://www.cameramemoryspeed.com/sd-memory-card-faq/reading-sd-card-cid-serial-psn-internal-numbers/
func CardCID() (string, error) {
	return readCID(sysCIDPath)
}

func cardPresent(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readCID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
