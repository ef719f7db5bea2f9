//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/tinyfs"
)

// OpenBlockDevice returns the flash region after the firmware image. The
// path argument only exists for the host build.
func OpenBlockDevice(string) (tinyfs.BlockDevice, error) {
	return machine.Flash, nil
}
