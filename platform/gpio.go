// Package platform binds the firmware to board hardware: GPIO, the sign's
// display, the flash block device and the serial port. Each concern has a
// host file and an RP2 file selected by build tags.
package platform

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is the pin surface the firmware needs.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by board GP number.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}
