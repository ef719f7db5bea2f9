package types

import "ledstack-go/x/conv"

// TimeOfDay is the sign's wall clock. Fields are stored verbatim; callers that
// need range guarantees validate before constructing one.
type TimeOfDay struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// ColdBootTime is the clock value seeded on a power-on reset.
var ColdBootTime = TimeOfDay{Hour: 12}

// Valid reports whether every field is in range (0..23, 0..59, 0..59).
func (t TimeOfDay) Valid() bool {
	return t.Hour < 24 && t.Minute < 60 && t.Second < 60
}

// String renders "HH:MM:SS".
func (t TimeOfDay) String() string {
	var buf [8]byte
	conv.Pad2(buf[0:2], t.Hour)
	buf[2] = ':'
	conv.Pad2(buf[3:5], t.Minute)
	buf[5] = ':'
	conv.Pad2(buf[6:8], t.Second)
	return string(buf[:])
}

// PowerState is derived from the presence input: HIGH = main, LOW = battery.
type PowerState uint8

const (
	PowerBattery PowerState = iota
	PowerMain
)

// PowerFromLevel maps a presence pin level to a PowerState.
func PowerFromLevel(high bool) PowerState {
	if high {
		return PowerMain
	}
	return PowerBattery
}

func (p PowerState) String() string {
	if p == PowerMain {
		return "MAIN"
	}
	return "BATTERY"
}
