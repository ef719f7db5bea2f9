package types

// ResetCause is why the main core last started executing Boot.
type ResetCause uint8

const (
	ResetPowerOn ResetCause = iota
	ResetDeepSleep
)

func (r ResetCause) String() string {
	if r == ResetDeepSleep {
		return "deep_sleep"
	}
	return "power_on"
}

// WakeCause is what ended the last deep sleep. WakeNone after a power-on.
type WakeCause uint8

const (
	WakeNone WakeCause = iota
	WakeCoprocessor
)

func (w WakeCause) String() string {
	if w == WakeCoprocessor {
		return "coprocessor"
	}
	return "none"
}
