package coproc

// Layout places the timekeeping program's words in retained memory.
type Layout struct {
	Second, Minute, Hour int32
	PrevPower            int32 // last presence sample, 1 = main power
}

// TimekeepingProgram builds the once-per-second routine: a ripple counter
// with moduli 60, 60 and 24 over the three time words, then a presence
// sample compared with the retained previous one. WAKE executes only on a
// battery to main transition.
func TimekeepingProgram(l Layout) []Instr {
	return []Instr{
		LD(R0, l.Second),
		ADDI(R0, 1),
		BL(R0, 60, "store_sec"),
		MOVI(R0, 0),
		ST(R0, l.Second),

		LD(R0, l.Minute),
		ADDI(R0, 1),
		BL(R0, 60, "store_min"),
		MOVI(R0, 0),
		ST(R0, l.Minute),

		LD(R0, l.Hour),
		ADDI(R0, 1),
		BL(R0, 24, "store_hour"),
		MOVI(R0, 0),
		LABEL("store_hour"),
		ST(R0, l.Hour),
		JUMP("sample"),

		LABEL("store_min"),
		ST(R0, l.Minute),
		JUMP("sample"),

		LABEL("store_sec"),
		ST(R0, l.Second),

		LABEL("sample"),
		RDIO(R0),
		LD(R1, l.PrevPower),
		ST(R0, l.PrevPower),
		BL(R0, 1, "done"),
		BL(R1, 1, "wake"),
		JUMP("done"),
		LABEL("wake"),
		WAKE(),
		LABEL("done"),
		HALT(),
	}
}
