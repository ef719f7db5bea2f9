package mathx

// ScaleU8 maps v in [0,255] onto [0,outMax] rounding to nearest.
// A non-zero v never maps to zero while outMax is non-zero.
func ScaleU8(v uint8, outMax uint16) uint16 {
	if v == 0 || outMax == 0 {
		return 0
	}
	r := (uint32(v)*uint32(outMax) + 127) / 255
	if r == 0 {
		r = 1
	}
	return uint16(r)
}
