package conv

// Pad2 writes v as two zero-padded decimal digits into dst[0:2].
// Values above 99 keep only the last two digits.
func Pad2(dst []byte, v uint8) {
	if len(dst) < 2 {
		return
	}
	dst[0] = byte('0' + (v/10)%10)
	dst[1] = byte('0' + v%10)
}
