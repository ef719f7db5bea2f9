package types

import "ledstack-go/x/conv"

func itoa(i int) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], int64(i)))
}

func hex6(c uint32) string {
	var buf [8]byte
	return "0x" + string(conv.U32Hex(buf[:], c)[2:])
}

func quote(s string) string {
	return "\"" + s + "\""
}
