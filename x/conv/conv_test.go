package conv

import "testing"

func TestPad2(t *testing.T) {
	cases := map[uint8]string{0: "00", 7: "07", 12: "12", 59: "59", 123: "23"}
	for in, want := range cases {
		var b [2]byte
		Pad2(b[:], in)
		if string(b[:]) != want {
			t.Errorf("Pad2(%d) = %q, want %q", in, b[:], want)
		}
	}
}

func TestItoaUtoaHex(t *testing.T) {
	var buf [20]byte
	if got := string(Itoa(buf[:], -42)); got != "-42" {
		t.Errorf("Itoa(-42) = %q", got)
	}
	if got := string(Utoa(buf[:], 255)); got != "255" {
		t.Errorf("Utoa(255) = %q", got)
	}
	var hb [8]byte
	if got := string(U32Hex(hb[:], 0x0000FF)); got != "000000FF" {
		t.Errorf("U32Hex = %q", got)
	}
}
