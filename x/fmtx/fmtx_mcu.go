//go:build rp2040 || rp2350

package fmtx

import "ledstack-go/x/strconvx"

// Sprint is a small subset of fmt.Sprint: operands are space-joined and
// unknown types render as "<?>". It keeps fmt out of the MCU image.
func Sprint(a ...any) string {
	var b []byte
	for i, v := range a {
		if i > 0 {
			b = append(b, ' ')
		}
		switch x := v.(type) {
		case string:
			b = append(b, x...)
		case int:
			b = append(b, strconvx.Itoa(x)...)
		case int8:
			b = append(b, strconvx.Itoa(int(x))...)
		case int16:
			b = append(b, strconvx.Itoa(int(x))...)
		case uint:
			b = append(b, strconvx.FormatUint(uint64(x), 10)...)
		case float32, float64:
			b = append(b, "<float>"...)
		case nil:
			b = append(b, "<nil>"...)
		default:
			b = append(b, "<?>"...)
		}
	}
	return string(b)
}
