package types

import (
	"strings"

	"ledstack-go/errcode"
	"ledstack-go/x/strconvx"
)

// Field parsers shared by the request adapters.

func invalid(field, value string) error {
	return errcode.New(errcode.InvalidParams, "parse", "bad "+field+" \""+value+"\"")
}

// ParseColor reads "RRGGBB", with or without a leading '#'.
func ParseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return 0, invalid("color", s)
	}
	v, err := strconvx.ParseUint(h, 16, 32)
	if err != nil {
		return 0, invalid("color", s)
	}
	return uint32(v), nil
}

// ParseBrightness reads a decimal 0..255.
func ParseBrightness(s string) (uint8, error) {
	v, err := strconvx.ParseUint(s, 10, 8)
	if err != nil {
		return 0, invalid("brightness", s)
	}
	return uint8(v), nil
}

// ParsePower maps "on" to full brightness and "off" to zero.
func ParsePower(s string) (uint8, error) {
	switch strings.ToLower(s) {
	case "on":
		return 255, nil
	case "off":
		return 0, nil
	}
	return 0, invalid("power", s)
}

// ParseTime reads hour, minute and second fields and range checks them.
func ParseTime(h, m, sec string) (TimeOfDay, error) {
	var v [3]uint8
	for i, f := range [3]struct {
		name, s string
		max     uint64
	}{{"hour", h, 23}, {"minute", m, 59}, {"second", sec, 59}} {
		n, err := strconvx.ParseUint(f.s, 10, 8)
		if err != nil || n > f.max {
			return TimeOfDay{}, invalid(f.name, f.s)
		}
		v[i] = uint8(n)
	}
	return TimeOfDay{Hour: v[0], Minute: v[1], Second: v[2]}, nil
}
