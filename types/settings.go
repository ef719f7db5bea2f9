package types

// DisplaySettings is the durable subset of the presentation state.
type DisplaySettings struct {
	Brightness  uint8
	HeaderColor uint32
	TimeColor   uint32
	BgColor     uint32
	HeaderText  string
}

const (
	DefaultBrightness  uint8  = 255
	DefaultHeaderColor uint32 = 0x0000FF
	DefaultTimeColor   uint32 = 0xFFFFFF
	DefaultBgColor     uint32 = 0x000000
	DefaultHeaderText         = "ledStack"
)

// DefaultSettings returns the values used for any key missing from the store.
func DefaultSettings() DisplaySettings {
	return DisplaySettings{
		Brightness:  DefaultBrightness,
		HeaderColor: DefaultHeaderColor,
		TimeColor:   DefaultTimeColor,
		BgColor:     DefaultBgColor,
		HeaderText:  DefaultHeaderText,
	}
}

// Requests expands s into the request sequence that reproduces it on a presenter.
func (s DisplaySettings) Requests() []DisplayRequest {
	hdr, err := HeaderText(s.HeaderText)
	if err != nil {
		hdr, _ = HeaderText(s.HeaderText[:MaxTextLen])
	}
	return []DisplayRequest{
		Brightness(s.Brightness),
		hdr,
		HeaderColor(s.HeaderColor),
		TimeColor(s.TimeColor),
		BackgroundColor(s.BgColor),
	}
}
