package types

import "ledstack-go/errcode"

// MaxTextLen is the largest text payload a request may carry, in bytes.
const MaxTextLen = 127

// Action selects what a DisplayRequest changes.
type Action uint8

const (
	ActionNone Action = iota
	SetHeaderText
	SetHeaderColor
	SetTimeText
	SetTimeColor
	SetBackgroundColor
	SetBrightness
	SetTimeOfDay
)

func (a Action) String() string {
	switch a {
	case SetHeaderText:
		return "set_header_text"
	case SetHeaderColor:
		return "set_header_color"
	case SetTimeText:
		return "set_time_text"
	case SetTimeColor:
		return "set_time_color"
	case SetBackgroundColor:
		return "set_bg_color"
	case SetBrightness:
		return "set_brightness"
	case SetTimeOfDay:
		return "set_time_of_day"
	default:
		return "none"
	}
}

// Payload is the kind of value an Action carries. Each Action maps to exactly one.
type Payload uint8

const (
	PayloadNone Payload = iota
	PayloadText
	PayloadColor
	PayloadLevel
	PayloadTime
)

// Payload returns the payload kind carried by a.
func (a Action) Payload() Payload {
	switch a {
	case SetHeaderText, SetTimeText:
		return PayloadText
	case SetHeaderColor, SetTimeColor, SetBackgroundColor:
		return PayloadColor
	case SetBrightness:
		return PayloadLevel
	case SetTimeOfDay:
		return PayloadTime
	default:
		return PayloadNone
	}
}

// Durable reports whether the storage pipeline keeps a copy of a.
// The display task forwards everything except SetTimeOfDay; of those,
// SetTimeText has no settings key and is dropped by the storage consumer.
func (a Action) Durable() bool {
	switch a {
	case SetHeaderText, SetHeaderColor, SetTimeColor, SetBackgroundColor, SetBrightness:
		return true
	default:
		return false
	}
}

// DisplayRequest is a tagged value: the fields are unexported and only the
// constructors below can build one, so the payload always matches the action.
type DisplayRequest struct {
	action Action
	text   string
	color  uint32
	level  uint8
	tod    TimeOfDay
}

func textRequest(a Action, s string) (DisplayRequest, error) {
	if len(s) > MaxTextLen {
		return DisplayRequest{}, &errcode.E{C: errcode.InvalidPayload, Op: a.String(), Msg: "text longer than 127 bytes"}
	}
	return DisplayRequest{action: a, text: s}, nil
}

// HeaderText builds a SetHeaderText request.
func HeaderText(s string) (DisplayRequest, error) { return textRequest(SetHeaderText, s) }

// TimeText builds a SetTimeText request.
func TimeText(s string) (DisplayRequest, error) { return textRequest(SetTimeText, s) }

func HeaderColor(c uint32) DisplayRequest {
	return DisplayRequest{action: SetHeaderColor, color: c}
}

func TimeColor(c uint32) DisplayRequest {
	return DisplayRequest{action: SetTimeColor, color: c}
}

func BackgroundColor(c uint32) DisplayRequest {
	return DisplayRequest{action: SetBackgroundColor, color: c}
}

func Brightness(b uint8) DisplayRequest {
	return DisplayRequest{action: SetBrightness, level: b}
}

// SetClock builds a SetTimeOfDay request. The value is passed through unchecked.
func SetClock(t TimeOfDay) DisplayRequest {
	return DisplayRequest{action: SetTimeOfDay, tod: t}
}

func (r DisplayRequest) Action() Action { return r.action }

// Valid is false only for the zero value.
func (r DisplayRequest) Valid() bool { return r.action != ActionNone }

func (r DisplayRequest) Text() (string, bool) {
	return r.text, r.action.Payload() == PayloadText
}

func (r DisplayRequest) Color() (uint32, bool) {
	return r.color, r.action.Payload() == PayloadColor
}

func (r DisplayRequest) Level() (uint8, bool) {
	return r.level, r.action.Payload() == PayloadLevel
}

func (r DisplayRequest) Time() (TimeOfDay, bool) {
	return r.tod, r.action.Payload() == PayloadTime
}

func (r DisplayRequest) String() string {
	s := r.action.String()
	switch r.action.Payload() {
	case PayloadText:
		return s + " " + quote(r.text)
	case PayloadColor:
		return s + " " + hex6(r.color)
	case PayloadLevel:
		return s + " " + itoa(int(r.level))
	case PayloadTime:
		return s + " " + r.tod.String()
	}
	return s
}
