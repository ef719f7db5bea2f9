// Package config holds the per-device configuration: embedded YAML parsed
// into typed sections, validated, then defaulted, and published on the bus
// as retained messages under config/<section>.
package config

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ledstack-go/errcode"
	"ledstack-go/types"
	"ledstack-go/x/mathx"
	"ledstack-go/x/strconvx"
	"ledstack-go/x/strx"
)

type Mailbox struct {
	Display int `yaml:"display"`
	Storage int `yaml:"storage"`
}

type Display struct {
	Quantum         time.Duration `yaml:"quantum"`
	DrainPerQuantum int           `yaml:"drain_per_quantum"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	ColorDepth      int           `yaml:"color_depth"`
}

type Storage struct {
	Period time.Duration `yaml:"period"`
	Root   string        `yaml:"root"`
	// Image is the host flash image path; empty keeps settings in RAM.
	Image string `yaml:"image"`
}

type Timekeeping struct {
	Period        time.Duration `yaml:"period"`
	CorrectionPPM int32         `yaml:"correction_ppm"`
	PresencePin   int           `yaml:"presence_pin"`
	ColdBoot      string        `yaml:"cold_boot"` // "HH:MM:SS"
}

type Formatter struct {
	Period time.Duration `yaml:"period"`
}

type Web struct {
	Enabled        bool          `yaml:"enabled"`
	Listen         string        `yaml:"listen"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	EnqueueTimeout time.Duration `yaml:"enqueue_timeout"`
}

type AP struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

type Heartbeat struct {
	Interval time.Duration `yaml:"interval"`
}

type Console struct {
	Enabled bool `yaml:"enabled"`
}

// Device is one board's configuration.
type Device struct {
	ID          string      `yaml:"-"`
	Mailbox     Mailbox     `yaml:"mailbox"`
	Display     Display     `yaml:"display"`
	Storage     Storage     `yaml:"storage"`
	Timekeeping Timekeeping `yaml:"timekeeping"`
	Formatter   Formatter   `yaml:"formatter"`
	Web         Web         `yaml:"web"`
	AP          AP          `yaml:"ap"`
	Heartbeat   Heartbeat   `yaml:"heartbeat"`
	Console     Console     `yaml:"console"`
}

// EmbeddedConfigLookup resolves a device id to its built-in YAML.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	s, ok := embeddedConfigs[device]
	return []byte(s), ok
}

// Load parses the device's embedded YAML, or override when it is non-empty,
// then validates and normalises it.
func Load(device string, override []byte) (*Device, error) {
	const op = "config.load"
	raw := override
	if len(raw) == 0 {
		b, ok := EmbeddedConfigLookup(device)
		if !ok {
			return nil, errcode.New(errcode.NotFound, op, "no embedded config for "+device)
		}
		raw = b
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	d.ID = device
	if err := Validate(d); err != nil {
		return nil, err
	}
	Normalize(d)
	return d, nil
}

// Parse decodes YAML strictly: unknown keys are errors.
func Parse(raw []byte) (*Device, error) {
	var d Device
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, errcode.Wrap(errcode.InvalidPayload, "config.parse", err)
	}
	return &d, nil
}

// Validate checks the configuration without changing it.
func Validate(d *Device) error {
	bad := func(msg string) error { return errcode.New(errcode.InvalidParams, "config.validate", msg) }
	switch {
	case d.Mailbox.Display < 0 || d.Mailbox.Storage < 0:
		return bad("mailbox capacities must not be negative")
	case d.Display.Quantum < 0 || d.Storage.Period < 0 || d.Formatter.Period < 0 ||
		d.Timekeeping.Period < 0 || d.Heartbeat.Interval < 0 || d.Web.EnqueueTimeout < 0:
		return bad("periods must not be negative")
	case d.Display.DrainPerQuantum < 0:
		return bad("display.drain_per_quantum must not be negative")
	case !mathx.Between(d.Display.Width, 0, 256) || !mathx.Between(d.Display.Height, 0, 128):
		return bad("display size out of range")
	case !mathx.Between(d.Timekeeping.PresencePin, 0, 28):
		return bad("timekeeping.presence_pin must be GP0..GP28")
	case !mathx.Between(d.Timekeeping.CorrectionPPM, -100000, 100000):
		return bad("timekeeping.correction_ppm out of range")
	case d.Web.Enabled && (d.Web.User == "") != (d.Web.Password == ""):
		return bad("web.user and web.password go together")
	case len(d.AP.Password) > 0 && len(d.AP.Password) < 8:
		return bad("ap.password needs at least 8 characters")
	}
	if d.Timekeeping.ColdBoot != "" {
		if _, err := ParseClock(d.Timekeeping.ColdBoot); err != nil {
			return err
		}
	}
	return nil
}

// Normalize fills defaults. Call it only after Validate.
func Normalize(d *Device) {
	if d.Mailbox.Display == 0 {
		d.Mailbox.Display = 10
	}
	if d.Mailbox.Storage == 0 {
		d.Mailbox.Storage = 10
	}
	if d.Display.Quantum == 0 {
		d.Display.Quantum = 10 * time.Millisecond
	}
	if d.Display.DrainPerQuantum == 0 {
		d.Display.DrainPerQuantum = 1
	}
	if d.Display.Width == 0 {
		d.Display.Width = 64
	}
	if d.Display.Height == 0 {
		d.Display.Height = 32
	}
	if d.Display.ColorDepth == 0 {
		d.Display.ColorDepth = 6
	}
	if d.Storage.Period == 0 {
		d.Storage.Period = time.Second
	}
	d.Storage.Root = strx.Coalesce(d.Storage.Root, "settings")
	if d.Timekeeping.Period == 0 {
		d.Timekeeping.Period = time.Second
	}
	d.Timekeeping.ColdBoot = strx.Coalesce(d.Timekeeping.ColdBoot, "12:00:00")
	if d.Formatter.Period == 0 {
		d.Formatter.Period = time.Second
	}
	d.Web.Listen = strx.Coalesce(d.Web.Listen, ":80")
	if d.Web.EnqueueTimeout == 0 {
		d.Web.EnqueueTimeout = 100 * time.Millisecond
	}
	d.AP.SSID = strx.Coalesce(d.AP.SSID, "ledStack")
	if d.Heartbeat.Interval == 0 {
		d.Heartbeat.Interval = 30 * time.Second
	}
}

// ColdBootTime is the parsed cold_boot value; Normalize guarantees it parses.
func (d *Device) ColdBootTime() types.TimeOfDay {
	t, err := ParseClock(d.Timekeeping.ColdBoot)
	if err != nil {
		return types.ColdBootTime
	}
	return t
}

// ParseClock reads "HH:MM:SS" (seconds optional) with fields in range.
func ParseClock(s string) (types.TimeOfDay, error) {
	bad := errcode.New(errcode.InvalidParams, "config.clock", "want HH:MM[:SS], got "+s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return types.TimeOfDay{}, bad
	}
	var v [3]uint8
	limits := [3]int{23, 59, 59}
	for i, p := range parts {
		n, err := strconvx.Atoi(p)
		if err != nil || !mathx.Between(n, 0, limits[i]) {
			return types.TimeOfDay{}, bad
		}
		v[i] = uint8(n)
	}
	return types.TimeOfDay{Hour: v[0], Minute: v[1], Second: v[2]}, nil
}
