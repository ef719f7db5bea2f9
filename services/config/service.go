package config

import (
	"time"

	"ledstack-go/bus"
	"ledstack-go/errcode"
	"ledstack-go/x/logx"
	"ledstack-go/x/mathx"
)

var log = logx.Tag("config")

const configPrefix = "config"

const (
	MinHeartbeat = time.Second
	MaxHeartbeat = time.Hour
)

// Topic returns the retained topic for a section.
func Topic(section string) bus.Topic { return bus.T(configPrefix, section) }

// Service publishes a device's configuration on the bus.
type Service struct {
	dev *Device
}

func NewService(dev *Device) *Service { return &Service{dev: dev} }

// Sections maps section names to their typed values.
func (d *Device) Sections() map[string]any {
	return map[string]any{
		"mailbox":     d.Mailbox,
		"display":     d.Display,
		"storage":     d.Storage,
		"timekeeping": d.Timekeeping,
		"formatter":   d.Formatter,
		"web":         d.Web,
		"ap":          d.AP,
		"heartbeat":   d.Heartbeat,
		"console":     d.Console,
	}
}

// Start publishes every section as a retained message.
func (s *Service) Start(conn *bus.Connection) {
	for name, v := range s.dev.Sections() {
		conn.Publish(conn.NewMessage(Topic(name), v, true))
	}
	log.Println("published config for", s.dev.ID)
}

// UpdateHeartbeat replaces the heartbeat section live. The interval is
// held to [MinHeartbeat, MaxHeartbeat].
func (s *Service) UpdateHeartbeat(conn *bus.Connection, hb Heartbeat) error {
	if hb.Interval <= 0 {
		return errInterval
	}
	hb.Interval = mathx.Clamp(hb.Interval, MinHeartbeat, MaxHeartbeat)
	s.dev.Heartbeat = hb
	conn.Publish(conn.NewMessage(Topic("heartbeat"), hb, true))
	return nil
}

var errInterval = errcode.New(errcode.InvalidParams, "config.heartbeat", "interval must be positive")
