package config

// Built-in device configurations, keyed by device id.

const cfgRP2 = `
mailbox:
  display: 10
  storage: 10
display:
  quantum: 10ms
  drain_per_quantum: 1
  width: 64
  height: 32
  color_depth: 6
storage:
  period: 1s
  root: settings
timekeeping:
  period: 1s
  correction_ppm: 0
  presence_pin: 15
  cold_boot: "12:00:00"
formatter:
  period: 1s
web:
  enabled: false
ap:
  ssid: ledStack
  password: ledstack123
heartbeat:
  interval: 60s
console:
  enabled: true
`

const cfgHost = `
mailbox:
  display: 10
  storage: 10
display:
  quantum: 10ms
  width: 64
  height: 32
storage:
  period: 1s
  root: settings
  image: ledstack.flash
timekeeping:
  period: 1s
  presence_pin: 15
formatter:
  period: 1s
web:
  enabled: true
  listen: 127.0.0.1:8080
  user: admin
  password: ledstack
  enqueue_timeout: 100ms
heartbeat:
  interval: 10s
console:
  enabled: true
`

var embeddedConfigs = map[string]string{
	"ledstack-rp2": cfgRP2,
	"host":         cfgHost,
}
