//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hub75"
)

// HUB75 wiring on the sign's carrier board.
const (
	pinLatch machine.Pin = 11
	pinOE    machine.Pin = 12
	pinA     machine.Pin = 6
	pinB     machine.Pin = 10
	pinC     machine.Pin = 18
	pinD     machine.Pin = 20
)

// OpenDisplay brings up the HUB75 matrix on SPI0.
func OpenDisplay(cfg DisplayConfig) (drivers.Displayer, error) {
	cfg = cfg.withDefaults()
	if err := machine.SPI0.Configure(machine.SPIConfig{Frequency: 8_000_000, Mode: 0}); err != nil {
		return nil, err
	}
	d := hub75.New(machine.SPI0, pinLatch, pinOE, pinA, pinB, pinC, pinD)
	d.Configure(hub75.Config{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ColorDepth: cfg.ColorDepth,
		RowPattern: cfg.RowPattern,
	})
	d.ClearDisplay()
	return &d, nil
}
