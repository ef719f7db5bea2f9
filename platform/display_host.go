//go:build !rp2040 && !rp2350

package platform

import "tinygo.org/x/drivers"

// OpenDisplay returns a framebuffer the size of the configured panel.
func OpenDisplay(cfg DisplayConfig) (drivers.Displayer, error) {
	cfg = cfg.withDefaults()
	return NewFramebuffer(cfg.Width, cfg.Height), nil
}
