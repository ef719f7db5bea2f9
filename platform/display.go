package platform

// DisplayConfig sizes the sign panel.
type DisplayConfig struct {
	Width      int16
	Height     int16
	ColorDepth uint16
	RowPattern int16
}

func (c DisplayConfig) withDefaults() DisplayConfig {
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 32
	}
	if c.ColorDepth == 0 {
		c.ColorDepth = 6
	}
	if c.RowPattern <= 0 {
		c.RowPattern = c.Height / 2
	}
	return c
}
