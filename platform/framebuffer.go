package platform

import (
	"image/color"
	"sync"
	"sync/atomic"
)

// Framebuffer is an in-memory drivers.Displayer. Drawing goes to a back
// buffer; Display publishes it. The simulator window and tests read the
// published frame.
type Framebuffer struct {
	mu         sync.RWMutex
	w, h       int16
	back       []color.RGBA
	front      []color.RGBA
	brightness uint8
	frames     atomic.Uint64
}

func NewFramebuffer(w, h int16) *Framebuffer {
	n := int(w) * int(h)
	return &Framebuffer{
		w: w, h: h,
		back:       make([]color.RGBA, n),
		front:      make([]color.RGBA, n),
		brightness: 255,
	}
}

func (f *Framebuffer) Size() (int16, int16) { return f.w, f.h }

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.mu.Lock()
	f.back[int(y)*int(f.w)+int(x)] = c
	f.mu.Unlock()
}

func (f *Framebuffer) Display() error {
	f.mu.Lock()
	copy(f.front, f.back)
	f.mu.Unlock()
	f.frames.Add(1)
	return nil
}

func (f *Framebuffer) SetBrightness(b uint8) {
	f.mu.Lock()
	f.brightness = b
	f.mu.Unlock()
}

func (f *Framebuffer) Brightness() uint8 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.brightness
}

// At returns the published pixel at (x, y).
func (f *Framebuffer) At(x, y int16) color.RGBA {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return color.RGBA{}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.front[int(y)*int(f.w)+int(x)]
}

// Frames counts Display calls.
func (f *Framebuffer) Frames() uint64 { return f.frames.Load() }

// CopyRGBA writes the published frame as RGBA bytes with brightness
// applied. dst must hold w*h*4 bytes.
func (f *Framebuffer) CopyRGBA(dst []byte) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	k := uint32(f.brightness)
	for i, c := range f.front {
		o := i * 4
		if o+3 >= len(dst) {
			return
		}
		dst[o] = uint8(uint32(c.R) * k / 255)
		dst[o+1] = uint8(uint32(c.G) * k / 255)
		dst[o+2] = uint8(uint32(c.B) * k / 255)
		dst[o+3] = 0xFF
	}
}
