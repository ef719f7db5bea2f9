// Package panel renders the sign: a header line in a small font over the
// time in a large one, on a solid background.
package panel

import (
	"image/color"
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"ledstack-go/x/logx"
	"ledstack-go/x/mathx"
)

var log = logx.Tag("panel")

// Presenter is what the display task drives. Setters only record state;
// Refresh does the bounded drawing work.
type Presenter interface {
	SetHeaderText(s string)
	SetHeaderColor(c uint32)
	SetTimeText(s string)
	SetTimeColor(c uint32)
	SetBackgroundColor(c uint32)
	SetBrightness(b uint8)
	Refresh()
}

// dimmer is implemented by displays with a native brightness control.
type dimmer interface {
	SetBrightness(uint8)
}

// State is the presentation state a Panel draws.
type State struct {
	HeaderText  string
	HeaderColor uint32
	TimeText    string
	TimeColor   uint32
	BgColor     uint32
	Brightness  uint8
}

type Panel struct {
	d          drivers.Displayer
	dim        dimmer
	headerFont tinyfont.Fonter
	timeFont   tinyfont.Fonter

	mu      sync.Mutex
	st      State
	dirty   bool
	lastDim int // -1 until the display's brightness is first set

	redraws atomic.Uint32
	frames  atomic.Uint32
}

// New binds a panel to a display. The initial state is blank at full
// brightness until settings are applied.
func New(d drivers.Displayer) *Panel {
	p := &Panel{
		d:          d,
		headerFont: &tinyfont.TomThumb,
		timeFont:   &freemono.Bold9pt7b,
		st:         State{Brightness: 255, HeaderColor: 0xFFFFFF, TimeColor: 0xFFFFFF},
		dirty:      true,
		lastDim:    -1,
	}
	if dm, ok := d.(dimmer); ok {
		p.dim = dm
	}
	return p
}

func (p *Panel) update(fn func(*State)) {
	p.mu.Lock()
	before := p.st
	fn(&p.st)
	if p.st != before {
		p.dirty = true
	}
	p.mu.Unlock()
}

func (p *Panel) SetHeaderText(s string)      { p.update(func(st *State) { st.HeaderText = s }) }
func (p *Panel) SetHeaderColor(c uint32)     { p.update(func(st *State) { st.HeaderColor = c }) }
func (p *Panel) SetTimeText(s string)        { p.update(func(st *State) { st.TimeText = s }) }
func (p *Panel) SetTimeColor(c uint32)       { p.update(func(st *State) { st.TimeColor = c }) }
func (p *Panel) SetBackgroundColor(c uint32) { p.update(func(st *State) { st.BgColor = c }) }
func (p *Panel) SetBrightness(b uint8)       { p.update(func(st *State) { st.Brightness = b }) }

// State returns a copy of the current presentation state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st
}

// Refresh redraws the frame when something changed, then pushes the
// frame to the display. Multiplexed matrices need the push every tick.
func (p *Panel) Refresh() {
	p.mu.Lock()
	st, dirty := p.st, p.dirty
	p.dirty = false
	p.mu.Unlock()

	if dirty {
		p.draw(st)
		p.redraws.Add(1)
	}
	if err := p.d.Display(); err != nil {
		log.Println("display push failed:", err)
	}
	p.frames.Add(1)
}

func (p *Panel) draw(st State) {
	scale := st.Brightness
	if p.dim != nil {
		if int(st.Brightness) != p.lastDim {
			p.dim.SetBrightness(st.Brightness)
			p.lastDim = int(st.Brightness)
		}
		scale = 255
	}

	w, h := p.d.Size()
	bg := RGBA(st.BgColor, scale)
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			p.d.SetPixel(x, y, bg)
		}
	}

	// TomThumb is 6 px tall; its baseline sits 5 px below the top.
	if st.HeaderText != "" {
		x := centre(w, p.headerFont, st.HeaderText)
		tinyfont.WriteLine(p.d, p.headerFont, x, 6, st.HeaderText, RGBA(st.HeaderColor, scale))
	}
	if st.TimeText != "" {
		x := centre(w, p.timeFont, st.TimeText)
		tinyfont.WriteLine(p.d, p.timeFont, x, h-4, st.TimeText, RGBA(st.TimeColor, scale))
	}
}

func centre(w int16, f tinyfont.Fonter, s string) int16 {
	tw, _ := tinyfont.LineWidth(f, s)
	x := (int32(w) - int32(tw)) / 2
	if x < 0 {
		x = 0
	}
	return int16(x)
}

// RGBA converts 0xRRGGBB to a colour scaled by brightness/255.
func RGBA(c uint32, brightness uint8) color.RGBA {
	k := uint16(brightness)
	return color.RGBA{
		R: uint8(mathx.ScaleU8(uint8(c>>16), k)),
		G: uint8(mathx.ScaleU8(uint8(c>>8), k)),
		B: uint8(mathx.ScaleU8(uint8(c), k)),
		A: 0xFF,
	}
}

// Counts returns redraws and display pushes since New.
func (p *Panel) Counts() (redraws, frames uint32) {
	return p.redraws.Load(), p.frames.Load()
}
