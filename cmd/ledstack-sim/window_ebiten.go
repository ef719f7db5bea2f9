//go:build !rp2040 && !rp2350 && cgo

package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"ledstack-go/platform"
)

// runWindow shows fb until the window closes.
func runWindow(fb *platform.Framebuffer, scale int) error {
	w, h := fb.Size()
	if scale < 1 {
		scale = 1
	}
	g := &signGame{fb: fb, w: int(w), h: int(h), pix: make([]byte, int(w)*int(h)*4)}
	ebiten.SetWindowTitle("ledStack")
	ebiten.SetWindowSize(g.w*scale, g.h*scale)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

type signGame struct {
	fb   *platform.Framebuffer
	w, h int
	pix  []byte
	img  *ebiten.Image
}

func (g *signGame) Update() error { return nil }

func (g *signGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.w, g.h)
	}
	g.fb.CopyRGBA(g.pix)
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *signGame) Layout(int, int) (int, int) { return g.w, g.h }
