//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"errors"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFramebufferPublishesOnDisplay(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	red := color.RGBA{R: 255, A: 255}
	fb.SetPixel(1, 1, red)
	fb.SetPixel(9, 9, red) // ignored
	if fb.At(1, 1) != (color.RGBA{}) {
		t.Fatal("pixel visible before Display")
	}
	_ = fb.Display()
	if fb.At(1, 1) != red || fb.Frames() != 1 {
		t.Fatalf("At = %v frames = %d", fb.At(1, 1), fb.Frames())
	}

	fb.SetBrightness(0)
	buf := make([]byte, 4*2*4)
	fb.CopyRGBA(buf)
	if buf[(1*4+1)*4] != 0 {
		t.Fatal("brightness 0 still lit")
	}
}

func TestFakePinFactoryIsStable(t *testing.T) {
	f := &HostPinFactory{}
	p, _ := f.ByNumber(7)
	_ = p.ConfigureInput(PullDown)
	f.Pin(7).Set(true)
	if !p.Get() || f.Pin(7).Pull() != PullDown {
		t.Fatal("factory returned a different pin")
	}
}

func TestFileFlashNORSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")
	ff, err := OpenFileFlash(path, 2*hostFlashEraseBlock)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()

	b := make([]byte, 1)
	if _, err := ff.ReadAt(b, 10); err != nil || b[0] != 0xFF {
		t.Fatalf("fresh image byte = %#x, %v", b[0], err)
	}
	if _, err := ff.WriteAt([]byte{0x0F}, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := ff.WriteAt([]byte{0xF0}, 10); err == nil {
		t.Fatal("setting bits without erase succeeded")
	}
	if err := ff.EraseBlocks(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := ff.WriteAt([]byte{0xF0}, 10); err != nil {
		t.Fatalf("write after erase: %v", err)
	}
	if err := ff.EraseBlocks(1, 2); err == nil {
		t.Fatal("erase past end accepted")
	}
}

func TestStreamPortHonoursContext(t *testing.T) {
	pr, pw := io.Pipe()
	p := NewStreamPort(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.RecvSomeContext(ctx, make([]byte, 8)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}

	go func() { _, _ = pw.Write([]byte("brightness 10\n")) }()
	var got strings.Builder
	buf := make([]byte, 4)
	for got.Len() < len("brightness 10\n") {
		n, err := p.RecvSomeContext(context.Background(), buf)
		if err != nil {
			t.Fatal(err)
		}
		got.Write(buf[:n])
	}
	if got.String() != "brightness 10\n" {
		t.Fatalf("got %q", got.String())
	}
}
