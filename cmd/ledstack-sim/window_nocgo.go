//go:build !rp2040 && !rp2350 && !cgo

package main

import (
	"ledstack-go/errcode"
	"ledstack-go/platform"
)

func runWindow(*platform.Framebuffer, int) error {
	return errcode.New(errcode.Error, "sim.window", "built without cgo; no window support")
}
