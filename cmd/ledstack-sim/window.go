//go:build !rp2040 && !rp2350

package main

import "ledstack-go/errcode"

var errNoFramebuffer = errcode.New(errcode.Error, "sim.window", "display is not a framebuffer")
