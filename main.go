//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"ledstack-go/board"
	"ledstack-go/coproc"
	"ledstack-go/errcode"
	"ledstack-go/fault"
	"ledstack-go/firmware"
	"ledstack-go/platform"
	"ledstack-go/services/config"
	"ledstack-go/x/logx"
)

const deviceID = "ledstack-rp2"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	port := platform.DefaultSerial()
	logx.Default().SetOutput(port)
	logx.Default().Println("main", "boot", deviceID)

	cfg, err := config.Load(deviceID, nil)
	if err != nil {
		fault.Halt("config", err)
	}
	disp, err := platform.OpenDisplay(platform.DisplayConfig{
		Width:      int16(cfg.Display.Width),
		Height:     int16(cfg.Display.Height),
		ColorDepth: uint16(cfg.Display.ColorDepth),
	})
	if err != nil {
		fault.Halt("display", err)
	}
	presence, ok := platform.DefaultPinFactory().ByNumber(cfg.Timekeeping.PresencePin)
	if !ok {
		fault.Halt("presence", errcode.NotFound)
	}
	flash, err := platform.OpenBlockDevice("")
	if err != nil {
		fault.Halt("flash", err)
	}

	env := firmware.Env{
		Config:  cfg,
		Display: disp,
		OpenKV:  firmware.MountKV(flash, cfg.Storage.Root),
	}
	if cfg.Console.Enabled {
		env.Serial = port
	}

	m := board.New(presence, coproc.Options{
		Period:        cfg.Timekeeping.Period,
		CorrectionPPM: cfg.Timekeeping.CorrectionPPM,
	})
	m.Run(context.Background(), firmware.BootFunc(env))
}
