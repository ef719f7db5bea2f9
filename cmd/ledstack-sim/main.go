//go:build !rp2040 && !rp2350

// Command ledstack-sim runs the sign firmware on the host: the panel is a
// framebuffer (optionally shown in a window), settings live in a flash
// image file, the console is stdin/stdout and the web front end listens
// on the configured address.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"ledstack-go/board"
	"ledstack-go/coproc"
	"ledstack-go/firmware"
	"ledstack-go/platform"
	"ledstack-go/services/config"
	"ledstack-go/x/logx"
)

var log = logx.Tag("sim")

func main() {
	cfgPath := flag.String("config", "", "YAML config overriding the built-in host config")
	flashPath := flag.String("flash", "", "flash image path (default from config; \"-\" keeps settings in RAM)")
	window := flag.Bool("window", false, "show the panel in a window")
	scale := flag.Int("scale", 8, "window pixels per LED")
	battery := flag.Bool("battery", false, "start on battery power")
	mainsAfter := flag.Duration("mains-after", 0, "restore main power after this long")
	flag.Parse()

	if err := run(*cfgPath, *flashPath, *window, *scale, *battery, *mainsAfter); err != nil {
		logx.Default().Println("sim", "error:", err.Error())
		logx.Default().Flush()
		os.Exit(1)
	}
}

func run(cfgPath, flashPath string, window bool, scale int, battery bool, mainsAfter time.Duration) error {
	var override []byte
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return err
		}
		override = b
	}
	cfg, err := config.Load("host", override)
	if err != nil {
		return err
	}

	switch flashPath {
	case "":
		flashPath = cfg.Storage.Image
	case "-":
		flashPath = ""
	}
	flash, err := platform.OpenBlockDevice(flashPath)
	if err != nil {
		return err
	}

	disp, err := platform.OpenDisplay(platform.DisplayConfig{
		Width:  int16(cfg.Display.Width),
		Height: int16(cfg.Display.Height),
	})
	if err != nil {
		return err
	}

	pins := &platform.HostPinFactory{}
	presence := pins.Pin(cfg.Timekeeping.PresencePin)
	presence.Set(!battery)

	env := firmware.Env{
		Config:  cfg,
		Display: disp,
		OpenKV:  firmware.MountKV(flash, cfg.Storage.Root),
	}
	if cfg.Console.Enabled {
		env.Serial = platform.DefaultSerial()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	m := board.New(presence, coproc.Options{
		Period:        cfg.Timekeeping.Period,
		CorrectionPPM: cfg.Timekeeping.CorrectionPPM,
	})
	go m.Run(ctx, firmware.BootFunc(env))

	if mainsAfter > 0 {
		time.AfterFunc(mainsAfter, func() {
			log.Println("main power restored")
			presence.Set(true)
		})
	}

	if window {
		fb, ok := disp.(*platform.Framebuffer)
		if !ok {
			return errNoFramebuffer
		}
		err := runWindow(fb, scale)
		cancel()
		logx.Default().Flush()
		return err
	}
	<-ctx.Done()
	logx.Default().Flush()
	return nil
}
