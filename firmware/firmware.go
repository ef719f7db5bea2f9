// Package firmware is the boot sequence of the sign. It wires the mailboxes,
// the settings store, the timekeeper, the panel and the request adapters,
// then starts the long-running tasks under the boot context.
package firmware

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"ledstack-go/board"
	"ledstack-go/bus"
	"ledstack-go/coproc"
	"ledstack-go/errcode"
	"ledstack-go/fault"
	"ledstack-go/kvstore"
	"ledstack-go/mailbox"
	"ledstack-go/platform"
	"ledstack-go/rtcmem"
	"ledstack-go/services/config"
	"ledstack-go/services/console"
	"ledstack-go/services/display"
	"ledstack-go/services/heartbeat"
	"ledstack-go/services/panel"
	"ledstack-go/services/storage"
	"ledstack-go/services/timefmt"
	"ledstack-go/services/timekeeper"
	"ledstack-go/types"
	"ledstack-go/x/logx"
)

var log = logx.Tag("boot")

// Board is the power domain a boot runs on.
type Board interface {
	timekeeper.Platform
	Memory() *rtcmem.Memory
	Coprocessor() *coproc.Unit
	Presence() platform.GPIOPin
}

// Env is what the entry point hands every boot. Its members outlive a
// single boot.
type Env struct {
	Config  *config.Device
	Display drivers.Displayer
	// OpenKV returns the durable store; nil or an error selects RAM.
	OpenKV func() (kvstore.KV, error)
	// Serial carries the console; nil disables it.
	Serial platform.SerialPort
}

// System is one running boot.
type System struct {
	Config     *config.Device
	DisplayBox *mailbox.Box[types.DisplayRequest]
	StorageBox *mailbox.Box[types.DisplayRequest]
	Store      *storage.Store
	Keeper     *timekeeper.Keeper
	Panel      *panel.Panel
	Display    *display.Task
	Pipeline   *storage.Pipeline
	Formatter  *timefmt.Task
	Heartbeat  *heartbeat.Service
	Bus        *bus.Bus
	// StoreDegraded is set when settings live in RAM for this boot.
	StoreDegraded bool
}

// Start runs the setup steps in order and launches the tasks. When the
// supply is on battery it enters deep sleep instead and, on success, does
// not return.
func Start(ctx context.Context, b Board, env Env) (*System, error) {
	cfg := env.Config
	sys := &System{Config: cfg}

	var err error
	if sys.DisplayBox, sys.StorageBox, err = newMailboxes(cfg.Mailbox); err != nil {
		return nil, err
	}

	kv, degraded := openKV(env.OpenKV)
	sys.Store, sys.StoreDegraded = storage.NewStore(kv), degraded

	sys.Keeper = timekeeper.New(b.Memory(), b.Coprocessor(), b.Presence(), b, timekeeper.Config{
		ColdBoot: cfg.ColdBootTime(),
		Tick:     cfg.Timekeeping.Period,
	})
	if err := sys.Keeper.Initialize(); err != nil {
		return nil, err
	}
	if sys.Keeper.WasWokenByCoprocessor() {
		log.Println("woken by coprocessor, main power restored at", sys.Keeper.CurrentTime().String())
	} else {
		log.Println("reset", b.ResetCause().String(), "wake", b.WakeCause().String())
	}

	if sys.Keeper.PowerStatus() == types.PowerBattery {
		return nil, sys.Keeper.EnterDeepSleep()
	}

	sys.Panel = panel.New(env.Display)
	sys.Display = display.New(sys.DisplayBox, sys.Panel, sys.Keeper,
		sys.StorageBox.Producer("display", mailbox.BestEffort),
		display.Config{Quantum: cfg.Display.Quantum, DrainPerQuantum: cfg.Display.DrainPerQuantum})
	sys.Display.ApplySettings(sys.Store.LoadSettings())
	if ssid, _, ok := sys.Store.LoadWiFi(); ok {
		log.Println("wifi credentials stored for", ssid)
	} else {
		log.Println("no stored wifi, access point", cfg.AP.SSID)
	}

	sys.Bus = bus.NewBus(8)
	cfgConn := sys.Bus.NewConnection("config")
	cfgSvc := config.NewService(cfg)
	cfgSvc.Start(cfgConn)

	startWeb(ctx, sys)
	if cfg.Console.Enabled && env.Serial != nil {
		con := console.New(sys.DisplayBox.Producer("console", mailbox.Block), sys.Keeper, sys.Store, console.Hooks{
			SetHeartbeat: func(d time.Duration) error {
				return cfgSvc.UpdateHeartbeat(cfgConn, config.Heartbeat{Interval: d})
			},
		})
		go func() {
			if err := con.Run(ctx, env.Serial); err != nil {
				log.Println("console stopped:", err.Error())
			}
		}()
	}

	sys.Pipeline = storage.NewPipeline(sys.StorageBox, sys.Store, cfg.Storage.Period)
	sys.Formatter = timefmt.New(sys.Keeper, sys.DisplayBox.Producer("formatter", mailbox.BestEffort), cfg.Formatter.Period)
	sys.Heartbeat = heartbeat.New(sys.Keeper, sys.DisplayBox, sys.StorageBox)

	go sys.Display.Run(ctx)
	go sys.Pipeline.Run(ctx)
	go func() {
		if err := sys.Formatter.Run(ctx); err != nil {
			fault.Halt("formatter", err)
		}
	}()
	sys.Heartbeat.Start(ctx, sys.Bus.NewConnection("heartbeat"))
	go sys.Keeper.Run(ctx)
	go logx.Default().Run(ctx)

	log.Println("up, settings", storeKind(degraded))
	return sys, nil
}

// Boot is Start for a board boot: any setup failure halts the core, and the
// call returns when ctx ends.
func Boot(ctx context.Context, b Board, env Env) {
	if _, err := Start(ctx, b, env); err != nil {
		fault.Halt("boot", err)
	}
	<-ctx.Done()
}

// BootFunc adapts Boot to the machine's boot hook.
func BootFunc(env Env) board.BootFunc {
	return func(ctx context.Context, m *board.Machine) { Boot(ctx, m, env) }
}

func newMailboxes(c config.Mailbox) (disp, store *mailbox.Box[types.DisplayRequest], err error) {
	if c.Display < 1 || c.Storage < 1 {
		return nil, nil, errcode.New(errcode.InvalidParams, "boot.mailboxes", "capacity must be at least 1")
	}
	return mailbox.New[types.DisplayRequest]("display", c.Display),
		mailbox.New[types.DisplayRequest]("storage", c.Storage), nil
}

func openKV(open func() (kvstore.KV, error)) (kvstore.KV, bool) {
	if open == nil {
		return kvstore.NewMemory(), true
	}
	kv, err := open()
	if err != nil {
		log.Println("settings store unavailable, using RAM:", err.Error())
		return kvstore.NewMemory(), true
	}
	return kv, false
}

func storeKind(degraded bool) string {
	if degraded {
		return "in RAM"
	}
	return "durable"
}
