// Package timekeeper is the main core's authority over wall-clock time and
// power status. The clock lives in retained memory and is advanced by the
// coprocessor; the keeper seeds it on cold start, reads and overwrites it,
// samples the presence input and drives sleep entry.
package timekeeper

import (
	"context"
	"time"

	"ledstack-go/coproc"
	"ledstack-go/errcode"
	"ledstack-go/platform"
	"ledstack-go/rtcmem"
	"ledstack-go/types"
	"ledstack-go/x/logx"
)

var log = logx.Tag("timekeeper")

// Retained memory words owned by the keeper.
const (
	wordSecond = iota
	wordMinute
	wordHour
	wordPrevPower

	// RetainedWords is the retained memory the keeper needs.
	RetainedWords
)

var layout = coproc.Layout{
	Second:    wordSecond,
	Minute:    wordMinute,
	Hour:      wordHour,
	PrevPower: wordPrevPower,
}

// Platform is the slice of the power domain the keeper drives.
type Platform interface {
	ResetCause() types.ResetCause
	WakeCause() types.WakeCause
	// Suspend enters deep sleep. It does not return on success.
	Suspend() error
}

// Loader is the coprocessor program memory.
type Loader interface {
	Load(src []coproc.Instr) error
}

type Config struct {
	ColdBoot types.TimeOfDay
	// Tick is the fallback ripple period used when the coprocessor could
	// not be loaded.
	Tick time.Duration
}

type Keeper struct {
	mem      *rtcmem.Memory
	unit     Loader
	presence platform.GPIOPin
	plat     Platform
	logs     *logx.Logger
	cfg      Config
	degraded bool
}

func New(mem *rtcmem.Memory, unit Loader, presence platform.GPIOPin, plat Platform, cfg Config) *Keeper {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &Keeper{
		mem:      mem,
		unit:     unit,
		presence: presence,
		plat:     plat,
		logs:     logx.Default(),
		cfg:      cfg,
	}
}

// Initialize seeds the clock on a power-on reset, configures the presence
// input and loads the coprocessor program. A load failure is not fatal:
// the keeper falls back to ticking the clock itself while awake.
func (k *Keeper) Initialize() error {
	if err := k.presence.ConfigureInput(platform.PullDown); err != nil {
		return errcode.Wrap(errcode.Error, "timekeeper.init", err)
	}
	if k.plat.ResetCause() == types.ResetPowerOn {
		k.write(k.cfg.ColdBoot)
		k.mem.Store(wordPrevPower, uint32(k.PowerStatus()))
		log.Println("cold start, clock seeded to", k.cfg.ColdBoot)
	}
	if err := k.unit.Load(coproc.TimekeepingProgram(layout)); err != nil {
		k.degraded = true
		log.Println("coprocessor load failed, keeping time on main core:", err)
	}
	return nil
}

// Degraded reports whether the coprocessor program is absent.
func (k *Keeper) Degraded() bool { return k.degraded }

// holder is implemented by a coprocessor that can pause between
// activations.
type holder interface {
	Hold(fn func())
}

// exclusive runs fn outside any coprocessor activation.
func (k *Keeper) exclusive(fn func()) {
	if h, ok := k.unit.(holder); ok {
		h.Hold(fn)
		return
	}
	fn()
}

// CurrentTime reads the retained clock between activations.
func (k *Keeper) CurrentTime() (t types.TimeOfDay) {
	k.exclusive(func() {
		t = types.TimeOfDay{
			Hour:   uint8(k.mem.Load(wordHour)),
			Minute: uint8(k.mem.Load(wordMinute)),
			Second: uint8(k.mem.Load(wordSecond)),
		}
	})
	return t
}

// SetTime overwrites the clock verbatim. Range checks belong to whoever
// accepted the value from outside.
func (k *Keeper) SetTime(h, m, s uint8) {
	k.write(types.TimeOfDay{Hour: h, Minute: m, Second: s})
}

func (k *Keeper) write(t types.TimeOfDay) {
	k.exclusive(func() {
		k.mem.Store(wordHour, uint32(t.Hour))
		k.mem.Store(wordMinute, uint32(t.Minute))
		k.mem.Store(wordSecond, uint32(t.Second))
	})
}

// PowerStatus samples the presence input directly.
func (k *Keeper) PowerStatus() types.PowerState {
	return types.PowerFromLevel(k.presence.Get())
}

// WasWokenByCoprocessor is true only when this boot is a resume caused by
// the coprocessor's wake.
func (k *Keeper) WasWokenByCoprocessor() bool {
	return k.plat.ResetCause() == types.ResetDeepSleep && k.plat.WakeCause() == types.WakeCoprocessor
}

// EnterDeepSleep flushes logs and suspends the main core. It only returns
// when sleep entry failed; callers treat that as fatal.
func (k *Keeper) EnterDeepSleep() error {
	const op = "timekeeper.sleep"
	log.Println("on battery, entering deep sleep at", k.CurrentTime())
	k.logs.Flush()
	err := k.plat.Suspend()
	if err == nil {
		return errcode.New(errcode.SleepFailed, op, "suspend returned")
	}
	return errcode.Wrap(errcode.SleepFailed, op, err)
}

// Run advances the clock once per tick while the coprocessor is absent.
// With a loaded coprocessor it returns at once.
func (k *Keeper) Run(ctx context.Context) {
	if !k.degraded {
		return
	}
	t := time.NewTicker(k.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			k.write(Ripple(k.CurrentTime()))
		}
	}
}

// Ripple advances t by one second with moduli 60, 60 and 24, carrying
// out-of-range fields the way the coprocessor program does.
func Ripple(t types.TimeOfDay) types.TimeOfDay {
	if s := int(t.Second) + 1; s < 60 {
		t.Second = uint8(s)
		return t
	}
	t.Second = 0
	if m := int(t.Minute) + 1; m < 60 {
		t.Minute = uint8(m)
		return t
	}
	t.Minute = 0
	if h := int(t.Hour) + 1; h < 24 {
		t.Hour = uint8(h)
	} else {
		t.Hour = 0
	}
	return t
}
