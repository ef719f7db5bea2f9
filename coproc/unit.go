package coproc

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ledstack-go/errcode"
	"ledstack-go/rtcmem"
	"ledstack-go/x/logx"
)

var log = logx.Tag("coproc")

// DefaultPeriod is the nominal activation period.
const DefaultPeriod = time.Second

// Options tune a Unit. Zero values select defaults.
type Options struct {
	Period        time.Duration
	CorrectionPPM int32 // slow clock calibration, positive lengthens the period
	ProgramWords  int
	Budget        int
}

// Unit is the coprocessor: a program memory, a timer that fires one
// activation per period, and a wake line towards the main core. It is
// independent of any main-core boot and keeps running across them.
type Unit struct {
	vm       VM
	words    int
	period   time.Duration
	mu       sync.Mutex
	exec     sync.Mutex // held for one activation or one Hold
	src      []Instr
	prog     *Program
	running  bool
	onWake   func()
	activity atomic.Uint64
	wakes    atomic.Uint64
}

// New creates an inert unit bound to retained memory and a presence input.
func New(mem *rtcmem.Memory, input func() bool, o Options) *Unit {
	return &Unit{
		vm:     VM{Mem: mem, Input: input, Budget: o.Budget},
		words:  o.ProgramWords,
		period: CalibratedPeriod(o.Period, o.CorrectionPPM),
	}
}

// CalibratedPeriod applies a ppm correction to base (DefaultPeriod if zero).
func CalibratedPeriod(base time.Duration, ppm int32) time.Duration {
	if base <= 0 {
		base = DefaultPeriod
	}
	return base + time.Duration(int64(base)*int64(ppm)/1_000_000)
}

func (u *Unit) Period() time.Duration { return u.period }

// Load assembles src into program memory. Loading the program already
// resident is a no-op; retained memory is never touched. On failure the
// unit is left inert.
func (u *Unit) Load(src []Instr) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.prog != nil && sameProgram(u.src, src) {
		return nil
	}
	p, err := Assemble(src, u.words)
	if err != nil {
		u.prog, u.src = nil, nil
		return err
	}
	u.prog, u.src = p, append([]Instr(nil), src...)
	return nil
}

func sameProgram(a, b []Instr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Loaded reports whether a program is resident.
func (u *Unit) Loaded() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.prog != nil
}

// OnWake installs the wake line handler. It runs on the unit's goroutine.
func (u *Unit) OnWake(fn func()) {
	u.mu.Lock()
	u.onWake = fn
	u.mu.Unlock()
}

// Step runs one activation. An inert unit does nothing.
func (u *Unit) Step() (woke bool, err error) {
	u.mu.Lock()
	prog, hook := u.prog, u.onWake
	u.mu.Unlock()
	if prog == nil {
		return false, nil
	}
	u.activity.Add(1)
	u.exec.Lock()
	woke, err = u.vm.Run(prog)
	u.exec.Unlock()
	if err != nil {
		return false, errcode.Wrap(errcode.Of(err), "coproc.step", err)
	}
	if woke {
		u.wakes.Add(1)
		if hook != nil {
			hook()
		}
	}
	return woke, nil
}

// Hold runs fn with no activation in progress, so fn's retained memory
// accesses never interleave with the program's.
func (u *Unit) Hold(fn func()) {
	u.exec.Lock()
	defer u.exec.Unlock()
	fn()
}

// Start runs activations every period until ctx is done. A second Start
// while running is ignored.
func (u *Unit) Start(ctx context.Context) {
	u.mu.Lock()
	if u.running {
		u.mu.Unlock()
		return
	}
	u.running = true
	u.mu.Unlock()

	go func() {
		defer func() {
			u.mu.Lock()
			u.running = false
			u.mu.Unlock()
		}()
		t := time.NewTicker(u.period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, err := u.Step(); err != nil {
					log.Println("activation failed:", err)
				}
			}
		}
	}()
}

// Activations and Wakes count since New.
func (u *Unit) Activations() uint64 { return u.activity.Load() }
func (u *Unit) Wakes() uint64       { return u.wakes.Load() }
