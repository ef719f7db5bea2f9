// Package board emulates the SoC power domain: retained memory and the
// coprocessor outlive every main-core boot, deep sleep ends the running
// boot, and a coprocessor wake starts the next one.
package board

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"ledstack-go/coproc"
	"ledstack-go/errcode"
	"ledstack-go/platform"
	"ledstack-go/rtcmem"
	"ledstack-go/types"
	"ledstack-go/x/logx"
)

var log = logx.Tag("board")

// RetainedWords is the size of the retained memory region.
const RetainedWords = 16

// BootFunc is one main-core boot. ctx ends when the core suspends.
type BootFunc func(ctx context.Context, m *Machine)

type Machine struct {
	mem      *rtcmem.Memory
	unit     *coproc.Unit
	presence platform.GPIOPin

	mu     sync.Mutex
	parent context.Context
	boot   BootFunc
	cancel context.CancelFunc
	awake  bool
	reset  types.ResetCause
	wake   types.WakeCause
	// wakeLatched records a wake raised while the core was awake.
	wakeLatched bool

	boots        atomic.Uint32
	ignoredWakes atomic.Uint32
}

// New builds the power domain around the presence input. The coprocessor
// samples the same pin the main core reads.
func New(presence platform.GPIOPin, o coproc.Options) *Machine {
	mem := rtcmem.New(RetainedWords)
	m := &Machine{mem: mem, presence: presence}
	m.unit = coproc.New(mem, presence.Get, o)
	m.unit.OnWake(m.onWake)
	return m
}

func (m *Machine) Memory() *rtcmem.Memory     { return m.mem }
func (m *Machine) Coprocessor() *coproc.Unit  { return m.unit }
func (m *Machine) Presence() platform.GPIOPin { return m.presence }

// Run starts the coprocessor timer and the power-on boot, then waits for
// ctx. Every later boot is started by a wake.
func (m *Machine) Run(ctx context.Context, boot BootFunc) {
	m.mu.Lock()
	m.parent, m.boot = ctx, boot
	m.mu.Unlock()

	m.unit.Start(ctx)
	m.start(types.ResetPowerOn, types.WakeNone)
	<-ctx.Done()
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()
}

func (m *Machine) start(reset types.ResetCause, wake types.WakeCause) {
	m.mu.Lock()
	b, ok := m.beginLocked(reset, wake)
	m.mu.Unlock()
	if ok {
		m.launch(b)
	}
}

type pendingBoot struct {
	ctx   context.Context
	boot  BootFunc
	reset types.ResetCause
	wake  types.WakeCause
}

// beginLocked marks the core awake for a new boot. m.mu must be held.
func (m *Machine) beginLocked(reset types.ResetCause, wake types.WakeCause) (pendingBoot, bool) {
	if m.parent == nil || m.parent.Err() != nil {
		return pendingBoot{}, false
	}
	bctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.awake = true
	m.wakeLatched = false
	m.reset, m.wake = reset, wake
	return pendingBoot{ctx: bctx, boot: m.boot, reset: reset, wake: wake}, true
}

func (m *Machine) launch(b pendingBoot) {
	n := m.boots.Add(1)
	log.Println("boot", int(n), "reset", b.reset.String(), "wake", b.wake.String())
	go b.boot(b.ctx, m)
}

// onWake boots a sleeping core. A wake while awake is latched so that a
// suspend already under way does not lose it.
func (m *Machine) onWake() {
	m.mu.Lock()
	if m.awake {
		m.wakeLatched = true
		m.mu.Unlock()
		m.ignoredWakes.Add(1)
		return
	}
	b, ok := m.beginLocked(types.ResetDeepSleep, types.WakeCoprocessor)
	m.mu.Unlock()
	if ok {
		m.launch(b)
	}
}

func (m *Machine) ResetCause() types.ResetCause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *Machine) WakeCause() types.WakeCause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wake
}

// Awake reports whether a boot is running.
func (m *Machine) Awake() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awake
}

// Boots counts boots since Run, the power-on boot included.
func (m *Machine) Boots() uint32 { return m.boots.Load() }

// IgnoredWakes counts wakes raised while the main core was already up.
// Such a wake still resumes the core if it suspends on main power.
func (m *Machine) IgnoredWakes() uint32 { return m.ignoredWakes.Load() }

// Suspend puts the main core into deep sleep: the running boot's context
// is cancelled and the calling goroutine ends. It returns only on failure.
// Without a resident coprocessor program nothing can wake the core again
// until the machine is restarted.
func (m *Machine) Suspend() error {
	m.mu.Lock()
	if !m.awake {
		m.mu.Unlock()
		return errcode.New(errcode.SleepFailed, "board.suspend", "not awake")
	}
	m.awake = false
	cancel := m.cancel
	m.cancel = nil
	// A wake latched while awake still counts if main power is present now.
	var next pendingBoot
	resume := false
	if m.wakeLatched && m.presence.Get() {
		next, resume = m.beginLocked(types.ResetDeepSleep, types.WakeCoprocessor)
	}
	m.wakeLatched = false
	m.mu.Unlock()

	switch {
	case resume:
		log.Println("wake raised during sleep entry, resuming")
	case !m.unit.Loaded():
		log.Println("sleeping with no wake source")
	}
	cancel()
	if resume {
		m.launch(next)
	}
	runtime.Goexit()
	return nil
}
