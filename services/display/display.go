// Package display runs the display task: the only consumer of the display
// mailbox and the only caller of the presenter.
package display

import (
	"context"
	"sync/atomic"
	"time"

	"ledstack-go/mailbox"
	"ledstack-go/services/panel"
	"ledstack-go/types"
	"ledstack-go/x/logx"
)

var log = logx.Tag("display")

const (
	DefaultQuantum = 10 * time.Millisecond
	DefaultDrain   = 1
)

// Clock receives SetTimeOfDay requests.
type Clock interface {
	SetTime(h, m, s uint8)
}

type Config struct {
	Quantum         time.Duration
	DrainPerQuantum int
}

type Task struct {
	box       *mailbox.Box[types.DisplayRequest]
	presenter panel.Presenter
	clock     Clock
	forward   *mailbox.Producer[types.DisplayRequest]
	cfg       Config

	applied   atomic.Uint32
	forwarded atomic.Uint32
	lost      atomic.Uint32
}

// New wires the task. forward is the task's producer on the storage
// mailbox.
func New(box *mailbox.Box[types.DisplayRequest], p panel.Presenter, clock Clock,
	forward *mailbox.Producer[types.DisplayRequest], cfg Config) *Task {
	if cfg.Quantum <= 0 {
		cfg.Quantum = DefaultQuantum
	}
	if cfg.DrainPerQuantum <= 0 {
		cfg.DrainPerQuantum = DefaultDrain
	}
	return &Task{box: box, presenter: p, clock: clock, forward: forward, cfg: cfg}
}

// Run ticks once per quantum until ctx is done.
func (t *Task) Run(ctx context.Context) {
	tk := time.NewTicker(t.cfg.Quantum)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Tick(ctx)
		}
	}
}

// Tick drains up to DrainPerQuantum requests, then always performs one
// render refresh. It returns the number of requests handled.
func (t *Task) Tick(ctx context.Context) int {
	n := 0
	for n < t.cfg.DrainPerQuantum {
		r, ok := t.box.TryRecv()
		if !ok {
			break
		}
		t.Apply(ctx, r)
		n++
	}
	t.presenter.Refresh()
	return n
}

// Apply hands r to the presenter and forwards a copy to storage. A time of
// day goes to the clock instead and is never forwarded.
func (t *Task) Apply(ctx context.Context, r types.DisplayRequest) {
	if tod, ok := r.Time(); ok {
		t.clock.SetTime(tod.Hour, tod.Minute, tod.Second)
		t.applied.Add(1)
		log.Println("clock set to", tod)
		return
	}
	if !t.present(r) {
		return
	}
	t.applied.Add(1)
	if err := t.forward.Send(ctx, r); err != nil {
		t.lost.Add(1)
		log.Println("storage forward dropped", r, err)
		return
	}
	t.forwarded.Add(1)
}

func (t *Task) present(r types.DisplayRequest) bool {
	switch r.Action() {
	case types.SetHeaderText:
		s, _ := r.Text()
		t.presenter.SetHeaderText(s)
	case types.SetTimeText:
		s, _ := r.Text()
		t.presenter.SetTimeText(s)
	case types.SetHeaderColor:
		c, _ := r.Color()
		t.presenter.SetHeaderColor(c)
	case types.SetTimeColor:
		c, _ := r.Color()
		t.presenter.SetTimeColor(c)
	case types.SetBackgroundColor:
		c, _ := r.Color()
		t.presenter.SetBackgroundColor(c)
	case types.SetBrightness:
		b, _ := r.Level()
		t.presenter.SetBrightness(b)
	default:
		return false
	}
	return true
}

// ApplySettings pushes a boot-time settings snapshot to the presenter
// without forwarding it to storage.
func (t *Task) ApplySettings(ds types.DisplaySettings) {
	for _, r := range ds.Requests() {
		t.present(r)
	}
}

// Counts returns requests applied, forwarded to storage and lost on a full
// storage mailbox.
func (t *Task) Counts() (applied, forwarded, lost uint32) {
	return t.applied.Load(), t.forwarded.Load(), t.lost.Load()
}
