package display

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledstack-go/kvstore"
	"ledstack-go/mailbox"
	"ledstack-go/services/storage"
	"ledstack-go/types"
)

type call struct {
	name string
	arg  any
}

type recorder struct {
	mu        sync.Mutex
	calls     []call
	refreshes int
}

func (r *recorder) add(name string, arg any) {
	r.mu.Lock()
	r.calls = append(r.calls, call{name, arg})
	r.mu.Unlock()
}

func (r *recorder) SetHeaderText(s string)      { r.add("header_text", s) }
func (r *recorder) SetHeaderColor(c uint32)     { r.add("header_color", c) }
func (r *recorder) SetTimeText(s string)        { r.add("time_text", s) }
func (r *recorder) SetTimeColor(c uint32)       { r.add("time_color", c) }
func (r *recorder) SetBackgroundColor(c uint32) { r.add("bg_color", c) }
func (r *recorder) SetBrightness(b uint8)       { r.add("brightness", b) }
func (r *recorder) Refresh() {
	r.mu.Lock()
	r.refreshes++
	r.mu.Unlock()
}

func (r *recorder) count(name string, arg any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.name == name && c.arg == arg {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu  sync.Mutex
	set []types.TimeOfDay
}

func (c *fakeClock) SetTime(h, m, s uint8) {
	c.mu.Lock()
	c.set = append(c.set, types.TimeOfDay{Hour: h, Minute: m, Second: s})
	c.mu.Unlock()
}

type rig struct {
	in    *mailbox.Box[types.DisplayRequest]
	out   *mailbox.Box[types.DisplayRequest]
	pres  *recorder
	clock *fakeClock
	task  *Task
	send  *mailbox.Producer[types.DisplayRequest]
}

func newRig(storageCap int) *rig {
	r := &rig{
		in:    mailbox.New[types.DisplayRequest]("display", 0),
		out:   mailbox.New[types.DisplayRequest]("storage", storageCap),
		pres:  &recorder{},
		clock: &fakeClock{},
	}
	r.task = New(r.in, r.pres, r.clock, r.out.Producer("display", mailbox.BestEffort), Config{})
	r.send = r.in.Producer("test", mailbox.BestEffort)
	return r
}

func TestBrightnessAppliedAndPersistedOnce(t *testing.T) {
	r := newRig(0)
	kv := kvstore.NewMemory()
	pipe := storage.NewPipeline(r.out, storage.NewStore(kv), 0)

	_ = r.send.Send(context.Background(), types.Brightness(128))
	r.task.Tick(context.Background())
	pipe.DrainOne()

	if n := r.pres.count("brightness", uint8(128)); n != 1 {
		t.Fatalf("SetBrightness(128) called %d times", n)
	}
	v, ok := kv.Committed(storage.KeyBrightness)
	if !ok || len(v) != 1 || v[0] != 128 || kv.Commits() != 1 {
		t.Fatalf("stored %v, %v after %d commits", v, ok, kv.Commits())
	}
}

func TestTimeOfDayGoesToClockOnly(t *testing.T) {
	r := newRig(0)
	want := types.TimeOfDay{Hour: 23, Minute: 59, Second: 59}
	_ = r.send.Send(context.Background(), types.SetClock(want))
	r.task.Tick(context.Background())

	if len(r.clock.set) != 1 || r.clock.set[0] != want {
		t.Fatalf("clock got %v", r.clock.set)
	}
	if r.out.Len() != 0 {
		t.Fatal("time of day forwarded to storage")
	}
	if len(r.pres.calls) != 0 {
		t.Fatalf("presenter saw %v", r.pres.calls)
	}
}

func TestOneRequestPerQuantumAndRefreshAlways(t *testing.T) {
	r := newRig(0)
	for _, c := range []uint32{1, 2, 3} {
		_ = r.send.Send(context.Background(), types.HeaderColor(c))
	}
	for i, want := range []uint32{1, 2, 3} {
		if n := r.task.Tick(context.Background()); n != 1 {
			t.Fatalf("tick %d handled %d", i, n)
		}
		if last := r.pres.calls[len(r.pres.calls)-1]; last.arg != want {
			t.Fatalf("tick %d applied %v, want %d", i, last.arg, want)
		}
	}
	if n := r.task.Tick(context.Background()); n != 0 {
		t.Fatalf("empty tick handled %d", n)
	}
	if r.pres.refreshes != 4 {
		t.Fatalf("refreshes = %d", r.pres.refreshes)
	}
}

func TestDrainPerQuantumIsConfigurable(t *testing.T) {
	r := newRig(0)
	r.task = New(r.in, r.pres, r.clock, r.out.Producer("display", mailbox.BestEffort), Config{DrainPerQuantum: 3})
	for i := 0; i < 5; i++ {
		_ = r.send.Send(context.Background(), types.Brightness(uint8(i)))
	}
	if n := r.task.Tick(context.Background()); n != 3 {
		t.Fatalf("handled %d", n)
	}
}

func TestFullStorageMailboxDropsForwardOnly(t *testing.T) {
	r := newRig(1)
	_ = r.send.Send(context.Background(), types.TimeColor(0xAA))
	_ = r.send.Send(context.Background(), types.TimeColor(0xBB))
	r.task.Tick(context.Background())
	r.task.Tick(context.Background())

	if r.pres.count("time_color", uint32(0xBB)) != 1 {
		t.Fatal("presenter missed request whose forward was dropped")
	}
	applied, forwarded, lost := r.task.Counts()
	if applied != 2 || forwarded != 1 || lost != 1 {
		t.Fatalf("applied=%d forwarded=%d lost=%d", applied, forwarded, lost)
	}
}

func TestApplySettingsIsNotPersisted(t *testing.T) {
	r := newRig(0)
	r.task.ApplySettings(types.DefaultSettings())
	if len(r.pres.calls) != 5 {
		t.Fatalf("presenter calls %v", r.pres.calls)
	}
	if r.pres.count("header_text", "ledStack") != 1 || r.pres.count("brightness", uint8(255)) != 1 {
		t.Fatalf("defaults not applied: %v", r.pres.calls)
	}
	if r.out.Len() != 0 {
		t.Fatal("boot settings forwarded to storage")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { r.task.Run(ctx); close(done) }()
	time.Sleep(35 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run ignored cancel")
	}
	r.pres.mu.Lock()
	defer r.pres.mu.Unlock()
	if r.pres.refreshes == 0 {
		t.Fatal("no render ticks while idle")
	}
}
