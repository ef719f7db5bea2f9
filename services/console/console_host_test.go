//go:build !rp2040 && !rp2350

package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ledstack-go/errcode"
	"ledstack-go/mailbox"
	"ledstack-go/platform"
	"ledstack-go/types"
)

type fakeClock struct{}

func (fakeClock) CurrentTime() types.TimeOfDay  { return types.TimeOfDay{Hour: 8, Minute: 30} }
func (fakeClock) PowerStatus() types.PowerState { return types.PowerBattery }

type fakeSettings struct{ cleared int }

func (f *fakeSettings) Clear() error { f.cleared++; return nil }

func newConsole(capacity int) (*Console, *mailbox.Box[types.DisplayRequest], *fakeSettings, *time.Duration) {
	box := mailbox.New[types.DisplayRequest]("display", capacity)
	st := &fakeSettings{}
	var hb time.Duration
	c := New(box.Producer("console", mailbox.Block), fakeClock{}, st, Hooks{
		SetHeartbeat: func(d time.Duration) error { hb = d; return nil },
	})
	return c, box, st, &hb
}

func TestExecQueuesRequests(t *testing.T) {
	c, box, _, _ := newConsole(10)
	ctx := context.Background()
	cases := []struct {
		line string
		want types.DisplayRequest
	}{
		{"brightness 128", types.Brightness(128)},
		{"power off", types.Brightness(0)},
		{"header-color 00FF00", types.HeaderColor(0x00FF00)},
		{"time-color '#FF0000'", types.TimeColor(0xFF0000)},
		{"bg 000000", types.BackgroundColor(0)},
		{"time 23 59 59", types.SetClock(types.TimeOfDay{Hour: 23, Minute: 59, Second: 59})},
	}
	for _, tc := range cases {
		if r := c.Exec(ctx, tc.line); !strings.HasPrefix(r, "ok ") {
			t.Fatalf("%q: %s", tc.line, r)
		}
		got, ok := box.TryRecv()
		if !ok || got != tc.want {
			t.Fatalf("%q: queued %v", tc.line, got)
		}
	}
}

func TestHeaderQuoting(t *testing.T) {
	c, box, _, _ := newConsole(10)
	c.Exec(context.Background(), `header "Back at 2"`)
	got, _ := box.TryRecv()
	if s, ok := got.Text(); !ok || s != "Back at 2" {
		t.Fatalf("header %q", s)
	}
	c.Exec(context.Background(), `header Back soon`)
	got, _ = box.TryRecv()
	if s, _ := got.Text(); s != "Back soon" {
		t.Fatalf("header %q", s)
	}
}

func TestExecRejects(t *testing.T) {
	c, box, _, _ := newConsole(10)
	ctx := context.Background()
	cases := map[string]errcode.Code{
		"brightness 300": errcode.InvalidParams,
		"brightness":     errcode.InvalidParams,
		"time 1 2":       errcode.InvalidParams,
		"time 24 0 0":    errcode.InvalidParams,
		"bg red":         errcode.InvalidParams,
		"header":         errcode.InvalidParams,
		`header "open`:   errcode.InvalidParams,
		"frobnicate":     errcode.NotFound,
		"heartbeat soon": errcode.InvalidParams,
	}
	for line, code := range cases {
		r := c.Exec(ctx, line)
		if !strings.HasPrefix(r, "err "+string(code)) {
			t.Errorf("%q: %s", line, r)
		}
	}
	if box.Len() != 0 {
		t.Fatalf("%d rejected lines queued", box.Len())
	}
}

func TestStatusClearHeartbeat(t *testing.T) {
	c, _, st, hb := newConsole(10)
	ctx := context.Background()
	if r := c.Exec(ctx, "status"); r != "ok 08:30:00 BATTERY" {
		t.Fatalf("status %q", r)
	}
	if r := c.Exec(ctx, "clear-settings"); !strings.HasPrefix(r, "ok") || st.cleared != 1 {
		t.Fatalf("clear %q %d", r, st.cleared)
	}
	if r := c.Exec(ctx, "heartbeat 5s"); !strings.HasPrefix(r, "ok") || *hb != 5*time.Second {
		t.Fatalf("heartbeat %q %v", r, *hb)
	}
	if r := c.Exec(ctx, "   "); r != "" {
		t.Fatalf("blank line reply %q", r)
	}
}

func TestBlockPolicyWaitsForSpace(t *testing.T) {
	c, box, _, _ := newConsole(1)
	ctx := context.Background()
	c.Exec(ctx, "brightness 1")

	done := make(chan string, 1)
	go func() { done <- c.Exec(ctx, "brightness 2") }()
	select {
	case r := <-done:
		t.Fatalf("returned %q while full", r)
	case <-time.After(30 * time.Millisecond):
	}
	box.TryRecv()
	select {
	case r := <-done:
		if !strings.HasPrefix(r, "ok") {
			t.Fatal(r)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked send never completed")
	}

	cctx, cancel := context.WithCancel(ctx)
	go func() { done <- c.Exec(cctx, "brightness 3") }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case r := <-done:
		if !strings.HasPrefix(r, "err "+string(errcode.Cancelled)) {
			t.Fatal(r)
		}
	case <-time.After(time.Second):
		t.Fatal("cancel did not end the wait")
	}
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestRunOverSerial(t *testing.T) {
	c, box, _, _ := newConsole(10)
	pr, pw := io.Pipe()
	out := &syncBuffer{}
	port := platform.NewStreamPort(pr, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, port) }()

	_, _ = pw.Write([]byte("brightness 7\r\nstatus\n" + strings.Repeat("x", maxLine+5) + "\n"))
	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(out.String(), "\r\n") < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("output %q", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := out.String()
	if !strings.Contains(got, "ok 08:30:00 BATTERY") || !strings.Contains(got, "line too long") {
		t.Fatalf("output %q", got)
	}
	if r, ok := box.TryRecv(); !ok || r != types.Brightness(7) {
		t.Fatalf("queued %v", r)
	}

	_ = pw.Close()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("closed port should end Run with an error")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
