package timefmt

import (
	"context"
	"errors"
	"testing"

	"ledstack-go/errcode"
	"ledstack-go/mailbox"
	"ledstack-go/types"
)

func TestFormat12(t *testing.T) {
	cases := []struct {
		h, m  uint8
		colon bool
		want  string
	}{
		{0, 0, true, "12:00"},
		{12, 5, true, "12:05"},
		{13, 7, true, "01:07"},
		{23, 59, false, "11 59"},
		{9, 30, false, "09 30"},
		{1, 0, true, "01:00"},
	}
	for _, c := range cases {
		got := Format12(types.TimeOfDay{Hour: c.h, Minute: c.m}, c.colon)
		if got != c.want {
			t.Fatalf("Format12(%d:%d,%v) = %q, want %q", c.h, c.m, c.colon, got, c.want)
		}
	}
}

type fakeSource struct {
	now    types.TimeOfDay
	power  types.PowerState
	sleeps int
	err    error
}

func (f *fakeSource) CurrentTime() types.TimeOfDay  { return f.now }
func (f *fakeSource) PowerStatus() types.PowerState { return f.power }
func (f *fakeSource) EnterDeepSleep() error {
	f.sleeps++
	return f.err
}

func TestSeparatorAlternates(t *testing.T) {
	src := &fakeSource{now: types.TimeOfDay{Hour: 13, Minute: 4}, power: types.PowerMain}
	box := mailbox.New[types.DisplayRequest]("display", 0)
	task := New(src, box.Producer("formatter", mailbox.BestEffort), 0)

	var got []string
	for i := 0; i < 3; i++ {
		s, err := task.Tick(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, s)
	}
	if got[0] != "01:04" || got[1] != "01 04" || got[2] != "01:04" {
		t.Fatalf("ticks = %q", got)
	}
	r, ok := box.TryRecv()
	if text, _ := r.Text(); !ok || r.Action() != types.SetTimeText || text != "01:04" {
		t.Fatalf("enqueued %v", r)
	}
}

func TestBatteryEntersSleepWithoutEnqueue(t *testing.T) {
	src := &fakeSource{power: types.PowerBattery, err: errcode.New(errcode.SleepFailed, "test", "returned")}
	box := mailbox.New[types.DisplayRequest]("display", 0)
	task := New(src, box.Producer("formatter", mailbox.BestEffort), 0)

	_, err := task.Tick(context.Background())
	if src.sleeps != 1 || errcode.Of(err) != errcode.SleepFailed {
		t.Fatalf("sleeps=%d err=%v", src.sleeps, err)
	}
	if box.Len() != 0 {
		t.Fatal("time text enqueued on battery")
	}
}

func TestRunReturnsSleepFailure(t *testing.T) {
	cause := errors.New("sleep refused")
	src := &fakeSource{power: types.PowerBattery, err: cause}
	box := mailbox.New[types.DisplayRequest]("display", 0)
	task := New(src, box.Producer("formatter", mailbox.BestEffort), 1)
	if err := task.Run(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("Run = %v", err)
	}
}

func TestFullMailboxLosesTickOnly(t *testing.T) {
	src := &fakeSource{power: types.PowerMain}
	box := mailbox.New[types.DisplayRequest]("display", 1)
	task := New(src, box.Producer("formatter", mailbox.BestEffort), 0)
	_, _ = task.Tick(context.Background())
	if _, err := task.Tick(context.Background()); err != nil {
		t.Fatalf("full mailbox surfaced as error: %v", err)
	}
	if box.Stats().Dropped != 1 {
		t.Fatalf("stats %+v", box.Stats())
	}
}
