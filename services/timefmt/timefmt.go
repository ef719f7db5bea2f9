// Package timefmt runs the formatter task: once a period it turns the
// clock into the blinking 12-hour text on the sign, and it is the task
// that notices the loss of main power.
package timefmt

import (
	"context"
	"time"

	"ledstack-go/mailbox"
	"ledstack-go/types"
	"ledstack-go/x/conv"
	"ledstack-go/x/logx"
)

var log = logx.Tag("timefmt")

const DefaultPeriod = time.Second

// Format12 renders t as "HH:MM" (colon true) or "HH MM" on a 12-hour dial:
// hour 0 shows as 12 and hours past 12 drop by 12.
func Format12(t types.TimeOfDay, colon bool) string {
	h := t.Hour
	switch {
	case h == 0:
		h = 12
	case h > 12:
		h -= 12
	}
	var b [5]byte
	conv.Pad2(b[0:2], h)
	b[2] = ' '
	if colon {
		b[2] = ':'
	}
	conv.Pad2(b[3:5], t.Minute)
	return string(b[:])
}

// Source is the timekeeper surface the task needs.
type Source interface {
	CurrentTime() types.TimeOfDay
	PowerStatus() types.PowerState
	EnterDeepSleep() error
}

type Task struct {
	src    Source
	out    *mailbox.Producer[types.DisplayRequest]
	period time.Duration
	colon  bool
}

func New(src Source, out *mailbox.Producer[types.DisplayRequest], period time.Duration) *Task {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Task{src: src, out: out, period: period, colon: true}
}

// Run ticks until ctx is done. It returns only on ctx or when sleep entry
// failed; the latter is fatal to the caller.
func (t *Task) Run(ctx context.Context) error {
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			if _, err := t.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Tick samples power first. On battery it enters deep sleep directly and
// only comes back with the failure. On main power it enqueues the time
// text and flips the separator; a full mailbox loses that tick's text.
func (t *Task) Tick(ctx context.Context) (string, error) {
	if t.src.PowerStatus() == types.PowerBattery {
		return "", t.src.EnterDeepSleep()
	}
	s := Format12(t.src.CurrentTime(), t.colon)
	t.colon = !t.colon
	r, err := types.TimeText(s)
	if err != nil {
		return s, nil
	}
	if err := t.out.Send(ctx, r); err != nil {
		log.Println("time text dropped:", err)
	}
	return s, nil
}
