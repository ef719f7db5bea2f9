package storage

import (
	"context"
	"sync/atomic"
	"time"

	"ledstack-go/mailbox"
	"ledstack-go/types"
)

// DefaultPeriod is how often the pipeline performs one durable write.
const DefaultPeriod = time.Second

// Pipeline is the single consumer of the storage mailbox.
type Pipeline struct {
	box    *mailbox.Box[types.DisplayRequest]
	store  *Store
	period time.Duration

	written atomic.Uint32
	failed  atomic.Uint32
	skipped atomic.Uint32
}

func NewPipeline(box *mailbox.Box[types.DisplayRequest], store *Store, period time.Duration) *Pipeline {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Pipeline{box: box, store: store, period: period}
}

// Run performs one drain per period until ctx is done.
func (p *Pipeline) Run(ctx context.Context) {
	t := time.NewTicker(p.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.DrainOne()
		}
	}
}

// DrainOne performs at most one keyed write. Requests with no key (the
// forwarded time text) are discarded without using up the write. A failed
// write is logged and not retried. It reports whether a write was tried.
func (p *Pipeline) DrainOne() bool {
	for {
		r, ok := p.box.TryRecv()
		if !ok {
			return false
		}
		if _, keyed := KeyFor(r.Action()); !keyed {
			p.skipped.Add(1)
			continue
		}
		if err := p.store.Write(r); err != nil {
			p.failed.Add(1)
			log.Println("write", r, "failed:", err)
		} else {
			p.written.Add(1)
			log.Println("saved", r)
		}
		return true
	}
}

// Counts returns writes completed, writes failed and unkeyed requests dropped.
func (p *Pipeline) Counts() (written, failed, skipped uint32) {
	return p.written.Load(), p.failed.Load(), p.skipped.Load()
}
