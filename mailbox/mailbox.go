// Package mailbox provides the bounded FIFOs between firmware tasks: many
// producers, one consumer that polls without blocking. Every producer
// declares once, at construction, what it does when the box is full.
package mailbox

import (
	"context"
	"sync/atomic"
	"time"

	"ledstack-go/errcode"
)

// DefaultCapacity is the slot count used when none is configured.
const DefaultCapacity = 10

type policyKind uint8

const (
	bestEffort policyKind = iota
	block
	blockTimeout
)

// Policy is a producer's full-box behaviour.
type Policy struct {
	kind    policyKind
	timeout time.Duration
}

var (
	// BestEffort fails at once with queue_full.
	BestEffort = Policy{kind: bestEffort}
	// Block waits for space; only a cancelled context ends the wait.
	Block = Policy{kind: block}
)

// BlockTimeout waits up to d for space, then fails with timeout.
func BlockTimeout(d time.Duration) Policy {
	if d <= 0 {
		return BestEffort
	}
	return Policy{kind: blockTimeout, timeout: d}
}

func (p Policy) String() string {
	switch p.kind {
	case block:
		return "block"
	case blockTimeout:
		return "block_timeout(" + p.timeout.String() + ")"
	default:
		return "best_effort"
	}
}

// Stats is a snapshot of a box's counters.
type Stats struct {
	Depth     int
	Capacity  int
	HighWater int
	Enqueued  uint32
	Dropped   uint32 // best-effort sends refused
	TimedOut  uint32 // bounded waits that expired
	Cancelled uint32
}

// Box is a bounded FIFO. Delivery order is enqueue order.
type Box[T any] struct {
	name string
	ch   chan T

	enqueued  atomic.Uint32
	dropped   atomic.Uint32
	timedOut  atomic.Uint32
	cancelled atomic.Uint32
	high      atomic.Int32
}

func New[T any](name string, capacity int) *Box[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Box[T]{name: name, ch: make(chan T, capacity)}
}

func (b *Box[T]) Name() string { return b.name }
func (b *Box[T]) Len() int     { return len(b.ch) }
func (b *Box[T]) Cap() int     { return cap(b.ch) }

// TryRecv takes the oldest entry without blocking.
func (b *Box[T]) TryRecv() (T, bool) {
	select {
	case v := <-b.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

func (b *Box[T]) Stats() Stats {
	return Stats{
		Depth:     len(b.ch),
		Capacity:  cap(b.ch),
		HighWater: int(b.high.Load()),
		Enqueued:  b.enqueued.Load(),
		Dropped:   b.dropped.Load(),
		TimedOut:  b.timedOut.Load(),
		Cancelled: b.cancelled.Load(),
	}
}

func (b *Box[T]) accepted() {
	b.enqueued.Add(1)
	d := int32(len(b.ch))
	for {
		h := b.high.Load()
		if d <= h || b.high.CompareAndSwap(h, d) {
			return
		}
	}
}

// Producer binds a name and a policy for one call site.
func (b *Box[T]) Producer(name string, p Policy) *Producer[T] {
	return &Producer[T]{box: b, name: name, policy: p}
}

// Producer enqueues into a Box under a fixed Policy.
type Producer[T any] struct {
	box    *Box[T]
	name   string
	policy Policy
}

func (p *Producer[T]) Name() string   { return p.name }
func (p *Producer[T]) Policy() Policy { return p.policy }

// Send enqueues v according to the producer's policy.
func (p *Producer[T]) Send(ctx context.Context, v T) error {
	b := p.box
	op := b.name + ".send"
	select {
	case b.ch <- v:
		b.accepted()
		return nil
	default:
	}

	switch p.policy.kind {
	case block:
		select {
		case b.ch <- v:
			b.accepted()
			return nil
		case <-ctx.Done():
			b.cancelled.Add(1)
			return errcode.Wrap(errcode.Cancelled, op, ctx.Err())
		}
	case blockTimeout:
		t := time.NewTimer(p.policy.timeout)
		defer t.Stop()
		select {
		case b.ch <- v:
			b.accepted()
			return nil
		case <-t.C:
			b.timedOut.Add(1)
			return errcode.New(errcode.Timeout, op, p.name+" waited "+p.policy.timeout.String())
		case <-ctx.Done():
			b.cancelled.Add(1)
			return errcode.Wrap(errcode.Cancelled, op, ctx.Err())
		}
	default:
		b.dropped.Add(1)
		return errcode.New(errcode.QueueFull, op, p.name)
	}
}
