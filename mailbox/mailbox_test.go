package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledstack-go/errcode"
)

func fill(t *testing.T, b *Box[int]) {
	t.Helper()
	p := b.Producer("filler", BestEffort)
	for i := 0; i < b.Cap(); i++ {
		if err := p.Send(context.Background(), i); err != nil {
			t.Fatalf("fill %d: %v", i, err)
		}
	}
}

func TestFIFOOrder(t *testing.T) {
	b := New[int]("display", 0)
	if b.Cap() != DefaultCapacity {
		t.Fatalf("cap = %d", b.Cap())
	}
	fill(t, b)
	for want := 0; want < DefaultCapacity; want++ {
		got, ok := b.TryRecv()
		if !ok || got != want {
			t.Fatalf("TryRecv = %d,%v want %d", got, ok, want)
		}
	}
	if _, ok := b.TryRecv(); ok {
		t.Fatal("empty box returned a value")
	}
}

func TestBestEffortFailsImmediatelyWhenFull(t *testing.T) {
	b := New[int]("display", 2)
	fill(t, b)
	p := b.Producer("formatter", BestEffort)

	start := time.Now()
	err := p.Send(context.Background(), 99)
	if errcode.Of(err) != errcode.QueueFull {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Fatal("best-effort send waited")
	}
	if s := b.Stats(); s.Dropped != 1 || s.Depth != 2 {
		t.Fatalf("stats %+v", s)
	}
}

func TestBlockWaitsForSpace(t *testing.T) {
	b := New[int]("display", 1)
	fill(t, b)
	p := b.Producer("console", Block)

	done := make(chan error, 1)
	go func() { done <- p.Send(context.Background(), 7) }()

	select {
	case err := <-done:
		t.Fatalf("blocking send returned early: %v", err)
	case <-time.After(30 * time.Millisecond):
	}
	if v, _ := b.TryRecv(); v != 0 {
		t.Fatalf("first value %d", v)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("blocking send failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking send never completed")
	}
	if v, ok := b.TryRecv(); !ok || v != 7 {
		t.Fatalf("TryRecv = %d,%v", v, ok)
	}
}

func TestBlockEndsOnlyOnCancel(t *testing.T) {
	b := New[int]("display", 1)
	fill(t, b)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Producer("console", Block).Send(ctx, 1) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; errcode.Of(err) != errcode.Cancelled {
		t.Fatalf("err = %v", err)
	}
	if b.Stats().Cancelled != 1 {
		t.Fatal("cancel not counted")
	}
}

func TestBlockTimeoutExpires(t *testing.T) {
	b := New[int]("display", 1)
	fill(t, b)
	p := b.Producer("web", BlockTimeout(20*time.Millisecond))

	start := time.Now()
	err := p.Send(context.Background(), 1)
	if errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v", err)
	}
	if el := time.Since(start); el < 15*time.Millisecond {
		t.Fatalf("returned after %v", el)
	}
	if b.Stats().TimedOut != 1 {
		t.Fatal("timeout not counted")
	}
}

func TestPolicyString(t *testing.T) {
	cases := []struct {
		p    Policy
		want string
	}{
		{BestEffort, "best_effort"},
		{Block, "block"},
		{BlockTimeout(100 * time.Millisecond), "block_timeout(100ms)"},
		{BlockTimeout(0), "best_effort"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Fatalf("String = %q, want %q", got, c.want)
		}
	}
}

func TestConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers, each = 4, 50
	b := New[[2]int]("display", 8)
	var wg sync.WaitGroup
	for id := 0; id < producers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p := b.Producer("p", Block)
			for i := 0; i < each; i++ {
				if err := p.Send(context.Background(), [2]int{id, i}); err != nil {
					t.Error(err)
					return
				}
			}
		}(id)
	}

	next := make([]int, producers)
	deadline := time.After(2 * time.Second)
	for got := 0; got < producers*each; {
		v, ok := b.TryRecv()
		if !ok {
			select {
			case <-deadline:
				t.Fatalf("only %d of %d received", got, producers*each)
			default:
			}
			time.Sleep(time.Millisecond)
			continue
		}
		if v[1] != next[v[0]] {
			t.Fatalf("producer %d: got seq %d want %d", v[0], v[1], next[v[0]])
		}
		next[v[0]]++
		got++
	}
	wg.Wait()
	s := b.Stats()
	if s.Enqueued != producers*each || s.HighWater > 8 || s.HighWater == 0 {
		t.Fatalf("stats %+v", s)
	}
}
