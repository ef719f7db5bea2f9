package logx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stateStr struct{}

func (stateStr) String() string { return "MAIN" }

func TestPrintlnFormatsLikeBuiltin(t *testing.T) {
	var out bytes.Buffer
	l := New(256, &out)

	l.Println("storage", "saved", "brightness", uint8(128), -3, true, errors.New("boom"), stateStr{})
	l.Flush()

	want := "[storage] saved brightness 128 -3 true boom MAIN\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestFullRingDropsWholeLines(t *testing.T) {
	var out bytes.Buffer
	l := New(32, &out)

	l.Println("t", "0123456789")        // 15 bytes
	l.Println("t", "0123456789")        // 30 bytes
	l.Println("t", "this does not fit") // dropped
	if l.Drops() != 1 {
		t.Fatalf("Drops() = %d, want 1", l.Drops())
	}
	l.Flush()
	if strings.Count(out.String(), "\n") != 2 {
		t.Fatalf("got %q", out.String())
	}
}

type syncBuf struct {
	mu  chan struct{}
	buf bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu <- struct{}{}
	defer func() { <-s.mu }()
	return s.buf.Write(p)
}

func (s *syncBuf) String() string {
	s.mu <- struct{}{}
	defer func() { <-s.mu }()
	return s.buf.String()
}

func TestRunPumpsAndFlushesOnCancel(t *testing.T) {
	out := &syncBuf{mu: make(chan struct{}, 1)}
	l := New(1024, out)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { l.Run(ctx); close(done) }()

	l.Println("hb", "tick")
	deadline := time.Now().Add(500 * time.Millisecond)
	for !strings.Contains(out.String(), "[hb] tick") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "[hb] tick") {
		t.Fatal("pump did not deliver line")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
