// Package logx is the firmware's line logger. Lines are "[tag] a b c",
// formatted without fmt, staged in a byte ring and pumped to a sink by a
// single goroutine so a task never blocks on the UART.
package logx

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"ledstack-go/x/conv"
	"ledstack-go/x/fmtx"
	"ledstack-go/x/shmring"
)

const defaultRingSize = 4096

// Logger stages lines in a ring; Run or Flush moves them to the output.
type Logger struct {
	wmu  sync.Mutex // producers share the ring's write side
	rmu  sync.Mutex // Run and Flush share the read side
	ring *shmring.Ring
	out  io.Writer

	drops atomic.Uint32
}

// New returns a logger with a ring of size bytes (power of two).
func New(size int, out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{ring: shmring.New(size), out: out}
}

var std = New(defaultRingSize, os.Stdout)

// Default returns the process logger.
func Default() *Logger { return std }

// SetOutput replaces the sink. Pending lines go to the new sink.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.rmu.Lock()
	l.out = w
	l.rmu.Unlock()
}

// Println formats parts space-separated behind "[tag] ". A line that does not
// fit in the ring is dropped and counted.
func (l *Logger) Println(tag string, parts ...any) {
	var stack [160]byte
	b := stack[:0]
	if tag != "" {
		b = append(b, '[')
		b = append(b, tag...)
		b = append(b, "] "...)
	}
	for i, p := range parts {
		if i > 0 {
			b = append(b, ' ')
		}
		b = appendAny(b, p)
	}
	b = append(b, '\n')

	l.wmu.Lock()
	ok := l.ring.WriteAll(b)
	l.wmu.Unlock()
	if !ok {
		l.drops.Add(1)
	}
}

// Drops is the number of lines lost to a full ring.
func (l *Logger) Drops() uint32 { return l.drops.Load() }

// Flush synchronously writes every staged line to the output.
func (l *Logger) Flush() {
	l.rmu.Lock()
	defer l.rmu.Unlock()
	var chunk [256]byte
	for {
		n := l.ring.ReadInto(chunk[:])
		if n == 0 {
			return
		}
		_, _ = l.out.Write(chunk[:n])
	}
}

// Run pumps lines to the output until ctx is done, then flushes.
func (l *Logger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Flush()
			return
		case <-l.ring.Readable():
			l.Flush()
		}
	}
}

// Tag is a bound tag on the default logger: logx.Tag("storage").Println(...).
type Tag string

func (t Tag) Println(parts ...any) { std.Println(string(t), parts...) }

func appendAny(b []byte, v any) []byte {
	var num [20]byte
	switch x := v.(type) {
	case string:
		return append(b, x...)
	case []byte:
		return append(b, x...)
	case error:
		if x == nil {
			return append(b, "<nil>"...)
		}
		return append(b, x.Error()...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return append(b, conv.Itoa(num[:], int64(x))...)
	case int32:
		return append(b, conv.Itoa(num[:], int64(x))...)
	case int64:
		return append(b, conv.Itoa(num[:], x)...)
	case uint8:
		return append(b, conv.Utoa(num[:], uint64(x))...)
	case uint16:
		return append(b, conv.Utoa(num[:], uint64(x))...)
	case uint32:
		return append(b, conv.Utoa(num[:], uint64(x))...)
	case uint64:
		return append(b, conv.Utoa(num[:], x)...)
	case uint:
		return append(b, conv.Utoa(num[:], uint64(x))...)
	case interface{ String() string }:
		return append(b, x.String()...)
	default:
		return append(b, fmtx.Sprint(v)...)
	}
}
