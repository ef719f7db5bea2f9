//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"io"
	"os"
	"sync"
)

// StreamPort adapts a blocking reader to SerialPort. One goroutine reads
// the stream for the lifetime of the port, so an abandoned receive does
// not lose data or leak a reader per caller.
type StreamPort struct {
	w    io.Writer
	data chan []byte
	once sync.Once
	r    io.Reader
	rest []byte
	err  error
	mu   sync.Mutex
}

func NewStreamPort(r io.Reader, w io.Writer) *StreamPort {
	return &StreamPort{r: r, w: w, data: make(chan []byte, 4)}
}

func (p *StreamPort) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *StreamPort) pump() {
	buf := make([]byte, 256)
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			p.data <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			close(p.data)
			return
		}
	}
}

func (p *StreamPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	p.once.Do(func() { go p.pump() })
	p.mu.Lock()
	if len(p.rest) > 0 {
		n := copy(buf, p.rest)
		p.rest = p.rest[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case b, ok := <-p.data:
		if !ok {
			p.mu.Lock()
			defer p.mu.Unlock()
			return 0, p.err
		}
		n := copy(buf, b)
		p.mu.Lock()
		p.rest = append(p.rest, b[n:]...)
		p.mu.Unlock()
		return n, nil
	}
}

var (
	stdPortOnce sync.Once
	stdPort     *StreamPort
)

// DefaultSerial is stdin/stdout.
func DefaultSerial() SerialPort {
	stdPortOnce.Do(func() { stdPort = NewStreamPort(os.Stdin, os.Stdout) })
	return stdPort
}
