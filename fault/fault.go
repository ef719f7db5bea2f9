// Package fault is the end of the line for unrecoverable errors.
package fault

import (
	"sync/atomic"
	"time"

	"ledstack-go/errcode"
	"ledstack-go/x/logx"
)

var (
	halts atomic.Uint32

	// park holds the calling goroutine forever.
	park = func() {
		for {
			time.Sleep(time.Hour)
		}
	}
)

// Halt logs err, flushes the log and parks the caller. It never returns.
func Halt(op string, err error) {
	halts.Add(1)
	code := errcode.Of(err)
	msg := "unknown"
	if err != nil {
		msg = err.Error()
	}
	logx.Default().Println("fault", op, string(code), msg, "- halted")
	logx.Default().Flush()
	park()
	panic("fault: park returned")
}

// Halts counts Halt calls since start.
func Halts() uint32 { return halts.Load() }
