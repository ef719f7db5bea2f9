package platform

import (
	"context"
	"io"
)

// SerialPort is the console/log UART. RecvSomeContext blocks until at
// least one byte arrives or ctx is done.
type SerialPort interface {
	io.Writer
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}
