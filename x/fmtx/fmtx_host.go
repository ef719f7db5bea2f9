//go:build !(rp2040 || rp2350)

package fmtx

import "fmt"

// Sprint formats values for log lines when logx has no cheaper path.
func Sprint(a ...any) string { return fmt.Sprint(a...) }
