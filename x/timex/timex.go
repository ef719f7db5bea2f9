package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// SinceMs returns the whole seconds elapsed since a NowMs stamp.
func SinceMs(startMs int64) uint32 {
	d := NowMs() - startMs
	if d < 0 {
		return 0
	}
	return uint32(d / 1000)
}
