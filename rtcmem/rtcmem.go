// Package rtcmem models the slow, retained memory shared between the main
// core and the coprocessor. It survives sleep/resume; only a power-on
// reset clears it.
package rtcmem

import "sync/atomic"

// Memory is a fixed array of 32-bit words. Each word is read and written
// atomically; there is no multi-word atomicity.
type Memory struct {
	words []atomic.Uint32
}

// New allocates n zeroed words.
func New(n int) *Memory {
	return &Memory{words: make([]atomic.Uint32, n)}
}

func (m *Memory) Len() int { return len(m.words) }

// InRange reports whether addr names a word.
func (m *Memory) InRange(addr int) bool { return addr >= 0 && addr < len(m.words) }

func (m *Memory) Load(addr int) uint32 { return m.words[addr].Load() }

func (m *Memory) Store(addr int, v uint32) { m.words[addr].Store(v) }

// Clear zeroes every word, as a power-on reset does.
func (m *Memory) Clear() {
	for i := range m.words {
		m.words[i].Store(0)
	}
}
