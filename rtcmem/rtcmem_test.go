package rtcmem

import (
	"sync"
	"testing"
)

func TestStoreLoadClear(t *testing.T) {
	m := New(4)
	m.Store(3, 59)
	if got := m.Load(3); got != 59 {
		t.Fatalf("Load = %d", got)
	}
	if m.InRange(4) || m.InRange(-1) || !m.InRange(0) {
		t.Fatal("InRange bounds wrong")
	}
	m.Clear()
	if m.Load(3) != 0 {
		t.Fatal("Clear left data")
	}
}

func TestConcurrentWordAccess(t *testing.T) {
	m := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(v uint32) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Store(0, v)
				_ = m.Load(0)
			}
		}(uint32(i))
	}
	wg.Wait()
	if v := m.Load(0); v > 3 {
		t.Fatalf("torn word %d", v)
	}
}
