package kvstore

import "sync"

// Memory is a RAM KV. Staged writes become visible to Get immediately and
// to Committed only after Commit, which mirrors an NVS handle.
type Memory struct {
	mu        sync.Mutex
	committed map[string][]byte
	staged    map[string][]byte // nil value marks a staged delete
	commits   int
}

func NewMemory() *Memory {
	return &Memory{committed: map[string][]byte{}, staged: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.staged[key]; ok {
		if v == nil {
			return nil, notFound("kvstore.get", key)
		}
		return append([]byte(nil), v...), nil
	}
	v, ok := m.committed[key]
	if !ok {
		return nil, notFound("kvstore.get", key)
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, val []byte) error {
	if err := ValidKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.staged[key] = append([]byte{}, val...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	m.staged[key] = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.staged {
		if v == nil {
			delete(m.committed, k)
		} else {
			m.committed[k] = v
		}
	}
	m.staged = map[string][]byte{}
	m.commits++
	return nil
}

// Committed returns the durable value of key, ignoring staged writes.
func (m *Memory) Committed(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.committed[key]
	return append([]byte(nil), v...), ok
}

// Commits counts Commit calls.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}
