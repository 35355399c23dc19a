package recordkv

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// memStorage is a transient in-memory storage: the process-default store
// and the backend used by tests. Atomicity of apply comes from holding the
// lock for the whole batch.
type memStorage struct {
	mu     sync.Mutex
	items  []memKV // sorted by key
	closed bool
}

type memKV struct {
	key   []byte
	value []byte
}

func newMemStorage() storage {
	return &memStorage{}
}

func (s *memStorage) open() (session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("recordkv: storage closed")
	}
	return &memSession{base: s}, nil
}

func (s *memStorage) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}

func (s *memStorage) find(key []byte) (int, bool) {
	i := sort.Search(len(s.items), func(i int) bool {
		return bytes.Compare(s.items[i].key, key) >= 0
	})
	if i < len(s.items) && bytes.Equal(s.items[i].key, key) {
		return i, true
	}
	return i, false
}

type memSession struct {
	base *memStorage
}

func (ss *memSession) get(key []byte) ([]byte, error) {
	s := ss.base
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("recordkv: storage closed")
	}
	if i, ok := s.find(key); ok {
		return slices.Clone(s.items[i].value), nil
	}
	return nil, nil
}

func (ss *memSession) scan(prefix []byte, f func(k, v []byte) bool) error {
	s := ss.base

	// Snapshot the matching range so the callback never runs under the
	// lock and observes a consistent view.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("recordkv: storage closed")
	}
	i, _ := s.find(prefix)
	var snap []memKV
	for ; i < len(s.items); i++ {
		kv := s.items[i]
		if !bytes.HasPrefix(kv.key, prefix) {
			break
		}
		snap = append(snap, memKV{slices.Clone(kv.key), slices.Clone(kv.value)})
	}
	s.mu.Unlock()

	for _, kv := range snap {
		if !f(kv.key, kv.value) {
			break
		}
	}
	return nil
}

func (ss *memSession) apply(b *batch) error {
	s := ss.base
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("recordkv: storage closed")
	}
	for _, p := range b.sets {
		i, ok := s.find(p.k)
		if ok {
			s.items[i].value = slices.Clone(p.v)
		} else {
			s.items = slices.Insert(s.items, i, memKV{slices.Clone(p.k), slices.Clone(p.v)})
		}
	}
	for _, k := range b.dels {
		if i, ok := s.find(k); ok {
			s.items = slices.Delete(s.items, i, i+1)
		}
	}
	return nil
}

func (ss *memSession) close() error {
	return nil
}
