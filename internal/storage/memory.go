package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is what a MemorySlot returns while a failure is switched on.
var ErrInjected = errors.New("storage: injected failure")

// MemorySlot keeps the value in process memory. Reads and writes can be made to
// fail on demand, which is how callers exercise their persistence error paths.
type MemorySlot struct {
	key string

	mu         sync.RWMutex
	data       []byte
	present    bool
	failReads  bool
	failWrites bool
	writes     int
}

func NewMemorySlot(key string) *MemorySlot {
	return &MemorySlot{key: key}
}

func (s *MemorySlot) Key() string { return s.key }

func (s *MemorySlot) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return nil, false, ErrInjected
	}
	if !s.present {
		return nil, false, nil
	}
	return cloneBytes(s.data), true, nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrInjected
	}
	s.data = cloneBytes(data)
	s.present = true
	s.writes++
	return nil
}

func (s *MemorySlot) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrInjected
	}
	s.data = nil
	s.present = false
	return nil
}

func (s *MemorySlot) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return ErrInjected
	}
	return nil
}

// Seed stores raw bytes without going through Write, e.g. a malformed blob.
func (s *MemorySlot) Seed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = cloneBytes(data)
	s.present = true
}

// FailWrites makes Write and Remove return ErrInjected until switched off.
func (s *MemorySlot) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// FailReads makes Read and Ping return ErrInjected until switched off.
func (s *MemorySlot) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = fail
}

// Writes counts successful writes.
func (s *MemorySlot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
