package storage

import (
	"context"
	"sync"

	"github.com/bryanwahyu/safeweb/internal/domain/history"
)

// MemorySlot keeps the blob in process memory. Nothing survives a restart.
type MemorySlot struct {
	mu    sync.Mutex
	value []byte
	set   bool

	// WriteErr, when set, makes every Write fail. Used to exercise degraded persistence.
	WriteErr error
	// ReadErr, when set, makes every Read fail.
	ReadErr error
}

func NewMemorySlot() *MemorySlot { return &MemorySlot{} }

func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if !s.set {
		return nil, history.ErrSlotEmpty
	}
	out := make([]byte, len(s.value))
	copy(out, s.value)
	return out, nil
}

func (s *MemorySlot) Write(ctx context.Context, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.value = make([]byte, len(value))
	copy(s.value, value)
	s.set = true
	return nil
}

// Put seeds the slot directly, bypassing WriteErr.
func (s *MemorySlot) Put(value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = append([]byte(nil), value...)
	s.set = true
}

func (s *MemorySlot) Check(ctx context.Context) error { return nil }
