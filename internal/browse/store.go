package browse

import (
	"context"
	"errors"
	"sync"
)

// Store persists State by session id.
type Store interface {
	// Load returns the stored state and whether one was found.
	Load(ctx context.Context, id string) (State, bool, error)
	Save(ctx context.Context, id string, st State) error
	Clear(ctx context.Context, id string) error
}

var errNoSession = errors.New("browse: session id is required")

// MemoryStore keeps encoded states in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	codec Codec
	data  map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codec: JSONCodec{}, data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (State, bool, error) {
	if id == "" {
		return State{}, false, errNoSession
	}
	m.mu.RLock()
	b, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	st, err := m.codec.Decode(b)
	if err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st State) error {
	if id == "" {
		return errNoSession
	}
	b, err := m.codec.Encode(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[id] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// NopStore persists nothing; every Load misses.
type NopStore struct{}

func (NopStore) Load(context.Context, string) (State, bool, error) { return State{}, false, nil }
func (NopStore) Save(context.Context, string, State) error { return nil }
func (NopStore) Clear(context.Context, string) error { return nil }
