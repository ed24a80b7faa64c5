// AngelaMos | 2026
// memstore_test.go

package panel

import (
	"context"
	"sync"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

// memStore mirrors redisStore semantics over a map of raw documents.
type memStore struct {
	mu     sync.Mutex
	docs   map[string][]byte
	saved  map[string][]access.TabDescriptor
	resets int
}

func newMemStore() *memStore {
	return &memStore{
		docs:  map[string][]byte{},
		saved: map[string][]access.TabDescriptor{},
	}
}

func (m *memStore) Load(_ context.Context, userID string) ([]access.TabDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tabs, ok := m.saved[userID]; ok {
		return tabs, nil
	}
	raw, ok := m.docs[userID]
	if !ok {
		return access.DefaultCatalog(), nil
	}
	return decodeTabs(raw), nil
}

func (m *memStore) Save(_ context.Context, userID string, tabs []access.TabDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, userID)
	m.saved[userID] = tabs
	return nil
}

func (m *memStore) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, userID)
	delete(m.saved, userID)
	m.resets++
	return nil
}
