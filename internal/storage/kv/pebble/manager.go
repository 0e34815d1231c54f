package pebble

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/vennlabs/custodiad/internal/storage/kv"
)

// Manager opens pebble stores under one data directory.
type Manager struct {
	mu   sync.Mutex
	dbs  map[string]*pebble.DB
	path string
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*pebble.DB),
		path: path,
	}
}

func (m *Manager) Open(name string) (kv.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	db, err := pebble.Open(filepath.Join(m.path, name+".db"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", name, err)
	}
	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close store %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
