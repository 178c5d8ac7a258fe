package commands

import (
	"sync"
)

// LockRegistry serializes handler work per key (order or courier ID) while
// letting different keys proceed in parallel. One registry instance must be
// shared by every handler that mutates the same kind of key, regardless of
// which intake the work arrived on; the composition root owns one registry
// for orders and one for couriers. Entries are reference counted and removed
// once the last holder releases, so the map does not grow with the total
// number of keys ever seen.
type LockRegistry struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLockRegistry creates an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{entries: make(map[string]*lockEntry)}
}

// Lock acquires the lock for key, creating it on first use.
func (l *LockRegistry) Lock(key string) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for key and drops the entry when unused.
func (l *LockRegistry) Unlock(key string) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
