package registry

import (
	"strings"
	"sync"
	"time"
)

// Registry holds the set of currently valid keys.
type Registry struct {
	mu    sync.RWMutex
	now   func() time.Time
	keys  map[string]time.Time // key -> insertion time
	order []string             // insertion order for listing
}

// NewRegistry creates a registry seeded with the given keys. Blank and
// duplicate seed entries are skipped.
func NewRegistry(seed []string, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		now:  now,
		keys: make(map[string]time.Time, len(seed)),
	}
	for _, k := range seed {
		_, _ = r.Add(k)
	}
	return r
}

// IsValid reports whether key is registered. The comparison is exact.
func (r *Registry) IsValid(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.keys[key]
	return ok
}

// List returns every registered key in insertion order.
func (r *Registry) List() []KeyRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]KeyRecord, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, KeyRecord{Key: k, Active: true, Created: r.keys[k]})
	}
	return out
}

// Add trims key and registers it.
func (r *Registry) Add(key string) (KeyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return KeyRecord{}, ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[key]; ok {
		return KeyRecord{}, ErrAlreadyExists
	}

	created := r.now()
	r.keys[key] = created
	r.order = append(r.order, key)
	return KeyRecord{Key: key, Active: true, Created: created}, nil
}

// Remove deletes key, matched exactly as given.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[key]; !ok {
		return ErrNotFound
	}

	delete(r.keys, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
