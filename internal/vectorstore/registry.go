package vectorstore

import (
	"context"
	"sync"
)

// Registry maps collection names to live handles with get-or-create
// semantics. Handles are cached for process lifetime: the database is the
// durable source of truth, so cache entries never expire.
//
// Registry is safe for concurrent use. First access for a given name is
// guarded per key, so a slow registration of one collection never blocks
// lookups of another.
type Registry struct {
	store *Store

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// registryEntry serializes first-time registration of a single name.
type registryEntry struct {
	mu  sync.Mutex
	col Collection
}

// NewRegistry creates a Registry on top of the given store.
func NewRegistry(store *Store) *Registry {
	return &Registry{
		store:   store,
		entries: make(map[string]*registryEntry),
	}
}

// GetOrCreate returns the handle for name, registering the collection in
// the backing store on first access. Idempotent; repeated calls with the
// same name return the same handle.
//
// Returns ErrInvalidName for names violating the naming constraints and
// a wrapped ErrUnavailable when the backing store cannot be reached.
// Registration failures are not cached, so a later call can succeed once
// the store recovers.
func (r *Registry) GetOrCreate(ctx context.Context, name string) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.col != nil {
		return e.col, nil
	}

	if err := r.store.register(ctx, name); err != nil {
		return nil, err
	}
	e.col = &pgCollection{store: r.store, name: name}
	return e.col, nil
}
