package lazy

import (
	"sort"
	"sync"
)

// Registry is a name-keyed service locator for loaded dependencies.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// Shared is the process-wide registry loaded modules are published to unless
// WithRegistry selects another one.
var Shared = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Register stores v under name, replacing any previous entry.
func (r *Registry) Register(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Lookup returns the entry stored under name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the entry stored under name if it has type T.
func Resolve[T any](r *Registry, name string) (T, bool) {
	var zero T
	v, ok := r.Lookup(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
