package lazy

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Loader performs the expensive initialization of a dependency.
// It should return an error wrapping ErrNotFound when the dependency is not
// available at all.
type Loader[T any] func() (T, error)

// Introspector is implemented by dependencies that can list the symbols
// they expose. Module.Dir uses it when available.
type Introspector interface {
	Symbols() []string
}

// Module defers loading a dependency of type T until Get is first called.
type Module[T any] struct {
	localName string
	name      string
	namespace *Registry
	load      Loader[T]
	opts      options

	// mu serializes load attempts and guards opts.warning.
	mu sync.Mutex

	// value is nil until the first successful load, then fixed.
	value atomic.Pointer[T]
}

// New returns an unloaded Module. Nothing is loaded until Get or Dir is
// called. On load, the value is registered under localName in namespace
// (which may be nil) and in the shared registry. The name identifies the
// dependency in messages. New panics if load is nil.
func New[T any](namespace *Registry, localName, name string, load Loader[T], opts ...Option) *Module[T] {
	if load == nil {
		panic("lazy: nil Loader for " + name)
	}
	o := newOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Module[T]{
		localName: localName,
		name:      name,
		namespace: namespace,
		load:      load,
		opts:      o,
	}
}

// Name returns the dependency name given to New.
func (m *Module[T]) Name() string {
	return m.name
}

// LocalName returns the name the value is registered under.
func (m *Module[T]) LocalName() string {
	return m.localName
}

// Loaded reports whether a load has succeeded.
func (m *Module[T]) Loaded() bool {
	return m.value.Load() != nil
}

// Get returns the dependency, loading it on the first call.
func (m *Module[T]) Get() (T, error) {
	if v := m.value.Load(); v != nil {
		return *v, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v := m.value.Load(); v != nil {
		return *v, nil
	}
	return m.loadLocked()
}

// MustGet is like Get but panics if the dependency cannot be loaded.
func (m *Module[T]) MustGet() T {
	v, err := m.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Dir lists the symbols the dependency exposes, loading it if needed.
// It returns the value's Symbols() when it implements Introspector, and its
// exported method names otherwise. The result is sorted.
func (m *Module[T]) Dir() ([]string, error) {
	v, err := m.Get()
	if err != nil {
		return nil, err
	}

	var names []string
	if in, ok := any(v).(Introspector); ok {
		names = append(names, in.Symbols()...)
	} else if t := reflect.TypeOf(v); t != nil {
		for i := 0; i < t.NumMethod(); i++ {
			names = append(names, t.Method(i).Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadLocked runs the Loader and publishes its result. m.mu must be held.
func (m *Module[T]) loadLocked() (T, error) {
	var zero T

	v, err := m.load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			msg := fmt.Sprintf("%s (reason: %v)", m.message(), err)
			return zero, m.opts.errKind(m.name, msg)
		}
		return zero, fmt.Errorf("lazy: loading %s: %w", m.name, err)
	}

	if m.namespace != nil {
		m.namespace.Register(m.localName, v)
	}
	if m.opts.registry != nil {
		m.opts.registry.Register(m.localName, v)
	}

	if m.opts.warning != "" {
		if m.opts.logger != nil {
			m.opts.logger.Warn(m.opts.warning, "module", m.name)
		}
		m.opts.warning = ""
	}

	m.value.Store(&v)
	if m.opts.logger != nil {
		m.opts.logger.Debug("module loaded", "module", m.name, "local_name", m.localName)
	}
	return v, nil
}

// message returns the configured error text or a default naming the module.
func (m *Module[T]) message() string {
	if m.opts.errMsg != "" {
		return m.opts.errMsg
	}
	return "failed to load " + m.name
}
