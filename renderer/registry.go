package renderer

import (
	"fmt"
	"sync"
)

// Factory creates a backend bound to env.
type Factory func(env Environment) Backend

type registration struct {
	name    string
	factory Factory
}

// Registered backends in priority order. The first registered wins.
var (
	registryMu sync.RWMutex
	registry   []registration
)

// Register adds a backend factory. Registering an existing name replaces
// the factory and keeps its priority. This is typically called from init().
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for i := range registry {
		if registry[i].name == name {
			registry[i].factory = factory
			return
		}
	}
	registry = append(registry, registration{name: name, factory: factory})
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for i := range registry {
		if registry[i].name == name {
			registry = append(registry[:i], registry[i+1:]...)
			return
		}
	}
}

// Available returns the registered backend names in priority order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, r := range registry {
		if r.name == name {
			return true
		}
	}
	return false
}

// Default creates the highest-priority backend.
// Returns nil if no backends are registered.
func Default(env Environment) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, r := range registry {
		if b := r.factory(env); b != nil {
			return b
		}
	}
	return nil
}

// Create creates the named backend. An empty name selects the default.
func Create(name string, env Environment) (Backend, error) {
	if name == "" {
		if b := Default(env); b != nil {
			return b, nil
		}
		return nil, ErrNoBackend
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, r := range registry {
		if r.name == name {
			if b := r.factory(env); b != nil {
				return b, nil
			}
			break
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoBackend, name)
}
