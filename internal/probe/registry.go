package probe

import (
	"sort"
	"sync"

	"github.com/canonica-labs/capprobe/internal/errors"
)

// Registry manages probes by name.
type Registry struct {
	mu     sync.RWMutex
	probes map[string]Probe
}

// NewRegistry creates a new probe registry.
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[string]Probe),
	}
}

// Register adds a probe to the registry.
// Returns ErrDuplicateProbe if the name is taken.
func (r *Registry) Register(p Probe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.probes[p.Name()]; exists {
		return errors.NewDuplicateProbe(p.Name())
	}
	r.probes[p.Name()] = p
	return nil
}

// Get returns a probe by name.
func (r *Registry) Get(name string) (Probe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.probes[name]
	return p, ok
}

// Names returns the names of all registered probes, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Probes returns all registered probes sorted by name.
func (r *Registry) Probes() []Probe {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Probe, 0, len(names))
	for _, name := range names {
		out = append(out, r.probes[name])
	}
	return out
}

// Len returns the number of registered probes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.probes)
}
