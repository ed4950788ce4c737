package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command // name and aliases map to command
	primary map[string]Command // primary names only
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		primary: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, name := range names {
		if _, exists := r.byName[name]; exists {
			return fmt.Errorf("command name already registered: %s", name)
		}
	}

	for _, name := range names {
		r.byName[name] = c
	}
	r.primary[c.Name()] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns all commands sorted by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.primary))
	for name := range r.primary {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.primary[name]
	}
	return result
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
