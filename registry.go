package resources

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-resources/core"
)

// Definition names a remote collection and the options every resource built
// for it shares.
type Definition struct {
	Name    string
	Config  core.ResourceConfig
	Options []core.Option
}

// Registry keeps resource definitions by name. Resources are built per
// token, so one definition serves many callers.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{definitions: map[string]Definition{}}
}

func (r *Registry) Register(definition Definition) error {
	if r == nil {
		return fmt.Errorf("resources: registry is nil")
	}
	name := strings.TrimSpace(definition.Name)
	if name == "" {
		name = strings.TrimSpace(definition.Config.Name)
	}
	if name == "" {
		return fmt.Errorf("resources: definition name is required")
	}
	if strings.TrimSpace(definition.Config.BaseURL) == "" {
		return fmt.Errorf("resources: definition %q has no base url", name)
	}

	normalized := Definition{
		Name:    name,
		Config:  definition.Config,
		Options: append([]core.Option(nil), definition.Options...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[name]; exists {
		return fmt.Errorf("resources: definition %q already registered", name)
	}
	r.definitions[name] = normalized
	return nil
}

func (r *Registry) Definition(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	definition, ok := r.definitions[strings.TrimSpace(name)]
	return definition, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns a resource for name bound to token.
func (r *Registry) Build(name string, token string) (*core.Resource, error) {
	definition, ok := r.Definition(name)
	if !ok {
		return nil, core.NewConfigurationError("resources: no resource registered under name", map[string]any{
			"name": name,
		})
	}
	return NewResource(definition.Config, token, definition.Options...), nil
}
