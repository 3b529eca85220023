package tool

import (
	"fmt"
	"sort"
)

// Registry is the catalog of available tools.
// It is populated once during startup and only read afterwards, so it carries no lock.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names are unique.
func (r *Registry) Register(t Tool) error {
	d := t.Descriptor()
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Safety != SafetySafe && d.Safety != SafetyConfirm {
		return fmt.Errorf("%w: %q for tool %s", ErrInvalidSafety, d.Safety, d.Name)
	}
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
	}
	r.tools[d.Name] = t
	return nil
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// Descriptors returns every descriptor sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descs = append(descs, t.Descriptor())
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
	return descs
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
