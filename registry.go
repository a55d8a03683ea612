package pinflow

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fully formed node instance.
type Factory func() (Node, error)

// Registry maps node type ids to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	entryType string
}

// Metadata describes a node type for presentation. The engine never reads it.
type Metadata struct {
	TypeID      string        `json:"typeId" yaml:"typeId"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string        `json:"category,omitempty" yaml:"category,omitempty"`
	Kind        string        `json:"kind" yaml:"kind"`
	Pure        bool          `json:"pure" yaml:"pure"`
	Inputs      []PinMetadata `json:"inputs" yaml:"inputs"`
	Outputs     []PinMetadata `json:"outputs" yaml:"outputs"`
}

// PinMetadata describes one pin of a node type.
type PinMetadata struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind          string `json:"kind" yaml:"kind"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	TypeDependsOn string `json:"typeDependsOn,omitempty" yaml:"typeDependsOn,omitempty"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a node type.
func (r *Registry) Register(typeID string, factory Factory) error {
	if typeID == "" || factory == nil {
		return fmt.Errorf("pinflow: invalid registration for type %q", typeID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[typeID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeType, typeID)
	}
	r.factories[typeID] = factory
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typeID string, factory Factory) {
	if err := r.Register(typeID, factory); err != nil {
		panic(err)
	}
}

// SetEntryType designates the type id whose instances start graphs.
func (r *Registry) SetEntryType(typeID string) {
	r.mu.Lock()
	r.entryType = typeID
	r.mu.Unlock()
}

// EntryType returns the designated entry type id.
func (r *Registry) EntryType() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entryType
}

// Has reports whether typeID is registered.
func (r *Registry) Has(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeID]
	return ok
}

// Create instantiates a node of the given type.
func (r *Registry) Create(typeID string) (Node, error) {
	r.mu.RLock()
	factory, exists := r.factories[typeID]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, typeID)
	}

	n, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create node %q: %w", typeID, err)
	}
	if n.TypeID() != typeID {
		return nil, fmt.Errorf("pinflow: factory for %q built a node of type %q", typeID, n.TypeID())
	}
	return n, nil
}

// List returns the registered type ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typeID := range r.factories {
		types = append(types, typeID)
	}
	sort.Strings(types)
	return types
}

// Describe returns presentation metadata for typeID, built from a fresh
// instance.
func (r *Registry) Describe(typeID string) (Metadata, error) {
	n, err := r.Create(typeID)
	if err != nil {
		return Metadata{}, err
	}
	return DescribeNode(n), nil
}

// DescribeAll returns metadata for every registered type, sorted by type id.
func (r *Registry) DescribeAll() ([]Metadata, error) {
	types := r.List()
	out := make([]Metadata, 0, len(types))
	for _, typeID := range types {
		m, err := r.Describe(typeID)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// DescribeNode returns presentation metadata for n.
func DescribeNode(n Node) Metadata {
	m := Metadata{
		TypeID:      n.TypeID(),
		Name:        n.Name(),
		Description: n.Description(),
		Category:    n.Category(),
		Kind:        n.Kind().String(),
		Pure:        n.Pure(),
		Inputs:      []PinMetadata{},
		Outputs:     []PinMetadata{},
	}
	for _, p := range n.Inputs() {
		m.Inputs = append(m.Inputs, describePinMetadata(p))
	}
	for _, p := range n.Outputs() {
		m.Outputs = append(m.Outputs, describePinMetadata(p))
	}
	return m
}

func describePinMetadata(p Pin) PinMetadata {
	pm := PinMetadata{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Kind:        p.Kind().String(),
	}
	switch ap := p.(type) {
	case *InputArgumentPin:
		pm.Type = ap.Type().String()
		pm.TypeDependsOn = ap.TypeDependsOn()
	case *OutputArgumentPin:
		pm.Type = ap.Type().String()
		pm.TypeDependsOn = ap.TypeDependsOn()
	}
	return pm
}
