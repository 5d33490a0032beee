package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/schema"
)

// RenderFunc produces the markup for one block. Containers leave a
// SlotMarker for each child site where the composed children belong.
type RenderFunc func(id domain.BlockID, data domain.BlockData) (string, error)

// Definition describes a block type.
type Definition struct {
	Type   string
	Schema schema.Schema

	// Editable renders the block inside the editor chrome.
	Editable RenderFunc
	// Static renders the block as it appears in the sent email.
	Static RenderFunc

	// Container marks types that own children. Containers must set Children.
	Container bool
	Children  ChildSites

	// Defaults returns the payload a freshly inserted block starts with.
	Defaults func() domain.BlockData
}

// SchemaError wraps a schema failure with the type it was checked against.
type SchemaError struct {
	Type string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s data: %v", e.Type, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Registry maps type tags to definitions.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Definition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]Definition),
	}
}

// Register adds a block type. A definition with the same tag is replaced.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("registry: definition has no type tag")
	}
	if def.Editable == nil || def.Static == nil {
		return fmt.Errorf("registry: %s: both renderers are required", def.Type)
	}
	if def.Container && def.Children == nil {
		return fmt.Errorf("registry: %s: container without child sites", def.Type)
	}
	if !def.Container && def.Children != nil {
		return fmt.Errorf("registry: %s: child sites on a leaf type", def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[def.Type] = def
	return nil
}

// MustRegister is Register for init-time tables. It panics on a bad definition.
func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Resolve looks up a type tag.
func (r *Registry) Resolve(blockType string) (Definition, error) {
	r.mu.RLock()
	def, ok := r.types[blockType]
	r.mu.RUnlock()

	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", domain.ErrTypeNotFound, blockType)
	}
	return def, nil
}

// ChildSites returns the child sites of a container type.
// The second result is false for leaves and unknown types.
func (r *Registry) ChildSites(blockType string) (ChildSites, bool) {
	r.mu.RLock()
	def, ok := r.types[blockType]
	r.mu.RUnlock()

	if !ok || !def.Container {
		return nil, false
	}
	return def.Children, true
}

// Validate checks data against the schema of blockType.
func (r *Registry) Validate(blockType string, data domain.BlockData) error {
	def, err := r.Resolve(blockType)
	if err != nil {
		return err
	}
	if err := schema.Validate(def.Schema, data.Fields()); err != nil {
		return &SchemaError{Type: blockType, Err: err}
	}
	return nil
}

// Defaults returns the starting payload of a type.
func (r *Registry) Defaults(blockType string) (domain.BlockData, error) {
	def, err := r.Resolve(blockType)
	if err != nil {
		return domain.BlockData{}, err
	}
	if def.Defaults == nil {
		return domain.BlockData{}, nil
	}
	return def.Defaults(), nil
}

// Types lists the registered tags in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TypeInfo is the public description of a registered type.
type TypeInfo struct {
	Type      string           `json:"type"`
	Container bool             `json:"container"`
	Schema    schema.Schema    `json:"schema"`
	Defaults  domain.BlockData `json:"defaults"`
}

// Catalog describes every registered type in lexical order.
func (r *Registry) Catalog() []TypeInfo {
	types := r.Types()
	out := make([]TypeInfo, 0, len(types))
	for _, t := range types {
		r.mu.RLock()
		def := r.types[t]
		r.mu.RUnlock()

		info := TypeInfo{Type: def.Type, Container: def.Container, Schema: def.Schema}
		if def.Defaults != nil {
			info.Defaults = def.Defaults()
		}
		out = append(out, info)
	}
	return out
}
