package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Handler executes one operation with validated input and returns a textual
// result, typically pretty-printed JSON.
type Handler func(ctx context.Context, args Args) (string, error)

// Definition binds an operation name to its input schema and handler.
// Immutable after registration.
type Definition struct {
	Name        string
	Description string
	Schema      *Schema
	Handler     Handler
}

// Registry is the static mapping from operation name to definition, built
// once at startup by concatenating per-domain contributions. Insertion
// order determines the listing order shown to callers.
type Registry struct {
	order []string
	defs  map[string]*Definition
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
		log:  log,
	}
}

// Register adds an operation. Names are globally unique; duplicates are
// rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("tool %s: description cannot be empty", def.Name)
	}
	if def.Schema == nil {
		return fmt.Errorf("tool %s: schema cannot be nil", def.Name)
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s: handler cannot be nil", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool %s: already registered", def.Name)
	}

	r.order = append(r.order, def.Name)
	r.defs[def.Name] = &def

	r.log.Debug().Str("tool", def.Name).Msg("tool registered")
	return nil
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Definitions returns all operations in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.order)
}
