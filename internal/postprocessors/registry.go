package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its section of the pipeline config.
// cfg is nil when the processor has no settings.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names from the pipeline config to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder. Registering the same name twice is an error.
func (r *Registry) Register(name string, builder BuilderFunc) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: processor name is empty", domain.ErrInvalidInput)
	case builder == nil:
		return fmt.Errorf("%w: processor %s has no builder", domain.ErrInvalidInput, name)
	case r.Has(name):
		return fmt.Errorf("%w: processor %s already registered", domain.ErrInvalidInput, name)
	}
	r.builders[name] = builder
	return nil
}

// Build constructs the named processor.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: processor %q (known: %s)",
			domain.ErrUnsupportedType, name, strings.Join(r.Names(), ", "))
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("building processor %s: %w", name, err)
	}
	return proc, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered processors in lexical order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
