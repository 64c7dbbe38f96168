package protocol

import (
	"strings"
	"sync"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

// Registry holds the immutable protocol definitions.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty protocol registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Register validates and adds a definition. Duplicate IDs and definitions
// whose step dependency graph is cyclic or references an undefined step are
// rejected; rejected definitions are not added.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return apperrors.User(apperrors.CodeInvalidProtocolDefinition, "protocol definition requires an id")
	}
	if err := validateSteps(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; exists {
		return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
			"protocol %q already registered", def.ID)
	}

	r.defs[def.ID] = def
	r.order = append(r.order, def.ID)
	return nil
}

// validateSteps enforces the dependency invariants: step IDs are unique,
// and every dependency references a step declared earlier in the list.
// Earlier-declaration implies acyclicity, so a cycle (A->B, B->A) is always
// caught as a forward or dangling reference.
func validateSteps(def *Definition) error {
	if len(def.Steps) == 0 {
		return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
			"protocol %q has no steps", def.ID)
	}

	seen := make(map[string]bool, len(def.Steps))
	for _, step := range def.Steps {
		if step.ID == "" {
			return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
				"protocol %q contains a step without an id", def.ID)
		}
		if seen[step.ID] {
			return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
				"protocol %q declares step %q twice", def.ID, step.ID)
		}
		if step.Handler == nil {
			return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
				"protocol %q step %q has no handler", def.ID, step.ID)
		}
		for _, dep := range step.DependsOn {
			if dep == step.ID {
				return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
					"protocol %q step %q depends on itself", def.ID, step.ID)
			}
			if !seen[dep] {
				return apperrors.Newf(apperrors.CodeInvalidProtocolDefinition, apperrors.CategoryUser,
					"protocol %q step %q depends on %q which is not declared earlier", def.ID, step.ID, dep)
			}
		}
		seen[step.ID] = true
	}
	return nil
}

// Get returns a definition by ID.
func (r *Registry) Get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeUnknownProtocol, apperrors.CategoryUser,
			"unknown protocol %q", id)
	}
	return def, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// FindByTrigger returns every protocol with a trigger keyword that matches
// the text (case-insensitive substring), in registration order.
func (r *Registry) FindByTrigger(text string) []*Definition {
	lower := strings.ToLower(text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Definition
	for _, id := range r.order {
		def := r.defs[id]
		for _, trigger := range def.Triggers {
			if strings.Contains(lower, strings.ToLower(trigger)) {
				out = append(out, def)
				break
			}
		}
	}
	return out
}
