// Package schemas provides JSON-schema style tool descriptors used for
// parameter validation and for advertising the catalog to front ends.
package schemas

import "encoding/json"

// Param is one declared tool parameter.
type Param struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema describes one tool: its identity and its parameter contract.
type Schema struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

// Required returns the names of all required parameters.
func (s *Schema) Required() []string {
	var names []string
	for _, p := range s.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Param looks up a parameter by name.
func (s *Schema) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Builder assembles a Schema fluently.
type Builder struct {
	schema *Schema
}

// NewSchema starts a builder for the named tool.
func NewSchema(name, category, description string) *Builder {
	return &Builder{
		schema: &Schema{
			Name:        name,
			Category:    category,
			Description: description,
		},
	}
}

// AddParam declares a parameter.
func (b *Builder) AddParam(name, paramType, description string, required bool) *Builder {
	b.schema.Params = append(b.schema.Params, Param{
		Name:        name,
		Type:        paramType,
		Description: description,
		Required:    required,
	})
	return b
}

// AddEnum declares a string parameter restricted to the given values.
func (b *Builder) AddEnum(name, description string, values []string, required bool) *Builder {
	b.schema.Params = append(b.schema.Params, Param{
		Name:        name,
		Type:        "string",
		Description: description,
		Required:    required,
		Enum:        values,
	})
	return b
}

// Build returns the assembled schema.
func (b *Builder) Build() *Schema {
	return b.schema
}

// Registry holds the schemas of the loaded tool catalog.
type Registry struct {
	schemas map[string]*Schema
	order   []string
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema, replacing nothing: the caller is responsible for
// rejecting duplicates before registration.
func (r *Registry) Register(schema *Schema) {
	if _, exists := r.schemas[schema.Name]; !exists {
		r.order = append(r.order, schema.Name)
	}
	r.schemas[schema.Name] = schema
}

// Get retrieves a schema by tool name.
func (r *Registry) Get(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// List returns all schemas in registration order.
func (r *Registry) List() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ToJSON renders the catalog for debugging and front ends.
func (r *Registry) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r.List(), "", "  ")
}
