package normalize

import (
	"sort"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// FieldInfo describes one property of a canonical schema.
type FieldInfo struct {
	FieldType   string           `json:"fieldType"` // raw type token from the origin system
	Base        ir.BaseType      `json:"base"`
	Optional    bool             `json:"optional"`
	Constraints []ir.Constraint  `json:"constraints,omitempty"`
	Nested      *CanonicalSchema `json:"nested,omitempty"`
}

// CanonicalSchema is the single structural representation every native
// schema kind is reduced to before comparison. SchemaType is the structural
// type of the schema itself: "object" for property maps, "array" for list
// schemas, or a primitive name for type aliases.
//
// Invariant: for every field, Optional == !contains(Required, name).
// Required is kept sorted so equal schemas compare equal regardless of the
// declaration order in the origin document.
type CanonicalSchema struct {
	SchemaType  string               `json:"schemaType"`
	Properties  map[string]FieldInfo `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Items       *CanonicalSchema     `json:"items,omitempty"`
	Constraints []ir.Constraint      `json:"constraints,omitempty"`
}

// Field returns the property for name and whether it exists.
func (c *CanonicalSchema) Field(name string) (FieldInfo, bool) {
	f, ok := c.Properties[name]
	return f, ok
}

// FieldNames returns all property names in sorted order, for deterministic
// rule evaluation and reporting.
func (c *CanonicalSchema) FieldNames() []string {
	names := make([]string, 0, len(c.Properties))
	for name := range c.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name is in the required list.
func (c *CanonicalSchema) IsRequired(name string) bool {
	for _, r := range c.Required {
		if r == name {
			return true
		}
	}
	return false
}

// finalize sorts Required and forces the required/optional invariant onto
// every property. All construction paths go through this before a schema
// escapes the package.
func (c *CanonicalSchema) finalize() *CanonicalSchema {
	sort.Strings(c.Required)
	for name, f := range c.Properties {
		f.Optional = !c.IsRequired(name)
		c.Properties[name] = f
	}
	return c
}
