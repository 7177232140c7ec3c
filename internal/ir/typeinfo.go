package ir

import "strings"

// BaseType is the canonical primitive classification of a type token.
type BaseType string

const (
	BaseString  BaseType = "string"
	BaseNumber  BaseType = "number"
	BaseInteger BaseType = "integer"
	BaseBoolean BaseType = "boolean"
	BaseObject  BaseType = "object"
	BaseArray   BaseType = "array"
	BaseNull    BaseType = "null"
	BaseAny     BaseType = "any"
	BaseUnknown BaseType = "unknown"
)

// ConstraintKind classifies a validation constraint attached to a type.
type ConstraintKind string

const (
	ConstraintMinimum   ConstraintKind = "minimum"
	ConstraintMaximum   ConstraintKind = "maximum"
	ConstraintMinLength ConstraintKind = "minLength"
	ConstraintMaxLength ConstraintKind = "maxLength"
	ConstraintPattern   ConstraintKind = "pattern"
	ConstraintEnum      ConstraintKind = "enum"
	ConstraintEmail     ConstraintKind = "email"
	ConstraintURI       ConstraintKind = "uri"
)

// Constraint is one validation rule with an optional textual argument
// (the pattern source, the enum members, the bound).
type Constraint struct {
	Kind  ConstraintKind `json:"kind"`
	Value string         `json:"value,omitempty"`
}

// TypeInfo describes one value's type as far as extraction could tell.
type TypeInfo struct {
	Base        BaseType         `json:"base"`
	SchemaRef   *SchemaReference `json:"schemaRef,omitempty"`
	Constraints []Constraint     `json:"constraints,omitempty"`
	Optional    bool             `json:"optional,omitempty"`
}

// baseTypeTokens maps lowercased free-text type tokens from any of the
// origin ecosystems to a BaseType.
var baseTypeTokens = map[string]BaseType{
	"str":     BaseString,
	"string":  BaseString,
	"int":     BaseInteger,
	"integer": BaseInteger,
	"number":  BaseNumber,
	"float":   BaseNumber,
	"double":  BaseNumber,
	"bool":    BaseBoolean,
	"boolean": BaseBoolean,
	"list":    BaseArray,
	"array":   BaseArray,
	"dict":    BaseObject,
	"object":  BaseObject,
	"null":    BaseNull,
	"none":    BaseNull,
}

// InferBaseType classifies a free-text type token case-insensitively.
// Unrecognized tokens map to BaseUnknown rather than failing: downstream
// rules treat Unknown as incomparable, not as an error.
func InferBaseType(token string) BaseType {
	if bt, ok := baseTypeTokens[strings.ToLower(strings.TrimSpace(token))]; ok {
		return bt
	}
	return BaseUnknown
}
