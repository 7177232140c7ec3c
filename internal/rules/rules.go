// Package rules implements the contract rule engine: a fixed set of
// independent, pure rules that diff two canonical schemas, and a checker
// that aggregates their outputs into a contract severity.
package rules

import (
	"fmt"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
	"github.com/seamcheck/seamcheck/internal/normalize"
)

// Input is the evaluation context handed to every rule. Source and Target
// are the normalized schemas of the contract's from/to sides; either may be
// nil when normalization failed, in which case schema-diffing rules stay
// silent (the contract is unverifiable, not wrong).
type Input struct {
	Contract *contract.Contract
	Source   *normalize.CanonicalSchema
	Target   *normalize.CanonicalSchema
}

// Rule is one independent check. Rules never mutate their input; running
// them in any order yields the same multiset of mismatches.
type Rule interface {
	Name() string
	Apply(in Input) []contract.Mismatch
}

// DefaultRules returns the full rule set in its conventional order.
func DefaultRules() []Rule {
	return []Rule{
		TypeMismatchRule{},
		MissingFieldRule{},
		UnnormalizedDataRule{},
		MissingSchemaRule{},
	}
}

// TypeMismatchRule flags fields present on both sides whose base types
// disagree. Fields whose base type degraded to unknown/any on either side
// are skipped: a degraded input weakens findings, it does not invent them.
type TypeMismatchRule struct{}

func (TypeMismatchRule) Name() string { return "type_mismatch" }

func (TypeMismatchRule) Apply(in Input) []contract.Mismatch {
	if in.Source == nil || in.Target == nil {
		return nil
	}

	var out []contract.Mismatch
	for _, name := range in.Source.FieldNames() {
		src := in.Source.Properties[name]
		tgt, ok := in.Target.Field(name)
		if !ok {
			continue
		}
		if !diffable(src.Base) || !diffable(tgt.Base) {
			continue
		}
		if src.Base != tgt.Base {
			out = append(out, contract.Mismatch{
				Kind:     contract.TypeMismatch,
				Path:     name,
				Expected: ir.TypeInfo{Base: tgt.Base},
				Actual:   ir.TypeInfo{Base: src.Base},
				Location: in.Contract.ToSchema.Location,
				Message: fmt.Sprintf("field %q: source type %s does not match target type %s",
					name, src.Base, tgt.Base),
				Level: contract.LevelHigh,
			})
		}
	}
	return out
}

func diffable(b ir.BaseType) bool {
	return b != ir.BaseUnknown && b != ir.BaseAny
}

// MissingFieldRule flags target fields the source never provides: first
// every required target field absent from the source, then every
// non-optional target field absent from the source that the required list
// did not already cover (the optional flag and the required list are kept
// consistent by the normalizer, but a schema built by hand may drift).
type MissingFieldRule struct{}

func (MissingFieldRule) Name() string { return "missing_field" }

func (MissingFieldRule) Apply(in Input) []contract.Mismatch {
	if in.Source == nil || in.Target == nil {
		return nil
	}

	var out []contract.Mismatch
	reported := make(map[string]bool)

	for _, name := range in.Target.Required {
		if _, ok := in.Source.Field(name); ok {
			continue
		}
		out = append(out, missingField(in, name))
		reported[name] = true
	}

	for _, name := range in.Target.FieldNames() {
		f := in.Target.Properties[name]
		if f.Optional || reported[name] {
			continue
		}
		if in.Target.IsRequired(name) {
			continue // already handled by the required pass
		}
		if _, ok := in.Source.Field(name); ok {
			continue
		}
		out = append(out, missingField(in, name))
	}

	return out
}

func missingField(in Input, name string) contract.Mismatch {
	tgt := in.Target.Properties[name]
	return contract.Mismatch{
		Kind:     contract.MissingField,
		Path:     name,
		Expected: ir.TypeInfo{Base: tgt.Base},
		Actual:   ir.TypeInfo{Base: ir.BaseNull},
		Location: in.Contract.ToSchema.Location,
		Message:  fmt.Sprintf("required field %q is missing on the source side", name),
		Level:    contract.LevelHigh,
	}
}

// UnnormalizedDataRule flags string fields whose target expects a validated
// format (email or pattern) the source does not enforce. Heuristic: format
// validation is expected but not proven on the source side.
type UnnormalizedDataRule struct{}

func (UnnormalizedDataRule) Name() string { return "unnormalized_data" }

func (UnnormalizedDataRule) Apply(in Input) []contract.Mismatch {
	if in.Source == nil || in.Target == nil {
		return nil
	}

	var out []contract.Mismatch
	for _, name := range in.Target.FieldNames() {
		tgt := in.Target.Properties[name]
		src, ok := in.Source.Field(name)
		if !ok {
			continue
		}
		if tgt.Base != ir.BaseString || src.Base != ir.BaseString {
			continue
		}
		for _, kind := range []ir.ConstraintKind{ir.ConstraintEmail, ir.ConstraintPattern} {
			if hasConstraint(tgt.Constraints, kind) && !hasConstraint(src.Constraints, kind) {
				out = append(out, contract.Mismatch{
					Kind:     contract.UnnormalizedData,
					Path:     name,
					Expected: ir.TypeInfo{Base: tgt.Base, Constraints: tgt.Constraints},
					Actual:   ir.TypeInfo{Base: src.Base, Constraints: src.Constraints},
					Location: in.Contract.ToSchema.Location,
					Message: fmt.Sprintf("field %q: target enforces %s validation the source does not",
						name, kind),
					Level: contract.LevelMedium,
				})
			}
		}
	}
	return out
}

func hasConstraint(cs []ir.Constraint, kind ir.ConstraintKind) bool {
	for _, c := range cs {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// MissingSchemaRule fires when either side's schema reference was flagged
// as degraded upstream (handler parameter or return type reduced to an
// untyped map or "any"). A degraded request side is critical: nothing
// about the inbound payload is verified. A degraded response side is high.
type MissingSchemaRule struct{}

func (MissingSchemaRule) Name() string { return "missing_schema" }

func (MissingSchemaRule) Apply(in Input) []contract.Mismatch {
	var out []contract.Mismatch
	if in.Contract.FromSchema.MissingSchema() {
		out = append(out, contract.Mismatch{
			Kind:     contract.MissingSchema,
			Path:     in.Contract.FromSchema.Name,
			Location: in.Contract.FromSchema.Location,
			Message:  "source side has no extractable schema; request payload is unverified",
			Level:    contract.LevelCritical,
		})
	}
	if in.Contract.ToSchema.MissingSchema() {
		out = append(out, contract.Mismatch{
			Kind:     contract.MissingSchema,
			Path:     in.Contract.ToSchema.Name,
			Location: in.Contract.ToSchema.Location,
			Message:  "target side has no extractable schema; response payload is unverified",
			Level:    contract.LevelHigh,
		})
	}
	return out
}
