package rules

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
	"github.com/seamcheck/seamcheck/internal/normalize"
)

func modelRef(name, fields, required string) ir.SchemaReference {
	return ir.SchemaReference{
		Name: name,
		Type: ir.SchemaValidatedModel,
		Metadata: map[string]string{
			ir.MetaFields:   fields,
			ir.MetaRequired: required,
		},
	}
}

func newContract(from, to ir.SchemaReference) *contract.Contract {
	return &contract.Contract{
		FromLink:   "l0",
		ToLink:     "l1",
		FromSchema: from,
		ToSchema:   to,
		Severity:   contract.SeverityInfo,
	}
}

func TestCheck_CleanMatch(t *testing.T) {
	ct := newContract(
		modelRef("Req", "id:int", "id"),
		modelRef("Resp", "id:int", "id"),
	)

	NewChecker(normalize.New()).Check(ct)

	assert.Empty(t, ct.Mismatches)
	assert.Equal(t, contract.SeverityInfo, ct.Severity)
}

func TestCheck_TypeDrift(t *testing.T) {
	ct := newContract(
		modelRef("Req", "discount:str", "discount"),
		modelRef("Resp", "discount:number", "discount"),
	)

	NewChecker(normalize.New()).Check(ct)

	require.Len(t, ct.Mismatches, 1)
	m := ct.Mismatches[0]
	assert.Equal(t, contract.TypeMismatch, m.Kind)
	assert.Equal(t, "discount", m.Path)
	assert.Equal(t, contract.LevelHigh, m.Level)
	assert.Equal(t, ir.BaseNumber, m.Expected.Base)
	assert.Equal(t, ir.BaseString, m.Actual.Base)
	assert.Equal(t, contract.SeverityCritical, ct.Severity)
}

func TestCheck_MissingField(t *testing.T) {
	ct := newContract(
		modelRef("Req", "", ""),
		modelRef("Resp", "title:str", "title"),
	)

	NewChecker(normalize.New()).Check(ct)

	require.Len(t, ct.Mismatches, 1)
	m := ct.Mismatches[0]
	assert.Equal(t, contract.MissingField, m.Kind)
	assert.Equal(t, "title", m.Path)
	assert.Equal(t, contract.LevelHigh, m.Level)
	assert.Equal(t, contract.SeverityWarning, ct.Severity)
}

func TestCheck_MissingSchemaPropagation(t *testing.T) {
	from := ir.UnknownSchema(ir.Location{File: "app/routes.py", Line: 4})
	to := modelRef("Resp", "id:int", "id")

	ct := newContract(from, to)
	NewChecker(normalize.New()).Check(ct)

	require.Len(t, ct.Mismatches, 1)
	m := ct.Mismatches[0]
	assert.Equal(t, contract.MissingSchema, m.Kind)
	assert.Equal(t, contract.LevelCritical, m.Level)
}

func TestCheck_MissingSchemaOnTarget_High(t *testing.T) {
	ct := newContract(
		modelRef("Req", "id:int", "id"),
		ir.UnknownSchema(ir.Location{File: "app/routes.py", Line: 9}),
	)
	NewChecker(normalize.New()).Check(ct)

	require.Len(t, ct.Mismatches, 1)
	assert.Equal(t, contract.MissingSchema, ct.Mismatches[0].Kind)
	assert.Equal(t, contract.LevelHigh, ct.Mismatches[0].Level)
}

func TestCheck_UnverifiableContract_NoFindings(t *testing.T) {
	// raw_json_schema with no blob cannot normalize; the contract must be
	// skipped, not reported, and not abort anything.
	ct := newContract(
		ir.SchemaReference{Name: "broken", Type: ir.SchemaRawJSON},
		modelRef("Resp", "id:int", "id"),
	)
	NewChecker(normalize.New()).Check(ct)

	assert.Empty(t, ct.Mismatches)
	assert.Equal(t, contract.SeverityInfo, ct.Severity)
}

func TestUnnormalizedData_FormatExpectedOnTargetOnly(t *testing.T) {
	from := ir.SchemaReference{
		Name: "SignupForm",
		Type: ir.SchemaRuntimeValidator,
		Metadata: map[string]string{
			ir.MetaJSONSchema: `{"type":"object","properties":{"email":{"type":"string"}},"required":["email"]}`,
		},
	}
	to := ir.SchemaReference{
		Name: "SignupRequest",
		Type: ir.SchemaValidatedModel,
		Metadata: map[string]string{
			ir.MetaJSONSchema: `{"type":"object","properties":{"email":{"type":"string","format":"email"}},"required":["email"]}`,
		},
	}

	ct := newContract(from, to)
	NewChecker(normalize.New()).Check(ct)

	require.Len(t, ct.Mismatches, 1)
	m := ct.Mismatches[0]
	assert.Equal(t, contract.UnnormalizedData, m.Kind)
	assert.Equal(t, "email", m.Path)
	assert.Equal(t, contract.LevelMedium, m.Level)
}

func TestUnnormalizedData_SourceAlsoValidates_NoFinding(t *testing.T) {
	blob := `{"type":"object","properties":{"email":{"type":"string","format":"email"}},"required":["email"]}`
	ct := newContract(
		ir.SchemaReference{Name: "a", Type: ir.SchemaRuntimeValidator, Metadata: map[string]string{ir.MetaJSONSchema: blob}},
		ir.SchemaReference{Name: "b", Type: ir.SchemaValidatedModel, Metadata: map[string]string{ir.MetaJSONSchema: blob}},
	)
	NewChecker(normalize.New()).Check(ct)
	assert.Empty(t, ct.Mismatches)
}

func TestTypeMismatch_UnknownTokensSkipped(t *testing.T) {
	ct := newContract(
		modelRef("Req", "when:datetime", "when"),
		modelRef("Resp", "when:str", "when"),
	)
	NewChecker(normalize.New()).Check(ct)
	assert.Empty(t, ct.Mismatches)
}

func TestRuleIndependence_OrderDoesNotMatter(t *testing.T) {
	ct := newContract(
		modelRef("Req", "discount:str", "discount"),
		modelRef("Resp", "discount:number,title:str", "discount,title"),
	)

	orderings := [][]Rule{
		{TypeMismatchRule{}, MissingFieldRule{}, UnnormalizedDataRule{}, MissingSchemaRule{}},
		{MissingSchemaRule{}, UnnormalizedDataRule{}, MissingFieldRule{}, TypeMismatchRule{}},
		{MissingFieldRule{}, MissingSchemaRule{}, TypeMismatchRule{}, UnnormalizedDataRule{}},
	}

	var baseline []string
	for i, order := range orderings {
		fresh := *ct
		NewCheckerWithRules(normalize.New(), order).Check(&fresh)

		keys := make([]string, 0, len(fresh.Mismatches))
		for _, m := range fresh.Mismatches {
			keys = append(keys, string(m.Kind)+"@"+m.Path)
		}
		sort.Strings(keys)

		if i == 0 {
			baseline = keys
			continue
		}
		assert.Equal(t, baseline, keys, "ordering %d produced a different multiset", i)
	}
}

func TestSeverityMonotonicity(t *testing.T) {
	// Any TypeMismatch forces critical even with other mismatch kinds present.
	ct := newContract(
		modelRef("Req", "discount:str", "discount"),
		modelRef("Resp", "discount:number,title:str", "discount,title"),
	)
	NewChecker(normalize.New()).Check(ct)
	require.NotEmpty(t, ct.Mismatches)
	assert.Equal(t, contract.SeverityCritical, ct.Severity)

	// No mismatches at all stays info.
	clean := newContract(modelRef("A", "id:int", "id"), modelRef("B", "id:int", "id"))
	NewChecker(normalize.New()).Check(clean)
	assert.Equal(t, contract.SeverityInfo, clean.Severity)
}

func TestMissingFieldRule_DefensiveNonOptionalPass(t *testing.T) {
	// A hand-built canonical schema whose optional flags drifted from its
	// required list: "title" is non-optional but not listed as required.
	in := Input{
		Contract: newContract(modelRef("A", "", ""), modelRef("B", "", "")),
		Source:   &normalize.CanonicalSchema{SchemaType: "object", Properties: map[string]normalize.FieldInfo{}},
		Target: &normalize.CanonicalSchema{
			SchemaType: "object",
			Properties: map[string]normalize.FieldInfo{
				"title": {FieldType: "str", Base: ir.BaseString, Optional: false},
			},
		},
	}

	out := MissingFieldRule{}.Apply(in)
	require.Len(t, out, 1)
	assert.Equal(t, contract.MissingField, out[0].Kind)
	assert.Equal(t, "title", out[0].Path)
}
