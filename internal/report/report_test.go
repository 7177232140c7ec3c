package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
)

func sampleChains() []contract.DataChain {
	return []contract.DataChain{
		{
			ID:        "c1",
			Name:      "POST /items",
			Direction: contract.FrontendToBackend,
			Type:      contract.ChainFull,
			Contracts: []contract.Contract{
				{
					FromSchema: ir.SchemaReference{Name: "itemSchema"},
					ToSchema:   ir.SchemaReference{Name: "ItemCreate"},
					Severity:   contract.SeverityCritical,
					Mismatches: []contract.Mismatch{
						{
							Kind:     contract.TypeMismatch,
							Path:     "discount",
							Level:    contract.LevelHigh,
							Message:  "discount is string upstream but number downstream",
							Location: ir.Location{File: "src/api.ts", Line: 12},
						},
					},
				},
				{
					FromSchema: ir.SchemaReference{Name: "ItemCreate"},
					ToSchema:   ir.SchemaReference{Name: "items_table"},
					Severity:   contract.SeverityInfo,
				},
			},
		},
		{
			ID:        "c2",
			Name:      "GET /items",
			Direction: contract.FrontendToBackend,
			Type:      contract.ChainFull,
			Contracts: []contract.Contract{
				{Severity: contract.SeverityWarning},
			},
		},
	}
}

func TestBuild_Summary(t *testing.T) {
	r := Build("demo", sampleChains(), nil)

	assert.Equal(t, 2, r.Summary.Chains)
	assert.Equal(t, 3, r.Summary.Contracts)
	assert.Equal(t, 1, r.Summary.Mismatches)
	assert.Equal(t, 1, r.Summary.Critical)
	assert.Equal(t, 1, r.Summary.Warning)
	assert.Equal(t, 1, r.Summary.Info)
}

func TestText_ChainsSortedAndMismatchesListed(t *testing.T) {
	r := Build("demo", sampleChains(), &RouteReconciliation{
		MissingInSpec: []string{"DELETE /items/{id}"},
		MissingInCode: []string{"PUT /items/{id}"},
	})

	out := r.Text()
	assert.Contains(t, out, "seamcheck: demo")
	assert.Contains(t, out, "POST /items")
	assert.Contains(t, out, "itemSchema -> ItemCreate  [critical]")
	assert.Contains(t, out, `type_mismatch at "discount"`)
	assert.Contains(t, out, "src/api.ts:12")
	assert.Contains(t, out, "undeclared in spec: DELETE /items/{id}")
	assert.Contains(t, out, "unimplemented:      PUT /items/{id}")
	assert.Contains(t, out, "2 chains, 3 contracts, 1 mismatches (1 critical, 1 warning, 1 info)")

	// GET sorts before POST.
	assert.Less(t, indexOf(out, "GET /items"), indexOf(out, "POST /items"))
}

func TestJSON_RoundTrips(t *testing.T) {
	r := Build("demo", sampleChains(), nil)

	blob, err := r.JSON()
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(blob, &decoded))
	assert.Equal(t, r.Summary, decoded.Summary)
	require.Len(t, decoded.Chains, 2)
	assert.Equal(t, "POST /items", decoded.Chains[0].Name)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
