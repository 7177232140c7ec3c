package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
)

func TestGenerateMermaid(t *testing.T) {
	chains := []contract.DataChain{
		{
			ID:   "c1",
			Name: "POST /items",
			Type: contract.ChainFull,
			Links: []contract.Link{
				{ID: "l1", Type: contract.LinkSource, Schema: ir.SchemaReference{Name: "itemSchema"}},
				{ID: "l2", Type: contract.LinkSink, Schema: ir.SchemaReference{Name: "ItemCreate"}},
			},
			Contracts: []contract.Contract{
				{FromLink: "l1", ToLink: "l2", Severity: contract.SeverityCritical},
			},
		},
	}

	out := GenerateMermaid(chains)
	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, `subgraph C0["POST /items"]`)
	assert.Contains(t, out, `N0["source: itemSchema"]`)
	assert.Contains(t, out, `N1["sink: ItemCreate"]`)
	assert.Contains(t, out, "N0 -->|critical| N1")
}

func TestGenerateMermaid_InfoArrowUnlabeled(t *testing.T) {
	chains := []contract.DataChain{
		{
			ID:   "c1",
			Name: "GET /items",
			Links: []contract.Link{
				{ID: "a", Type: contract.LinkSource},
				{ID: "b", Type: contract.LinkSink, Schema: ir.SchemaReference{Name: "Item"}},
			},
			Contracts: []contract.Contract{
				{FromLink: "a", ToLink: "b", Severity: contract.SeverityInfo},
			},
		},
	}

	out := GenerateMermaid(chains)
	assert.Contains(t, out, `N0["source: ?"]`)
	assert.Contains(t, out, "N0 --> N1\n")
	assert.NotContains(t, out, "|info|")
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, "GET /items/(id)", escapeLabel("GET /items/{id}"))
	assert.Equal(t, "a'b(c)", escapeLabel(`a"b[c]`))
}
