// Package mcptools exposes contract analysis over the Model Context
// Protocol so agents can run checks and query results interactively.
package mcptools

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seamcheck/seamcheck/internal/analyzer"
	"github.com/seamcheck/seamcheck/internal/config"
	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
	"github.com/seamcheck/seamcheck/internal/normalize"
	"github.com/seamcheck/seamcheck/internal/report"
)

// ContractService holds the last analysis result and answers tool calls
// against it. Tools that need a result before analyze_project has run
// get an explicit error rather than empty output.
type ContractService struct {
	mu   sync.RWMutex
	res  *analyzer.Result
	norm *normalize.Normalizer
}

// NewContractService creates an empty ContractService.
func NewContractService() *ContractService {
	return &ContractService{norm: normalize.New()}
}

func (s *ContractService) result() (*analyzer.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.res == nil {
		return nil, fmt.Errorf("no analysis loaded: run analyze_project first")
	}
	return s.res, nil
}

// --- MCP tool input/output types. The SDK generates JSON schemas from
// the struct tags.

// AnalyzeProjectInput is the input for the analyze_project tool.
type AnalyzeProjectInput struct {
	ProjectRoot string   `json:"projectRoot" jsonschema:"absolute path to the project to analyze"`
	SpecPath    string   `json:"specPath,omitempty" jsonschema:"path to the OpenAPI document, relative to the project root"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from scanning"`
}

// AnalyzeProjectOutput is the result of the analyze_project tool.
type AnalyzeProjectOutput struct {
	Summary report.Summary `json:"summary"`
}

// ChainSummary is one chain in list_chains output.
type ChainSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      contract.ChainType `json:"type"`
	Direction contract.Direction `json:"direction"`
	Links     int                `json:"links"`
	Severity  contract.Severity  `json:"severity"`
}

// ListChainsInput is the input for the list_chains tool.
type ListChainsInput struct {
	Type string `json:"type,omitempty" jsonschema:"filter by chain type: full, frontend_internal, backend_internal"`
}

// ListChainsOutput is the result of the list_chains tool.
type ListChainsOutput struct {
	Chains []ChainSummary `json:"chains"`
	Total  int            `json:"total"`
}

// CheckContractsInput is the input for the check_contracts tool.
type CheckContractsInput struct {
	ChainID string `json:"chainId,omitempty" jsonschema:"restrict to one chain by id; empty means every chain"`
}

// CheckContractsOutput is the result of the check_contracts tool.
type CheckContractsOutput struct {
	Contracts []contract.Contract `json:"contracts"`
	Total     int                 `json:"total"`
}

// ValidateRoutesInput is the input for the validate_routes tool.
type ValidateRoutesInput struct{}

// ValidateRoutesOutput is the result of the validate_routes tool.
type ValidateRoutesOutput struct {
	MissingInSpec []string `json:"missingInSpec,omitempty"`
	MissingInCode []string `json:"missingInCode,omitempty"`
}

// GetSchemaInput is the input for the get_schema tool.
type GetSchemaInput struct {
	Name string `json:"name" jsonschema:"declared schema name (model class, validator, or interface)"`
}

// GetSchemaOutput is the result of the get_schema tool.
type GetSchemaOutput struct {
	Name       string `json:"name"`
	Origin     string `json:"origin"`
	File       string `json:"file,omitempty"`
	JSONSchema string `json:"jsonSchema"`
}

// --- Handlers

// AnalyzeProject runs the full pipeline and stores the result for the
// other tools.
func (s *ContractService) AnalyzeProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeProjectInput,
) (*mcp.CallToolResult, AnalyzeProjectOutput, error) {
	if input.ProjectRoot == "" {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("projectRoot is required")
	}

	cfg := &config.ProjectConfig{
		SpecPath:    input.SpecPath,
		ExcludeDirs: input.ExcludeDirs,
	}
	res, err := analyzer.New(input.ProjectRoot, cfg).Run(ctx)
	if err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("analyze: %w", err)
	}

	s.mu.Lock()
	s.res = res
	s.mu.Unlock()

	return nil, AnalyzeProjectOutput{Summary: res.Report.Summary}, nil
}

// ListChains returns chain summaries, optionally filtered by type.
func (s *ContractService) ListChains(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListChainsInput,
) (*mcp.CallToolResult, ListChainsOutput, error) {
	res, err := s.result()
	if err != nil {
		return nil, ListChainsOutput{}, err
	}

	var out ListChainsOutput
	for _, c := range res.Chains {
		if input.Type != "" && string(c.Type) != input.Type {
			continue
		}
		out.Chains = append(out.Chains, ChainSummary{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			Direction: c.Direction,
			Links:     len(c.Links),
			Severity:  chainSeverity(c),
		})
	}
	out.Total = len(out.Chains)
	return nil, out, nil
}

// CheckContracts returns evaluated contracts, for one chain or all.
func (s *ContractService) CheckContracts(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CheckContractsInput,
) (*mcp.CallToolResult, CheckContractsOutput, error) {
	res, err := s.result()
	if err != nil {
		return nil, CheckContractsOutput{}, err
	}

	var out CheckContractsOutput
	for _, c := range res.Chains {
		if input.ChainID != "" && c.ID != input.ChainID {
			continue
		}
		out.Contracts = append(out.Contracts, c.Contracts...)
	}
	if input.ChainID != "" && len(out.Contracts) == 0 {
		return nil, CheckContractsOutput{}, fmt.Errorf("unknown chain id %q", input.ChainID)
	}
	out.Total = len(out.Contracts)
	return nil, out, nil
}

// ValidateRoutes reconciles discovered routes against the API document.
func (s *ContractService) ValidateRoutes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ValidateRoutesInput,
) (*mcp.CallToolResult, ValidateRoutesOutput, error) {
	res, err := s.result()
	if err != nil {
		return nil, ValidateRoutesOutput{}, err
	}
	if res.Report.Routes == nil {
		return nil, ValidateRoutesOutput{}, fmt.Errorf("no API document was loaded for this analysis")
	}
	return nil, ValidateRoutesOutput{
		MissingInSpec: res.Report.Routes.MissingInSpec,
		MissingInCode: res.Report.Routes.MissingInCode,
	}, nil
}

// GetSchema normalizes a declared schema and returns its JSON Schema
// rendering.
func (s *ContractService) GetSchema(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetSchemaInput,
) (*mcp.CallToolResult, GetSchemaOutput, error) {
	if input.Name == "" {
		return nil, GetSchemaOutput{}, fmt.Errorf("name is required")
	}
	res, err := s.result()
	if err != nil {
		return nil, GetSchemaOutput{}, err
	}

	ref, ok := findSchema(res.Graph, input.Name)
	if !ok {
		return nil, GetSchemaOutput{}, fmt.Errorf("no schema named %q", input.Name)
	}

	canonical, err := s.norm.Normalize(ref)
	if err != nil {
		return nil, GetSchemaOutput{}, fmt.Errorf("normalize %q: %w", input.Name, err)
	}
	blob, err := normalize.MarshalJSONSchema(canonical)
	if err != nil {
		return nil, GetSchemaOutput{}, err
	}

	return nil, GetSchemaOutput{
		Name:       ref.Name,
		Origin:     string(ref.Type),
		File:       ref.Location.File,
		JSONSchema: blob,
	}, nil
}

// findSchema looks up a declared schema by name across schema nodes and
// model classes.
func findSchema(g *ir.Graph, name string) (ir.SchemaReference, bool) {
	ids := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		switch v := n.(type) {
		case ir.SchemaNode:
			return v.Schema.Name == name
		case ir.ClassNode:
			return v.Schema != nil && v.Schema.Name == name
		}
		return false
	})
	if len(ids) == 0 {
		return ir.SchemaReference{}, false
	}
	node, _ := g.Node(ids[0])
	switch v := node.(type) {
	case ir.SchemaNode:
		return v.Schema, true
	case ir.ClassNode:
		return *v.Schema, true
	}
	return ir.SchemaReference{}, false
}

// chainSeverity is the worst contract severity in the chain.
func chainSeverity(c contract.DataChain) contract.Severity {
	worst := contract.SeverityInfo
	for _, ct := range c.Contracts {
		switch ct.Severity {
		case contract.SeverityCritical:
			return contract.SeverityCritical
		case contract.SeverityWarning:
			worst = contract.SeverityWarning
		}
	}
	return worst
}
