package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewContractMCPServer creates an MCP server with all 5 contract analysis tools registered.
func NewContractMCPServer(svc *ContractService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "seamcheck",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Analyze a project for cross-stack data contract drift. Parses Python and TypeScript sources, builds the code graph, assembles data chains, and checks every schema handoff. Results are held for the other tools.",
	}, svc.AnalyzeProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_chains",
		Description: "List discovered data chains from the last analysis with their worst contract severity. Optionally filter by chain type (full, frontend_internal, backend_internal).",
	}, svc.ListChains)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_contracts",
		Description: "Return evaluated contracts with their mismatches, for one chain by id or for every chain in the last analysis.",
	}, svc.CheckContracts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_routes",
		Description: "Reconcile routes discovered in code against the loaded API document. Returns routes missing from the document and documented routes with no implementation.",
	}, svc.ValidateRoutes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_schema",
		Description: "Normalize a declared schema (model class, runtime validator, or interface) from the last analysis and return its JSON Schema rendering.",
	}, svc.GetSchema)

	return server
}

// RunMCPServer starts an HTTP server exposing the contract analysis MCP tools.
func RunMCPServer(ctx context.Context, svc *ContractService, addr string) error {
	server := NewContractMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
