package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamcheck/seamcheck/internal/ir"
)

func buildProject(t *testing.T, sources map[string]string) *ir.Graph {
	t.Helper()
	parser := NewParser()
	builder := NewGraphBuilder(DefaultPolicy())
	for file, src := range sources {
		res, err := parser.Parse(context.Background(), file, []byte(src), DetectLanguage(file))
		require.NoError(t, err)
		builder.Add(*res)
	}
	return builder.Build()
}

func TestGraphBuilder_EndToEnd(t *testing.T) {
	g := buildProject(t, map[string]string{
		"app/main.py": pyBackendSource,
		"src/api.ts":  tsFrontendSource,
	})

	routes := g.Routes()
	require.Len(t, routes, 2)

	var postRoute ir.RouteNode
	var postID ir.NodeID
	for _, id := range routes {
		node, _ := g.Node(id)
		rn := node.(ir.RouteNode)
		if rn.Method == "POST" {
			postRoute, postID = rn, id
		}
	}
	require.Equal(t, "/items", postRoute.Path)

	// The route points at its handler and carries the response model.
	require.NotEqual(t, ir.InvalidNode, postRoute.Handler)
	handler, ok := g.Node(postRoute.Handler)
	require.True(t, ok)
	assert.Equal(t, "create_item", handler.(ir.FunctionNode).Name)
	require.NotNil(t, postRoute.ResponseSchema)
	assert.Equal(t, "ItemCreate", postRoute.ResponseSchema.Name)

	// Route -> handler call edge with identity bindings.
	var toHandler bool
	for _, e := range g.EdgesFrom(postID) {
		if e.To == postRoute.Handler {
			toHandler = true
			call := e.Payload.(ir.CallEdge)
			require.Len(t, call.ArgumentMapping, 1)
			assert.Equal(t, ir.ArgBinding{Name: "item", Value: "item"}, call.ArgumentMapping[0])
		}
	}
	assert.True(t, toHandler)
}

func TestGraphBuilder_HandlerParamResolvesToModel(t *testing.T) {
	g := buildProject(t, map[string]string{"app/main.py": pyBackendSource})

	ids := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		fn, ok := n.(ir.FunctionNode)
		return ok && fn.Name == "create_item"
	})
	require.Len(t, ids, 1)

	node, _ := g.Node(ids[0])
	fn := node.(ir.FunctionNode)
	require.Len(t, fn.Params, 1)
	ref := fn.Params[0].Type.SchemaRef
	require.NotNil(t, ref)
	assert.Equal(t, ir.SchemaValidatedModel, ref.Type)
	assert.Equal(t, "title:str,price:float,discount:float", ref.Meta(ir.MetaFields))
	assert.Equal(t, "title,price", ref.Meta(ir.MetaRequired))
}

func TestGraphBuilder_CallEdgeBindsPositionalArgs(t *testing.T) {
	g := buildProject(t, map[string]string{"app/main.py": pyBackendSource})

	handlers := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		fn, ok := n.(ir.FunctionNode)
		return ok && fn.Name == "create_item"
	})
	targets := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		fn, ok := n.(ir.FunctionNode)
		return ok && fn.Name == "insert_item"
	})
	require.Len(t, handlers, 1)
	require.Len(t, targets, 1)

	var found bool
	for _, e := range g.EdgesFrom(handlers[0]) {
		if e.To != targets[0] {
			continue
		}
		call := e.Payload.(ir.CallEdge)
		require.Len(t, call.ArgumentMapping, 1)
		// The positional "item" argument binds to insert_item's "record".
		assert.Equal(t, ir.ArgBinding{Name: "record", Value: "item"}, call.ArgumentMapping[0])
		found = true
	}
	assert.True(t, found)
}

func TestGraphBuilder_ValidatorGetsUsageFromFetch(t *testing.T) {
	g := buildProject(t, map[string]string{"src/api.ts": tsFrontendSource})

	ids := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		sn, ok := n.(ir.SchemaNode)
		return ok && sn.Schema.Type == ir.SchemaRuntimeValidator
	})
	require.Len(t, ids, 1)

	node, _ := g.Node(ids[0])
	schema := node.(ir.SchemaNode).Schema
	assert.Equal(t, "/items", schema.Meta(ir.MetaUsagePath))
	assert.Equal(t, "POST", schema.Meta(ir.MetaUsageMethod))
}

func TestGraphBuilder_StructuralSchemaUsesTriples(t *testing.T) {
	g := buildProject(t, map[string]string{"src/api.ts": tsFrontendSource})

	ids := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		sn, ok := n.(ir.SchemaNode)
		return ok && sn.Schema.Type == ir.SchemaStructuralType && sn.Schema.Name == "Item"
	})
	require.Len(t, ids, 1)

	node, _ := g.Node(ids[0])
	assert.Equal(t,
		"id:number:required,title:string:required,discount:number:optional",
		node.(ir.SchemaNode).Schema.Meta(ir.MetaFields))
}

func TestGraphBuilder_UntypedParamCarriesNoSchema(t *testing.T) {
	g := buildProject(t, map[string]string{"app/raw.py": `
@app.post("/raw")
def handle_raw(payload: dict):
    pass
`})

	ids := g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		fn, ok := n.(ir.FunctionNode)
		return ok && fn.Name == "handle_raw"
	})
	require.Len(t, ids, 1)

	node, _ := g.Node(ids[0])
	fn := node.(ir.FunctionNode)
	require.Len(t, fn.Params, 1)
	assert.Nil(t, fn.Params[0].Type.SchemaRef)
	assert.Equal(t, ir.BaseObject, fn.Params[0].Type.Base)
}

func TestGraphBuilder_ImportsWired(t *testing.T) {
	g := buildProject(t, map[string]string{
		"app/main.py":   "from app.models import ItemCreate\n",
		"app/models.py": "class ItemCreate(BaseModel):\n    title: str\n",
	})

	var importEdges int
	for _, e := range g.Edges() {
		if e.Payload.Kind() == ir.EdgeKindImport {
			importEdges++
		}
	}
	assert.Equal(t, 1, importEdges)
}

func TestPolicy_IsUntyped(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.IsUntyped("dict"))
	assert.True(t, p.IsUntyped("Any"))
	assert.False(t, p.IsUntyped("ItemCreate"))
	assert.False(t, p.IsUntyped("str"))

	custom := Policy{UntypedTokens: []string{"JSONValue"}}
	assert.True(t, custom.IsUntyped("jsonvalue"))
	assert.False(t, custom.IsUntyped("dict"))
}
