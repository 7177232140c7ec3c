package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleGraph() *Graph {
	g := NewGraph()
	mod := g.AddNode(ModuleNode{Path: "app/routes.py"})
	handler := g.AddNode(FunctionNode{
		Name: "create_item",
		File: "app/routes.py",
		Line: 12,
		Params: []Parameter{
			{Name: "item", Type: TypeInfo{
				Base: BaseObject,
				SchemaRef: &SchemaReference{
					Name: "ItemCreate",
					Type: SchemaValidatedModel,
					Metadata: map[string]string{
						MetaFields:   "title:str,price:float",
						MetaRequired: "title",
					},
				},
			}},
		},
	})
	route := g.AddNode(RouteNode{
		Path:     "/items",
		Method:   "POST",
		Handler:  handler,
		Location: Location{File: "app/routes.py", Line: 11},
	})
	g.AddEdge(mod, handler, ImportEdge{ImportPath: "app.routes", File: "app/routes.py"})
	g.AddEdge(route, handler, CallEdge{
		ArgumentMapping: []ArgBinding{{Name: "item", Value: "payload"}},
		Location:        Location{File: "app/routes.py", Line: 12},
	})
	return g
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	g := buildSampleGraph()

	snap, err := g.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, g.NodeCount(), restored.NodeCount())
	assert.Equal(t, g.EdgeCount(), restored.EdgeCount())

	n, ok := restored.Node(NodeID(1))
	require.True(t, ok)
	fn, ok := n.(FunctionNode)
	require.True(t, ok, "node 1 should round-trip as FunctionNode")
	assert.Equal(t, "create_item", fn.Name)
	require.Len(t, fn.Params, 1)
	require.NotNil(t, fn.Params[0].Type.SchemaRef)
	assert.Equal(t, "ItemCreate", fn.Params[0].Type.SchemaRef.Name)
	assert.Equal(t, "title:str,price:float", fn.Params[0].Type.SchemaRef.Meta(MetaFields))

	edges := restored.EdgesFrom(NodeID(2))
	require.Len(t, edges, 1)
	call, ok := edges[0].Payload.(CallEdge)
	require.True(t, ok)
	assert.Equal(t, "payload", call.ArgumentMapping[0].Value)
}

func TestRestore_DanglingEdge_Fails(t *testing.T) {
	g := buildSampleGraph()
	snap, err := g.Snapshot()
	require.NoError(t, err)

	// Corrupt the snapshot: point an edge at a node id that does not exist.
	snap.Edges[0].To = NodeID(99)

	_, err = Restore(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptGraph)
}

func TestRestore_NegativeEndpoint_Fails(t *testing.T) {
	g := buildSampleGraph()
	snap, err := g.Snapshot()
	require.NoError(t, err)

	snap.Edges[1].From = NodeID(-3)

	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrCorruptGraph)
}

func TestRestore_UnknownKind_Fails(t *testing.T) {
	g := buildSampleGraph()
	snap, err := g.Snapshot()
	require.NoError(t, err)

	snap.Nodes[0].Kind = NodeKind("widget")

	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrCorruptGraph)
}
