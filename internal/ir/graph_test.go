package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode_IDsAreSequential(t *testing.T) {
	g := NewGraph()

	a := g.AddNode(ModuleNode{Path: "app/main.py"})
	b := g.AddNode(FunctionNode{Name: "get_item", File: "app/main.py", Line: 10})

	assert.Equal(t, NodeID(0), a)
	assert.Equal(t, NodeID(1), b)
	assert.Equal(t, 2, g.NodeCount())
}

func TestNode_OutOfRange(t *testing.T) {
	g := NewGraph()
	g.AddNode(ModuleNode{Path: "m"})

	_, ok := g.Node(NodeID(5))
	assert.False(t, ok)
	_, ok = g.Node(InvalidNode)
	assert.False(t, ok)
}

func TestAddEdge_ForwardReferenceAllowed(t *testing.T) {
	g := NewGraph()
	caller := g.AddNode(FunctionNode{Name: "handler"})

	// Target node does not exist yet; insertion must not fail.
	g.AddEdge(caller, NodeID(41), CallEdge{Location: Location{File: "f.py", Line: 3}})
	assert.Equal(t, 1, g.EdgeCount())
}

func TestEdgesFromTo(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(FunctionNode{Name: "a"})
	b := g.AddNode(FunctionNode{Name: "b"})
	c := g.AddNode(FunctionNode{Name: "c"})

	g.AddEdge(a, b, CallEdge{})
	g.AddEdge(a, c, CallEdge{})
	g.AddEdge(b, c, ReturnEdge{})

	require.Len(t, g.EdgesFrom(a), 2)
	require.Len(t, g.EdgesTo(c), 2)
	assert.Empty(t, g.EdgesFrom(c))
	assert.Equal(t, EdgeKindReturn, g.EdgesTo(c)[1].Payload.Kind())
}

func TestFindNodes_Routes(t *testing.T) {
	g := NewGraph()
	g.AddNode(ModuleNode{Path: "m"})
	h := g.AddNode(FunctionNode{Name: "list_items"})
	r := g.AddNode(RouteNode{Path: "/items", Method: "GET", Handler: h})

	routes := g.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, r, routes[0])
}

func TestStats_CountsPerKind(t *testing.T) {
	g := NewGraph()
	g.AddNode(ModuleNode{Path: "m"})
	h := g.AddNode(FunctionNode{Name: "h"})
	cls := g.AddNode(ClassNode{Name: "Item"})
	g.AddNode(MethodNode{Name: "save", Class: cls})
	g.AddNode(RouteNode{Path: "/items", Method: "GET", Handler: h})
	g.AddNode(SchemaNode{Schema: SchemaReference{Name: "Item", Type: SchemaValidatedModel}})
	g.AddEdge(h, cls, CallEdge{})

	s := g.Stats()
	assert.Equal(t, Stats{Modules: 1, Functions: 1, Methods: 1, Classes: 1, Routes: 1, Schemas: 1, Edges: 1}, s)
}

// allNodeVariants and allEdgeVariants pin the closed variant sets. Adding a
// new variant without extending the switches in snapshot.go (and every
// other consumption site) should make this test fail first.
func TestVariantSets_Exhaustive(t *testing.T) {
	nodes := []GraphNode{
		ModuleNode{}, FunctionNode{}, MethodNode{}, ClassNode{}, RouteNode{}, SchemaNode{},
	}
	seenN := map[NodeKind]bool{}
	for _, n := range nodes {
		seenN[n.Kind()] = true
	}
	for _, k := range []NodeKind{NodeKindModule, NodeKindFunction, NodeKindMethod, NodeKindClass, NodeKindRoute, NodeKindSchema} {
		assert.True(t, seenN[k], "node kind %s not covered", k)
	}

	edges := []GraphEdge{ImportEdge{}, CallEdge{}, DataFlowEdge{}, ReturnEdge{}}
	seenE := map[EdgeKind]bool{}
	for _, e := range edges {
		seenE[e.Kind()] = true
	}
	for _, k := range []EdgeKind{EdgeKindImport, EdgeKindCall, EdgeKindDataFlow, EdgeKindReturn} {
		assert.True(t, seenE[k], "edge kind %s not covered", k)
	}
}

func TestInferBaseType(t *testing.T) {
	tests := []struct {
		token string
		want  BaseType
	}{
		{"str", BaseString},
		{"String", BaseString},
		{"int", BaseInteger},
		{"INTEGER", BaseInteger},
		{"float", BaseNumber},
		{"double", BaseNumber},
		{"number", BaseNumber},
		{"bool", BaseBoolean},
		{"boolean", BaseBoolean},
		{"list", BaseArray},
		{"array", BaseArray},
		{"dict", BaseObject},
		{"object", BaseObject},
		{"None", BaseNull},
		{"null", BaseNull},
		{"datetime", BaseUnknown},
		{"", BaseUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferBaseType(tt.token), "token %q", tt.token)
	}
}
