package ir

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptGraph is wrapped by Restore when a persisted snapshot fails
// integrity checks. A corrupted cache must never be silently repaired.
var ErrCorruptGraph = errors.New("corrupted graph snapshot")

// nodeEnvelope and edgeEnvelope carry the variant tag next to the raw
// payload so sum types survive JSON round-trips.
type nodeEnvelope struct {
	Kind NodeKind        `json:"kind"`
	Node json.RawMessage `json:"node"`
}

type edgeEnvelope struct {
	From NodeID          `json:"from"`
	To   NodeID          `json:"to"`
	Kind EdgeKind        `json:"kind"`
	Edge json.RawMessage `json:"edge"`
}

// Snapshot is the serializable form of a Graph.
type Snapshot struct {
	Nodes []nodeEnvelope `json:"nodes"`
	Edges []edgeEnvelope `json:"edges"`
}

// Snapshot serializes the graph into a form suitable for persistence.
func (g *Graph) Snapshot() (*Snapshot, error) {
	s := &Snapshot{
		Nodes: make([]nodeEnvelope, 0, len(g.nodes)),
		Edges: make([]edgeEnvelope, 0, len(g.edges)),
	}
	for i, n := range g.nodes {
		raw, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("marshal node %d: %w", i, err)
		}
		s.Nodes = append(s.Nodes, nodeEnvelope{Kind: n.Kind(), Node: raw})
	}
	for i, e := range g.edges {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal edge %d: %w", i, err)
		}
		s.Edges = append(s.Edges, edgeEnvelope{From: e.From, To: e.To, Kind: e.Payload.Kind(), Edge: raw})
	}
	return s, nil
}

// Restore rebuilds a Graph from a snapshot. Every edge endpoint must
// reference a node present in the snapshot; an edge with a dangling
// endpoint makes the whole restore fail with ErrCorruptGraph rather than
// silently dropping the edge.
func Restore(s *Snapshot) (*Graph, error) {
	g := NewGraph()

	for i, env := range s.Nodes {
		n, err := unmarshalNode(env)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrCorruptGraph, i, err)
		}
		g.AddNode(n)
	}

	nodeCount := NodeID(len(g.nodes))
	for i, env := range s.Edges {
		if env.From < 0 || env.From >= nodeCount || env.To < 0 || env.To >= nodeCount {
			return nil, fmt.Errorf("%w: edge %d references missing node (%d -> %d, %d nodes)",
				ErrCorruptGraph, i, env.From, env.To, nodeCount)
		}
		payload, err := unmarshalEdge(env)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", ErrCorruptGraph, i, err)
		}
		g.AddEdge(env.From, env.To, payload)
	}

	return g, nil
}

func unmarshalNode(env nodeEnvelope) (GraphNode, error) {
	var (
		n   GraphNode
		err error
	)
	switch env.Kind {
	case NodeKindModule:
		var v ModuleNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	case NodeKindFunction:
		var v FunctionNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	case NodeKindMethod:
		var v MethodNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	case NodeKindClass:
		var v ClassNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	case NodeKindRoute:
		var v RouteNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	case NodeKindSchema:
		var v SchemaNode
		err = json.Unmarshal(env.Node, &v)
		n = v
	default:
		return nil, fmt.Errorf("unknown node kind %q", env.Kind)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func unmarshalEdge(env edgeEnvelope) (GraphEdge, error) {
	var (
		e   GraphEdge
		err error
	)
	switch env.Kind {
	case EdgeKindImport:
		var v ImportEdge
		err = json.Unmarshal(env.Edge, &v)
		e = v
	case EdgeKindCall:
		var v CallEdge
		err = json.Unmarshal(env.Edge, &v)
		e = v
	case EdgeKindDataFlow:
		var v DataFlowEdge
		err = json.Unmarshal(env.Edge, &v)
		e = v
	case EdgeKindReturn:
		var v ReturnEdge
		err = json.Unmarshal(env.Edge, &v)
		e = v
	default:
		return nil, fmt.Errorf("unknown edge kind %q", env.Kind)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
