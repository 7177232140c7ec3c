package ir

// Graph is the in-memory IR for one analyzed system. It is the sole owner
// of node storage (arena-of-nodes): nodes are only ever appended, never
// removed, so NodeID back-references cannot dangle within a live graph.
//
// A Graph is mutated only during the single-threaded extraction phase and
// treated as read-only afterwards; no locking is needed for concurrent
// readers once building is done.
type Graph struct {
	nodes []GraphNode
	edges []Edge

	// adjacency indexes, rebuilt incrementally on AddEdge.
	out map[NodeID][]int
	in  map[NodeID][]int
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		out: make(map[NodeID][]int),
		in:  make(map[NodeID][]int),
	}
}

// AddNode appends a node to the arena and returns its handle.
func (g *Graph) AddNode(n GraphNode) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// AddEdge records a typed edge between two nodes. No referential check is
// performed: extractors legitimately add forward references (placeholder
// handlers) before the referenced node exists. Consumers that require
// integrity must validate explicitly (see Snapshot/Restore).
func (g *Graph) AddEdge(from, to NodeID, payload GraphEdge) {
	g.edges = append(g.edges, Edge{From: from, To: to, Payload: payload})
	idx := len(g.edges) - 1
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

// Node returns the node for id, or (nil, false) when id is out of range.
func (g *Graph) Node(id NodeID) (GraphNode, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// EdgesFrom returns all edges whose source is id, in insertion order.
func (g *Graph) EdgesFrom(id NodeID) []Edge {
	return g.edgesAt(g.out[id])
}

// EdgesTo returns all edges whose target is id, in insertion order.
func (g *Graph) EdgesTo(id NodeID) []Edge {
	return g.edgesAt(g.in[id])
}

func (g *Graph) edgesAt(idxs []int) []Edge {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// FindNodes returns the IDs of all nodes matching pred, in ID order.
func (g *Graph) FindNodes(pred func(NodeID, GraphNode) bool) []NodeID {
	var ids []NodeID
	for i, n := range g.nodes {
		if pred(NodeID(i), n) {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Routes returns the IDs of all route nodes, in ID order.
func (g *Graph) Routes() []NodeID {
	return g.FindNodes(func(_ NodeID, n GraphNode) bool {
		return n.Kind() == NodeKindRoute
	})
}

// NodeCount returns the number of stored nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of stored edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Stats summarizes one graph for reporting.
type Stats struct {
	Modules   int `json:"modules"`
	Functions int `json:"functions"`
	Methods   int `json:"methods"`
	Classes   int `json:"classes"`
	Routes    int `json:"routes"`
	Schemas   int `json:"schemas"`
	Edges     int `json:"edges"`
}

// Stats counts nodes per kind plus total edges.
func (g *Graph) Stats() Stats {
	s := Stats{Edges: len(g.edges)}
	for _, n := range g.nodes {
		switch n.Kind() {
		case NodeKindModule:
			s.Modules++
		case NodeKindFunction:
			s.Functions++
		case NodeKindMethod:
			s.Methods++
		case NodeKindClass:
			s.Classes++
		case NodeKindRoute:
			s.Routes++
		case NodeKindSchema:
			s.Schemas++
		}
	}
	return s
}
