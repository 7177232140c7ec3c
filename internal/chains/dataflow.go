package chains

import (
	"github.com/seamcheck/seamcheck/internal/ir"
)

// DataPath is one traced flow of a named value through call edges.
type DataPath struct {
	Steps []DataStep `json:"steps"`
}

// DataStep is one hop of a data path.
type DataStep struct {
	Node     ir.NodeID   `json:"node"`
	Name     string      `json:"name"` // the value's name at this hop
	Location ir.Location `json:"location"`
}

// Tracker answers fine-grained flow questions over one graph: where does a
// parameter's value travel, where do return values end up. It shares the
// chain builder's traversal discipline (depth-first, visited set per
// traversal) but is not on the chain-discovery path.
type Tracker struct {
	g *ir.Graph
}

// NewTracker returns a Tracker over g.
func NewTracker(g *ir.Graph) *Tracker {
	return &Tracker{g: g}
}

// TrackParameter follows the named parameter of fn through outgoing call
// edges: every call whose argument mapping binds a value to that name
// continues the walk into the callee under the bound name.
func (t *Tracker) TrackParameter(name string, fn ir.NodeID) []DataPath {
	visited := map[ir.NodeID]bool{}
	start := DataStep{Node: fn, Name: name, Location: t.nodeLocation(fn)}
	return t.follow(start, visited)
}

// TrackReturn follows return edges from fn to its callers.
func (t *Tracker) TrackReturn(fn ir.NodeID) []DataPath {
	var paths []DataPath
	for _, e := range t.g.EdgesFrom(fn) {
		ret, ok := e.Payload.(ir.ReturnEdge)
		if !ok {
			continue
		}
		paths = append(paths, DataPath{Steps: []DataStep{
			{Node: fn, Name: ret.ReturnValue, Location: ret.Location},
			{Node: e.To, Name: ret.ReturnValue, Location: t.nodeLocation(e.To)},
		}})
	}
	return paths
}

// TrackVariable follows a named variable from an arbitrary node, treating
// it like a parameter of that node.
func (t *Tracker) TrackVariable(name string, from ir.NodeID) []DataPath {
	return t.TrackParameter(name, from)
}

// follow is the depth-first walk. The visited set is scoped to one
// traversal and guarantees termination on cyclic call graphs.
func (t *Tracker) follow(step DataStep, visited map[ir.NodeID]bool) []DataPath {
	visited[step.Node] = true

	var paths []DataPath
	for _, e := range t.g.EdgesFrom(step.Node) {
		call, ok := e.Payload.(ir.CallEdge)
		if !ok || visited[e.To] {
			continue
		}

		bound, ok := bindingFor(call, step.Name)
		if !ok {
			continue
		}

		next := DataStep{Node: e.To, Name: bound, Location: call.Location}
		deeper := t.follow(next, visited)
		if len(deeper) == 0 {
			paths = append(paths, DataPath{Steps: []DataStep{step, next}})
			continue
		}
		for _, d := range deeper {
			paths = append(paths, DataPath{Steps: append([]DataStep{step}, d.Steps...)})
		}
	}
	return paths
}

// bindingFor finds the callee-side name the value travels under: an
// argument mapping whose value text mentions the tracked name.
func bindingFor(call ir.CallEdge, name string) (string, bool) {
	for _, arg := range call.ArgumentMapping {
		if arg.Value == name {
			return arg.Name, true
		}
	}
	return "", false
}

func (t *Tracker) nodeLocation(id ir.NodeID) ir.Location {
	node, ok := t.g.Node(id)
	if !ok {
		return ir.Location{}
	}
	switch n := node.(type) {
	case ir.FunctionNode:
		return ir.Location{File: n.File, Line: n.Line}
	case ir.RouteNode:
		return n.Location
	case ir.ClassNode:
		return ir.Location{File: n.File}
	default:
		return ir.Location{}
	}
}
