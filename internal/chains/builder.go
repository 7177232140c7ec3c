// Package chains discovers data chains in a contract graph: for every
// route it assembles one representative path per direction, attaches a
// schema to every link, and builds pairwise contracts ready for the rule
// checker.
package chains

import (
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
)

// ErrModuleLink is returned when a module node shows up where a chain link
// is needed. Modules cannot anchor a link; hitting one means an extractor
// wired a call/dataflow edge to the wrong node.
var ErrModuleLink = errors.New("module node cannot anchor a chain link")

// Builder discovers chains over one read-only graph.
type Builder struct {
	g *ir.Graph
}

// NewBuilder returns a Builder over g. The graph must be fully built; the
// builder never mutates it.
func NewBuilder(g *ir.Graph) *Builder {
	return &Builder{g: g}
}

// FindAllChains walks every route forward and backward and returns the
// resulting chains. A route that produces no path is logged and skipped;
// a module node encountered as a would-be link aborts with ErrModuleLink.
func (b *Builder) FindAllChains() ([]contract.DataChain, error) {
	var out []contract.DataChain

	for _, routeID := range b.g.Routes() {
		route, _ := b.g.Node(routeID)
		rn := route.(ir.RouteNode)
		name := strings.ToUpper(rn.Method) + " " + rn.Path

		forward := b.walk(routeID, directionForward)
		if len(forward) == 0 {
			log.Printf("route %s: no forward path, skipping", name)
		} else {
			chain, err := b.buildChain(name, forward, contract.FrontendToBackend)
			if err != nil {
				return nil, fmt.Errorf("route %s: %w", name, err)
			}
			out = append(out, *chain)
		}

		backward := b.walk(routeID, directionBackward)
		if len(backward) > 1 {
			// Reverse so the chain reads source -> sink again.
			reverse(backward)
			chain, err := b.buildChain(name, backward, contract.BackendToFrontend)
			if err != nil {
				return nil, fmt.Errorf("route %s: %w", name, err)
			}
			out = append(out, *chain)
		}
	}

	return out, nil
}

type walkDirection int

const (
	directionForward walkDirection = iota
	directionBackward
)

// walk performs the greedy single-path traversal: from start, repeatedly
// step to the first unvisited neighbor over call/dataflow edges until none
// remain. One representative path per direction, never full path
// enumeration; the visited set guarantees termination on cycles.
func (b *Builder) walk(start ir.NodeID, dir walkDirection) []ir.NodeID {
	visited := map[ir.NodeID]bool{start: true}
	nodes := []ir.NodeID{start}
	current := start

	for {
		next, ok := b.step(current, dir, visited)
		if !ok {
			return nodes
		}
		visited[next] = true
		nodes = append(nodes, next)
		current = next
	}
}

// step picks the first unvisited chain-relevant neighbor in edge insertion
// order, which keeps traversal deterministic for a given build order.
func (b *Builder) step(from ir.NodeID, dir walkDirection, visited map[ir.NodeID]bool) (ir.NodeID, bool) {
	var edges []ir.Edge
	if dir == directionForward {
		edges = b.g.EdgesFrom(from)
	} else {
		edges = b.g.EdgesTo(from)
	}

	for _, e := range edges {
		switch e.Payload.Kind() {
		case ir.EdgeKindCall, ir.EdgeKindDataFlow:
		default:
			continue
		}
		neighbor := e.To
		if dir == directionBackward {
			neighbor = e.From
		}
		if visited[neighbor] {
			continue
		}
		if _, exists := b.g.Node(neighbor); !exists {
			continue // unresolved forward reference; degraded, not fatal
		}
		return neighbor, true
	}
	return ir.InvalidNode, false
}

// buildChain converts a node path into a DataChain with links, contracts
// and classification.
func (b *Builder) buildChain(name string, nodePath []ir.NodeID, dir contract.Direction) (*contract.DataChain, error) {
	links := make([]contract.Link, 0, len(nodePath))
	for i, id := range nodePath {
		link, err := b.linkFor(id)
		if err != nil {
			return nil, err
		}
		link.Type = linkTypeAt(i, len(nodePath))
		links = append(links, link)
	}

	contracts := make([]contract.Contract, 0, max(0, len(links)-1))
	for i := 0; i+1 < len(links); i++ {
		contracts = append(contracts, newContract(links[i], links[i+1]))
	}

	return &contract.DataChain{
		ID:        uuid.NewString(),
		Name:      name,
		Links:     links,
		Contracts: contracts,
		Direction: dir,
		Type:      classify(b.g, links),
	}, nil
}

func linkTypeAt(i, n int) contract.LinkType {
	switch {
	case i == 0:
		return contract.LinkSource
	case i == n-1:
		return contract.LinkSink
	default:
		return contract.LinkTransformer
	}
}

// linkFor attaches a schema and a location to one node.
func (b *Builder) linkFor(id ir.NodeID) (contract.Link, error) {
	node, ok := b.g.Node(id)
	if !ok {
		return contract.Link{}, fmt.Errorf("link references missing node %d", id)
	}

	link := contract.Link{ID: uuid.NewString(), Node: id}

	switch n := node.(type) {
	case ir.RouteNode:
		link.Location = n.Location
		if n.RequestSchema != nil {
			link.Schema = *n.RequestSchema
		} else {
			link.Schema = b.handlerSchema(n.Handler, n.Location)
		}
	case ir.FunctionNode:
		link.Location = ir.Location{File: n.File, Line: n.Line}
		link.Schema = paramSchema(n.Params, link.Location)
	case ir.MethodNode:
		link.Location = b.classLocation(n.Class)
		link.Schema = paramSchema(n.Params, link.Location)
	case ir.ClassNode:
		link.Location = ir.Location{File: n.File}
		if n.Schema != nil {
			link.Schema = *n.Schema
		} else {
			link.Schema = ir.UnknownSchema(link.Location)
		}
	case ir.SchemaNode:
		link.Location = n.Schema.Location
		link.Schema = n.Schema
	case ir.ModuleNode:
		return contract.Link{}, fmt.Errorf("%w: %s", ErrModuleLink, n.Path)
	default:
		return contract.Link{}, fmt.Errorf("unhandled node kind %s", node.Kind())
	}

	return link, nil
}

// handlerSchema extracts the schema for a route from its handler's first
// schema-bearing parameter.
func (b *Builder) handlerSchema(handler ir.NodeID, loc ir.Location) ir.SchemaReference {
	node, ok := b.g.Node(handler)
	if !ok {
		return ir.UnknownSchema(loc)
	}
	switch n := node.(type) {
	case ir.FunctionNode:
		return paramSchema(n.Params, loc)
	case ir.MethodNode:
		return paramSchema(n.Params, loc)
	default:
		return ir.UnknownSchema(loc)
	}
}

func (b *Builder) classLocation(classID ir.NodeID) ir.Location {
	if node, ok := b.g.Node(classID); ok {
		if cn, ok := node.(ir.ClassNode); ok {
			return ir.Location{File: cn.File}
		}
	}
	return ir.Location{}
}

// paramSchema returns the first schema-bearing parameter's reference, or
// the unknown placeholder when the parameter list carries no schema.
func paramSchema(params []ir.Parameter, loc ir.Location) ir.SchemaReference {
	for _, p := range params {
		if p.Type.SchemaRef != nil {
			return *p.Type.SchemaRef
		}
	}
	return ir.UnknownSchema(loc)
}

// newContract pairs two consecutive links. Severity starts at warning when
// either side's schema is degraded, info otherwise; the rule checker
// overwrites it after evaluation.
func newContract(from, to contract.Link) contract.Contract {
	sev := contract.SeverityInfo
	if from.Schema.MissingSchema() || to.Schema.MissingSchema() {
		sev = contract.SeverityWarning
	}
	return contract.Contract{
		FromLink:   from.ID,
		ToLink:     to.ID,
		FromSchema: from.Schema,
		ToSchema:   to.Schema,
		Severity:   sev,
	}
}

// classify applies the chain-type policy: any route link makes the chain
// full; otherwise the file origins of the links decide, and mixed origins
// without a route conservatively count as full.
func classify(g *ir.Graph, links []contract.Link) contract.ChainType {
	frontend, backend := false, false
	for _, l := range links {
		if node, ok := g.Node(l.Node); ok && node.Kind() == ir.NodeKindRoute {
			return contract.ChainFull
		}
		switch fileOrigin(l.Location.File) {
		case contract.ChainFrontendInternal:
			frontend = true
		case contract.ChainBackendInternal:
			backend = true
		}
	}
	switch {
	case frontend && backend:
		return contract.ChainFull
	case frontend:
		return contract.ChainFrontendInternal
	default:
		return contract.ChainBackendInternal
	}
}

// fileOrigin classifies a file path by extension.
func fileOrigin(file string) contract.ChainType {
	switch path.Ext(file) {
	case ".ts", ".tsx", ".js", ".jsx":
		return contract.ChainFrontendInternal
	case ".py":
		return contract.ChainBackendInternal
	default:
		return contract.ChainBackendInternal
	}
}

func reverse(ids []ir.NodeID) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
