package chains

import (
	"strings"

	"github.com/google/uuid"

	"github.com/seamcheck/seamcheck/internal/apispec"
	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
)

// FindValidatorModelChains discovers chains between frontend runtime
// validator schemas and backend validated models that are never connected
// by a call edge: the only bridge between them is the shared API contract
// document. For every runtime-validator schema node that recorded an API
// call site, the endpoint index maps that call to a declared endpoint and
// from there to the backend schema the endpoint names, and a synthetic
// three-link chain (validator -> route -> model) is emitted.
func (b *Builder) FindValidatorModelChains(idx *apispec.Index) []contract.DataChain {
	var out []contract.DataChain

	validators := b.g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		sn, ok := n.(ir.SchemaNode)
		return ok && sn.Schema.Type == ir.SchemaRuntimeValidator && sn.Schema.Meta(ir.MetaUsagePath) != ""
	})

	for _, vid := range validators {
		node, _ := b.g.Node(vid)
		validator := node.(ir.SchemaNode).Schema

		usagePath := validator.Meta(ir.MetaUsagePath)
		usageMethod := validator.Meta(ir.MetaUsageMethod)

		ep := idx.MatchRoute(usagePath, usageMethod)
		if ep == nil {
			continue
		}

		modelName := ep.RequestSchemaName()
		if modelName == "" {
			modelName = ep.ResponseSchemaName()
		}
		if modelName == "" {
			continue
		}

		modelRef, routeLink := b.resolveBackendModel(modelName, idx, ep)
		if modelRef == nil {
			continue
		}

		source := contract.Link{
			ID:       uuid.NewString(),
			Type:     contract.LinkSource,
			Location: validator.Location,
			Node:     vid,
			Schema:   validator,
		}
		sink := contract.Link{
			ID:       uuid.NewString(),
			Type:     contract.LinkSink,
			Location: modelRef.Location,
			Node:     b.modelNode(modelName),
			Schema:   *modelRef,
		}

		links := []contract.Link{source, routeLink, sink}
		contracts := []contract.Contract{
			newContract(source, routeLink),
			newContract(routeLink, sink),
		}

		out = append(out, contract.DataChain{
			ID:        uuid.NewString(),
			Name:      validator.Name + " -> " + strings.ToUpper(ep.Method) + " " + ep.Path,
			Links:     links,
			Contracts: contracts,
			Direction: contract.FrontendToBackend,
			Type:      contract.ChainFull,
		})
	}

	return out
}

// resolveBackendModel prefers a validated-model schema node extracted from
// backend source; when none exists it falls back to the declared component
// schema so the chain is still verifiable against the document.
func (b *Builder) resolveBackendModel(name string, idx *apispec.Index, ep *apispec.Endpoint) (*ir.SchemaReference, contract.Link) {
	routeLink := b.routeLinkFor(ep, idx)

	if id := b.modelNode(name); id != ir.InvalidNode {
		node, _ := b.g.Node(id)
		switch n := node.(type) {
		case ir.SchemaNode:
			ref := n.Schema
			return &ref, routeLink
		case ir.ClassNode:
			ref := *n.Schema
			return &ref, routeLink
		}
	}

	if ref, ok := idx.SchemaReference(name); ok {
		return &ref, routeLink
	}
	return nil, routeLink
}

// modelNode finds the validated-model node with the given name, either a
// bare schema node or a class whose body produced a model schema.
// Returns InvalidNode when none exists.
func (b *Builder) modelNode(name string) ir.NodeID {
	ids := b.g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		switch v := n.(type) {
		case ir.SchemaNode:
			return v.Schema.Type == ir.SchemaValidatedModel && v.Schema.Name == name
		case ir.ClassNode:
			return v.Schema != nil && v.Schema.Type == ir.SchemaValidatedModel && v.Schema.Name == name
		}
		return false
	})
	if len(ids) == 0 {
		return ir.InvalidNode
	}
	return ids[0]
}

// routeLinkFor finds the discovered route node matching the endpoint, or
// synthesizes a placeholder link when the endpoint exists only in the
// document.
func (b *Builder) routeLinkFor(ep *apispec.Endpoint, idx *apispec.Index) contract.Link {
	ids := b.g.FindNodes(func(_ ir.NodeID, n ir.GraphNode) bool {
		rn, ok := n.(ir.RouteNode)
		return ok && rn.Path == ep.Path && strings.EqualFold(rn.Method, ep.Method)
	})

	link := contract.Link{
		ID:   uuid.NewString(),
		Type: contract.LinkTransformer,
		Node: ir.InvalidNode,
	}

	if len(ids) > 0 {
		link.Node = ids[0]
		l, err := b.linkFor(ids[0])
		if err == nil {
			link.Location = l.Location
			link.Schema = l.Schema
			return link
		}
	}

	// Endpoint declared only in the document: carry its request schema so
	// the surrounding contracts still have something to compare.
	if name := ep.RequestSchemaName(); name != "" {
		if ref, ok := idx.SchemaReference(name); ok {
			link.Schema = ref
			return link
		}
	}
	link.Schema = ir.UnknownSchema(ir.Location{})
	return link
}
