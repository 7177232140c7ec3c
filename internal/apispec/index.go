package apispec

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/seamcheck/seamcheck/internal/ir"
)

const componentPrefix = "#/components/schemas/"

// RouteKey identifies one endpoint by path and lowercase method.
type RouteKey struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func (k RouteKey) String() string {
	return strings.ToUpper(k.Method) + " " + k.Path
}

// Endpoint is one declared operation with its index keys precomputed.
type Endpoint struct {
	Path        string
	Method      string // lowercase
	OperationID string
	Op          *Operation
}

// Index provides path+method and operation-id lookup over one parsed
// document. Build it once per document; it is read-only afterwards.
type Index struct {
	doc     *Document
	byRoute map[RouteKey]*Endpoint
	byOpID  map[string]*Endpoint
}

// NewIndex builds both indexes over doc.
func NewIndex(doc *Document) *Index {
	idx := &Index{
		doc:     doc,
		byRoute: make(map[RouteKey]*Endpoint),
		byOpID:  make(map[string]*Endpoint),
	}
	for path, item := range doc.Paths {
		for method, op := range item {
			if op == nil {
				continue
			}
			ep := &Endpoint{
				Path:        path,
				Method:      strings.ToLower(method),
				OperationID: op.OperationID,
				Op:          op,
			}
			idx.byRoute[RouteKey{Path: path, Method: ep.Method}] = ep
			if op.OperationID != "" {
				idx.byOpID[op.OperationID] = ep
			}
		}
	}
	return idx
}

// MatchRoute returns the declared endpoint for path+method, or nil.
// Method matching is case-insensitive.
func (idx *Index) MatchRoute(path, method string) *Endpoint {
	return idx.byRoute[RouteKey{Path: path, Method: strings.ToLower(method)}]
}

// MatchOperation returns the endpoint declared with the given operation id,
// or nil.
func (idx *Index) MatchOperation(opID string) *Endpoint {
	return idx.byOpID[opID]
}

// Endpoints returns all indexed endpoints sorted by path then method.
func (idx *Index) Endpoints() []*Endpoint {
	out := make([]*Endpoint, 0, len(idx.byRoute))
	for _, ep := range idx.byRoute {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// GetSchema returns the named component schema with all internal references
// resolved, or nil when the name is unknown or the reference chain is
// circular.
func (idx *Index) GetSchema(name string) *SchemaObject {
	obj, ok := idx.doc.Components.Schemas[name]
	if !ok {
		return nil
	}
	return idx.resolve(obj, map[string]bool{name: true})
}

// resolve inlines $ref chains recursively. The visited set is scoped to one
// resolution so a circular reference returns nil for the cycling branch
// instead of recursing unboundedly.
func (idx *Index) resolve(obj *SchemaObject, visited map[string]bool) *SchemaObject {
	if obj == nil {
		return nil
	}
	if obj.Ref != "" {
		name := strings.TrimPrefix(obj.Ref, componentPrefix)
		if name == obj.Ref || visited[name] {
			return nil // external or circular reference
		}
		target, ok := idx.doc.Components.Schemas[name]
		if !ok {
			return nil
		}
		visited[name] = true
		resolved := idx.resolve(target, visited)
		delete(visited, name)
		return resolved
	}

	out := *obj
	if len(obj.Properties) > 0 {
		out.Properties = make(map[string]*SchemaObject, len(obj.Properties))
		for k, v := range obj.Properties {
			out.Properties[k] = idx.resolve(v, visited)
		}
	}
	if obj.Items != nil {
		out.Items = idx.resolve(obj.Items, visited)
	}
	return &out
}

// ValidateRoutes computes the symmetric difference between routes
// discovered in source and routes declared in the document.
func (idx *Index) ValidateRoutes(discovered []RouteKey) (missingInSpec, missingInCode []RouteKey) {
	seen := make(map[RouteKey]bool, len(discovered))
	for _, d := range discovered {
		key := RouteKey{Path: d.Path, Method: strings.ToLower(d.Method)}
		seen[key] = true
		if _, ok := idx.byRoute[key]; !ok {
			missingInSpec = append(missingInSpec, key)
		}
	}
	for key := range idx.byRoute {
		if !seen[key] {
			missingInCode = append(missingInCode, key)
		}
	}
	sortKeys(missingInSpec)
	sortKeys(missingInCode)
	return missingInSpec, missingInCode
}

func sortKeys(keys []RouteKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
}

// --- schema bridging ---

// RequestSchemaName returns the component name referenced by the JSON
// request body, or "".
func (ep *Endpoint) RequestSchemaName() string {
	if ep.Op == nil || ep.Op.RequestBody == nil {
		return ""
	}
	return schemaNameOf(ep.Op.RequestBody.Content)
}

// ResponseSchemaName returns the component name referenced by the first
// declared 2xx response body, or "".
func (ep *Endpoint) ResponseSchemaName() string {
	if ep.Op == nil {
		return ""
	}
	for _, status := range []string{"200", "201", "202", "204"} {
		if resp, ok := ep.Op.Responses[status]; ok && resp != nil {
			if name := schemaNameOf(resp.Content); name != "" {
				return name
			}
		}
	}
	return ""
}

func schemaNameOf(content map[string]MediaType) string {
	mt, ok := content["application/json"]
	if !ok || mt.Schema == nil {
		return ""
	}
	if strings.HasPrefix(mt.Schema.Ref, componentPrefix) {
		return strings.TrimPrefix(mt.Schema.Ref, componentPrefix)
	}
	return ""
}

// SchemaReference converts the named component schema into an IR schema
// reference carrying the full structural blob, so the normalizer can treat
// it like any other raw JSON schema.
func (idx *Index) SchemaReference(name string) (ir.SchemaReference, bool) {
	resolved := idx.GetSchema(name)
	if resolved == nil {
		return ir.SchemaReference{}, false
	}
	blob, err := json.Marshal(resolved)
	if err != nil {
		return ir.SchemaReference{}, false
	}
	return ir.SchemaReference{
		Name: name,
		Type: ir.SchemaAPISpec,
		Metadata: map[string]string{
			ir.MetaJSONSchema: string(blob),
		},
	}, true
}
