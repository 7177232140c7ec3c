package extract

import (
	"path"
	"strings"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// Policy controls how extraction treats type annotations that carry no
// structure. Tokens in UntypedTokens mean "the author opted out of
// typing here": parameters annotated with them get no schema reference,
// so contracts through them surface as unverifiable instead of clean.
type Policy struct {
	UntypedTokens []string
}

// DefaultPolicy returns the default untyped-token list.
func DefaultPolicy() Policy {
	return Policy{UntypedTokens: []string{"dict", "any", "object", "unknown"}}
}

// IsUntyped reports whether token is an opt-out annotation.
func (p Policy) IsUntyped(token string) bool {
	for _, t := range p.UntypedTokens {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// GraphBuilder assembles per-file extraction results into one graph. All
// name resolution state lives on the builder; one builder per analysis
// run.
type GraphBuilder struct {
	policy Policy
	files  []FileResult
}

// NewGraphBuilder returns a GraphBuilder with the given policy.
func NewGraphBuilder(policy Policy) *GraphBuilder {
	return &GraphBuilder{policy: policy}
}

// Add records one file's extraction result.
func (b *GraphBuilder) Add(res FileResult) {
	b.files = append(b.files, res)
}

// Build constructs the graph in dependency order: modules and classes
// first so later passes can resolve names, then schemas, functions,
// routes, and finally the edges between them.
func (b *GraphBuilder) Build() *ir.Graph {
	g := ir.NewGraph()

	modules := make(map[string]ir.NodeID, len(b.files))
	classes := nameTable{}
	funcs := nameTable{}
	funcParams := map[ir.NodeID][]ParamDecl{}

	for _, f := range b.files {
		modules[f.File] = g.AddNode(ir.ModuleNode{Path: f.File})
	}

	// Classes carry their schema so parameter annotations can point at it.
	for _, f := range b.files {
		for _, cls := range f.Classes {
			node := ir.ClassNode{Name: cls.Name, File: cls.File}
			if len(cls.Fields) > 0 {
				node.Schema = modelSchemaRef(cls)
			}
			classes.add(cls.Name, cls.File, g.AddNode(node))
		}
	}

	b.attachUsage()

	for _, f := range b.files {
		for _, v := range f.Validators {
			g.AddNode(ir.SchemaNode{Schema: validatorSchemaRef(v)})
		}
		for _, s := range f.Structurals {
			g.AddNode(ir.SchemaNode{Schema: structuralSchemaRef(s)})
		}
	}

	for _, f := range b.files {
		for _, fn := range f.Functions {
			params := b.buildParams(fn, g, classes)
			var id ir.NodeID
			if fn.Class != "" {
				classID, _ := classes.resolve(fn.Class, fn.File)
				id = g.AddNode(ir.MethodNode{
					Name: fn.Name, Class: classID,
					Params: params, ReturnType: b.returnInfo(fn.ReturnType, fn.File, g, classes),
				})
			} else {
				id = g.AddNode(ir.FunctionNode{
					Name: fn.Name, File: fn.File, Line: fn.Line,
					Params: params, ReturnType: b.returnInfo(fn.ReturnType, fn.File, g, classes),
				})
			}
			funcs.add(fn.Name, fn.File, id)
			funcParams[id] = fn.Params
		}
	}

	for _, f := range b.files {
		for _, r := range f.Routes {
			handlerID, ok := funcs.resolve(r.Handler, r.File)
			if !ok {
				handlerID = ir.InvalidNode
			}
			node := ir.RouteNode{
				Path: r.Path, Method: r.Method, Handler: handlerID,
				Location: ir.Location{File: r.File, Line: r.Line},
			}
			if r.ResponseModel != "" {
				if ref := b.classSchema(r.ResponseModel, r.File, g, classes); ref != nil {
					node.ResponseSchema = ref
				}
			}
			routeID := g.AddNode(node)
			if handlerID != ir.InvalidNode {
				g.AddEdge(routeID, handlerID, ir.CallEdge{
					ArgumentMapping: identityBindings(funcParams[handlerID]),
					Location:        ir.Location{File: r.File, Line: r.Line},
				})
			}
		}
	}

	b.wireCalls(g, funcs, modules, funcParams)
	b.wireImports(g, modules)

	return g
}

// attachUsage ties each validator to the first HTTP client call in its
// file. The validator and the call share a file by construction; the
// pairing is a heuristic, and a wrong pairing shows up as a contract
// mismatch rather than silence.
func (b *GraphBuilder) attachUsage() {
	for i := range b.files {
		f := &b.files[i]

		var httpCall *CallSite
		for j := range f.Calls {
			if f.Calls[j].URL != "" {
				httpCall = &f.Calls[j]
				break
			}
		}
		if httpCall == nil {
			continue
		}
		for j := range f.Validators {
			if f.Validators[j].UsagePath == "" {
				f.Validators[j].UsagePath = httpCall.URL
				f.Validators[j].UsageMethod = httpCall.HTTPMethod
			}
		}
	}
}

func (b *GraphBuilder) buildParams(fn FunctionDecl, g *ir.Graph, classes nameTable) []ir.Parameter {
	params := make([]ir.Parameter, 0, len(fn.Params))
	for _, p := range fn.Params {
		info := b.typeInfo(p.Type, fn.File, g, classes)
		info.Optional = p.Optional
		params = append(params, ir.Parameter{Name: p.Name, Type: info, Optional: p.Optional})
	}
	return params
}

// returnInfo builds an optional TypeInfo for a return annotation; an
// unannotated return stays nil.
func (b *GraphBuilder) returnInfo(token, fromFile string, g *ir.Graph, classes nameTable) *ir.TypeInfo {
	if token == "" {
		return nil
	}
	info := b.typeInfo(token, fromFile, g, classes)
	return &info
}

// typeInfo classifies an annotation token. Untyped opt-out tokens and
// scalars carry no schema reference; a token naming a known class points
// at the class schema; everything else becomes a type alias so the
// normalizer still has a shape name to work with.
func (b *GraphBuilder) typeInfo(token, fromFile string, g *ir.Graph, classes nameTable) ir.TypeInfo {
	if token == "" {
		return ir.TypeInfo{Base: ir.BaseUnknown}
	}
	if b.policy.IsUntyped(token) {
		return ir.TypeInfo{Base: ir.InferBaseType(token)}
	}
	if ref := b.classSchema(token, fromFile, g, classes); ref != nil {
		return ir.TypeInfo{Base: ir.BaseObject, SchemaRef: ref}
	}
	if base := ir.InferBaseType(token); base != ir.BaseUnknown {
		return ir.TypeInfo{Base: base}
	}
	return ir.TypeInfo{
		Base: ir.BaseObject,
		SchemaRef: &ir.SchemaReference{
			Name:     token,
			Type:     ir.SchemaStructuralType,
			Metadata: map[string]string{ir.MetaTypeAlias: token},
		},
	}
}

// classSchema resolves a token to a class and returns its schema, or nil
// when the class is unknown or schemaless.
func (b *GraphBuilder) classSchema(token, fromFile string, g *ir.Graph, classes nameTable) *ir.SchemaReference {
	id, ok := classes.resolve(token, fromFile)
	if !ok {
		return nil
	}
	node, ok := g.Node(id)
	if !ok {
		return nil
	}
	cls, ok := node.(ir.ClassNode)
	if !ok || cls.Schema == nil {
		return nil
	}
	ref := *cls.Schema
	return &ref
}

// wireCalls adds call edges for every ordinary call site whose caller and
// callee both resolve. Positional arguments are bound to the callee's
// parameter names in order.
func (b *GraphBuilder) wireCalls(g *ir.Graph, funcs nameTable, modules map[string]ir.NodeID, funcParams map[ir.NodeID][]ParamDecl) {
	for _, f := range b.files {
		for _, call := range f.Calls {
			if call.URL != "" {
				continue // client call to an endpoint, bridged via the API document
			}

			calleeID, ok := funcs.resolve(call.Callee, call.File)
			if !ok {
				continue
			}

			var callerID ir.NodeID
			if call.Caller != "" {
				callerID, ok = funcs.resolve(call.Caller, call.File)
				if !ok {
					continue
				}
			} else {
				callerID = modules[call.File]
			}
			if callerID == calleeID {
				continue
			}

			g.AddEdge(callerID, calleeID, ir.CallEdge{
				ArgumentMapping: bindArgs(call.Args, funcParams[calleeID]),
				Location:        ir.Location{File: call.File, Line: call.Line},
			})
		}
	}
}

// bindArgs fills in empty binding names positionally from the callee's
// declared parameters. Keyword arguments keep their names.
func bindArgs(args []ir.ArgBinding, params []ParamDecl) []ir.ArgBinding {
	out := make([]ir.ArgBinding, len(args))
	pos := 0
	for i, a := range args {
		out[i] = a
		if a.Name != "" {
			continue
		}
		if pos < len(params) {
			out[i].Name = params[pos].Name
		}
		pos++
	}
	return out
}

func identityBindings(params []ParamDecl) []ir.ArgBinding {
	out := make([]ir.ArgBinding, 0, len(params))
	for _, p := range params {
		out = append(out, ir.ArgBinding{Name: p.Name, Value: p.Name})
	}
	return out
}

// wireImports adds import edges between modules when the imported
// specifier maps to a known file.
func (b *GraphBuilder) wireImports(g *ir.Graph, modules map[string]ir.NodeID) {
	for _, f := range b.files {
		from := modules[f.File]
		for _, imp := range f.Imports {
			target, ok := resolveModule(imp.Module, f.File, modules)
			if !ok {
				continue
			}
			g.AddEdge(from, target, ir.ImportEdge{
				ImportPath: imp.Module,
				File:       f.File,
			})
		}
	}
}

// resolveModule maps an import specifier to a known file: dotted Python
// modules against the project root, relative TypeScript specifiers
// against the importing file's directory.
func resolveModule(spec, fromFile string, modules map[string]ir.NodeID) (ir.NodeID, bool) {
	var candidates []string
	if strings.HasPrefix(spec, ".") {
		base := path.Join(path.Dir(fromFile), spec)
		candidates = []string{base + ".ts", base + ".tsx", base + ".js", base + ".jsx", path.Join(base, "index.ts")}
	} else {
		base := strings.ReplaceAll(spec, ".", "/")
		candidates = []string{base + ".py", path.Join(base, "__init__.py")}
	}

	for _, c := range candidates {
		if id, ok := modules[c]; ok {
			return id, true
		}
	}
	// Dotted specifiers often omit a top-level package directory; fall
	// back to a suffix match.
	if !strings.HasPrefix(spec, ".") {
		suffix := "/" + strings.ReplaceAll(spec, ".", "/") + ".py"
		for file, id := range modules {
			if strings.HasSuffix(file, suffix) {
				return id, true
			}
		}
	}
	return ir.InvalidNode, false
}

// modelSchemaRef builds a validated-model reference from a class's
// annotated fields.
func modelSchemaRef(cls ClassDecl) *ir.SchemaReference {
	fields, required := fieldsPair(cls.Fields)
	return &ir.SchemaReference{
		Name:     cls.Name,
		Type:     ir.SchemaValidatedModel,
		Location: ir.Location{File: cls.File, Line: cls.Line},
		Metadata: map[string]string{
			ir.MetaFields:   fields,
			ir.MetaRequired: required,
		},
	}
}

func validatorSchemaRef(v ValidatorDecl) ir.SchemaReference {
	fields, required := fieldsPair(v.Fields)
	meta := map[string]string{
		ir.MetaFields:   fields,
		ir.MetaRequired: required,
	}
	if v.UsagePath != "" {
		meta[ir.MetaUsagePath] = v.UsagePath
		meta[ir.MetaUsageMethod] = v.UsageMethod
	}
	return ir.SchemaReference{
		Name:     v.Name,
		Type:     ir.SchemaRuntimeValidator,
		Location: ir.Location{File: v.File, Line: v.Line},
		Metadata: meta,
	}
}

func structuralSchemaRef(s StructuralDecl) ir.SchemaReference {
	return ir.SchemaReference{
		Name:     s.Name,
		Type:     ir.SchemaStructuralType,
		Location: ir.Location{File: s.File, Line: s.Line},
		Metadata: map[string]string{ir.MetaFields: fieldsTriple(s.Fields)},
	}
}

// fieldsPair serializes fields as "name:type" entries plus the required
// name list.
func fieldsPair(fields []FieldDecl) (fieldList, requiredList string) {
	var fl, rl []string
	for _, f := range fields {
		fl = append(fl, f.Name+":"+f.Type)
		if !f.Optional {
			rl = append(rl, f.Name)
		}
	}
	return strings.Join(fl, ","), strings.Join(rl, ",")
}

// fieldsTriple serializes fields as "name:type:required|optional" entries.
func fieldsTriple(fields []FieldDecl) string {
	var fl []string
	for _, f := range fields {
		marker := "required"
		if f.Optional {
			marker = "optional"
		}
		fl = append(fl, f.Name+":"+f.Type+":"+marker)
	}
	return strings.Join(fl, ",")
}
