package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// pyExtractor extracts declarations from Python source files: route
// decorators, handler functions with annotated parameters, and
// field-annotated model classes.
type pyExtractor struct{}

var pyRouteMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) FileResult {
	var res FileResult

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, filePath, &res)
	return res
}

func (e *pyExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath string, res *FileResult) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		if isPyTopLevel(node) {
			fn := e.extractFunction(node, source, filePath, "")
			if fn != nil {
				res.Functions = append(res.Functions, *fn)
			}
		}

	case "class_definition":
		if isPyTopLevel(node) {
			if cls := e.extractClass(node, source, filePath, res); cls != nil {
				res.Classes = append(res.Classes, *cls)
			}
		}

	case "decorated_definition":
		e.extractDecorated(node, source, filePath, res)

	case "import_statement", "import_from_statement":
		res.Imports = append(res.Imports, e.extractImports(node, source, filePath)...)

	case "call":
		if call := e.extractCall(node, source, filePath); call != nil {
			res.Calls = append(res.Calls, *call)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, res)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, res)
		}
		cursor.GotoParent()
	}
}

// extractDecorated handles a decorated function: route decorators become
// RouteDecls pointing at the function; the function itself is extracted
// by the regular function_definition case when the walk descends.
func (e *pyExtractor) extractDecorated(node *tree_sitter.Node, source []byte, filePath string, res *FileResult) {
	defNode := node.ChildByFieldName("definition")
	if defNode == nil || defNode.Kind() != "function_definition" {
		return
	}
	nameNode := defNode.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	handler := nameNode.Utf8Text(source)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "decorator" {
			continue
		}
		if route := e.routeFromDecorator(child, source, filePath, handler); route != nil {
			res.Routes = append(res.Routes, *route)
		}
	}
}

// routeFromDecorator recognizes "@app.get(path, ...)" style decorators on
// any receiver (app, router, blueprint).
func (e *pyExtractor) routeFromDecorator(dec *tree_sitter.Node, source []byte, filePath, handler string) *RouteDecl {
	var call *tree_sitter.Node
	for i := uint(0); i < dec.ChildCount(); i++ {
		child := dec.Child(i)
		if child != nil && child.Kind() == "call" {
			call = child
			break
		}
	}
	if call == nil {
		return nil
	}

	fnNode := call.ChildByFieldName("function")
	if fnNode == nil || fnNode.Kind() != "attribute" {
		return nil
	}
	attrNode := fnNode.ChildByFieldName("attribute")
	if attrNode == nil {
		return nil
	}
	method := attrNode.Utf8Text(source)
	if !pyRouteMethods[method] {
		return nil
	}

	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	route := &RouteDecl{
		Method:  strings.ToUpper(method),
		Handler: handler,
		File:    filePath,
		Line:    int(dec.StartPosition().Row) + 1,
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Kind() {
		case "string":
			if route.Path == "" {
				route.Path = trimPyString(arg.Utf8Text(source))
			}
		case "keyword_argument":
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name != nil && value != nil && name.Utf8Text(source) == "response_model" {
				route.ResponseModel = value.Utf8Text(source)
			}
		}
	}
	if route.Path == "" {
		return nil
	}
	return route
}

func (e *pyExtractor) extractFunction(node *tree_sitter.Node, source []byte, filePath, class string) *FunctionDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	fn := &FunctionDecl{
		Name:    nameNode.Utf8Text(source),
		File:    filePath,
		Line:    int(node.StartPosition().Row) + 1,
		EndLine: int(node.EndPosition().Row) + 1,
		Class:   class,
	}

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = ret.Utf8Text(source)
	}

	params := node.ChildByFieldName("parameters")
	if params == nil {
		return fn
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p == nil {
			continue
		}
		if decl := pyParam(p, source); decl != nil && decl.Name != "self" {
			fn.Params = append(fn.Params, *decl)
		}
	}
	return fn
}

func pyParam(node *tree_sitter.Node, source []byte) *ParamDecl {
	switch node.Kind() {
	case "identifier":
		return &ParamDecl{Name: node.Utf8Text(source)}

	case "typed_parameter":
		var name string
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "identifier" {
				name = child.Utf8Text(source)
				break
			}
		}
		typeNode := node.ChildByFieldName("type")
		if name == "" || typeNode == nil {
			return nil
		}
		token, optional := pyAnnotation(typeNode.Utf8Text(source))
		return &ParamDecl{Name: name, Type: token, Optional: optional}

	case "default_parameter", "typed_default_parameter":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		decl := &ParamDecl{Name: nameNode.Utf8Text(source), Optional: true}
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			decl.Type, _ = pyAnnotation(typeNode.Utf8Text(source))
		}
		return decl
	}
	return nil
}

// extractClass records a class and its annotated fields. A class with at
// least one annotated field is a model candidate; plain classes still
// surface so method receivers resolve.
func (e *pyExtractor) extractClass(node *tree_sitter.Node, source []byte, filePath string, res *FileResult) *ClassDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	cls := &ClassDecl{
		Name: nameNode.Utf8Text(source),
		File: filePath,
		Line: int(node.StartPosition().Row) + 1,
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			child := supers.Child(i)
			if child != nil && (child.Kind() == "identifier" || child.Kind() == "attribute") {
				cls.Bases = append(cls.Bases, child.Utf8Text(source))
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		if stmt == nil {
			continue
		}
		switch stmt.Kind() {
		case "expression_statement":
			if field := pyClassField(stmt, source); field != nil {
				cls.Fields = append(cls.Fields, *field)
			}
		case "function_definition":
			if method := e.extractFunction(stmt, source, filePath, cls.Name); method != nil {
				res.Functions = append(res.Functions, *method)
			}
		}
	}
	return cls
}

// pyClassField reads one "name: annotation" or "name: annotation = default"
// class-body statement. A default value makes the field optional.
func pyClassField(stmt *tree_sitter.Node, source []byte) *FieldDecl {
	if stmt.ChildCount() == 0 {
		return nil
	}
	assign := stmt.Child(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	typeNode := assign.ChildByFieldName("type")
	if left == nil || typeNode == nil || left.Kind() != "identifier" {
		return nil
	}

	token, optional := pyAnnotation(typeNode.Utf8Text(source))
	if assign.ChildByFieldName("right") != nil {
		optional = true
	}
	return &FieldDecl{Name: left.Utf8Text(source), Type: token, Optional: optional}
}

// pyAnnotation reduces an annotation to its base token. Optional[...] and
// "x | None" unions mark the field optional; generics keep the outer
// token ("list[str]" reads as list).
func pyAnnotation(text string) (token string, optional bool) {
	text = strings.TrimSpace(text)

	if inner, ok := strings.CutPrefix(text, "Optional["); ok {
		text = strings.TrimSuffix(inner, "]")
		optional = true
	}
	if before, _, found := strings.Cut(text, "|"); found {
		text = strings.TrimSpace(before)
		optional = true
	}
	if before, _, found := strings.Cut(text, "["); found {
		text = before
	}
	return strings.TrimSpace(text), optional
}

func (e *pyExtractor) extractImports(node *tree_sitter.Node, source []byte, filePath string) []ImportDecl {
	var out []ImportDecl
	line := int(node.StartPosition().Row) + 1

	if node.Kind() == "import_from_statement" {
		if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
			out = append(out, ImportDecl{Module: moduleNode.Utf8Text(source), File: filePath, Line: line})
		}
		return out
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "dotted_name" {
			out = append(out, ImportDecl{Module: child.Utf8Text(source), File: filePath, Line: line})
		}
	}
	return out
}

// extractCall records a call with positional and keyword argument text.
// Positional arguments get empty binding names and are matched to callee
// parameters during graph construction.
func (e *pyExtractor) extractCall(node *tree_sitter.Node, source []byte, filePath string) *CallSite {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}

	var callee string
	switch fnNode.Kind() {
	case "identifier":
		callee = fnNode.Utf8Text(source)
	case "attribute":
		if attr := fnNode.ChildByFieldName("attribute"); attr != nil {
			callee = attr.Utf8Text(source)
		}
	default:
		return nil
	}
	if callee == "" {
		return nil
	}

	call := &CallSite{
		Caller: enclosingPyFunction(node, source),
		Callee: callee,
		File:   filePath,
		Line:   int(node.StartPosition().Row) + 1,
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			arg := args.Child(i)
			if arg == nil {
				continue
			}
			switch arg.Kind() {
			case "identifier", "attribute", "call", "string", "integer", "float":
				call.Args = append(call.Args, ir.ArgBinding{Value: arg.Utf8Text(source)})
			case "keyword_argument":
				name := arg.ChildByFieldName("name")
				value := arg.ChildByFieldName("value")
				if name != nil && value != nil {
					call.Args = append(call.Args, ir.ArgBinding{
						Name:  name.Utf8Text(source),
						Value: value.Utf8Text(source),
					})
				}
			}
		}
	}
	return call
}

func enclosingPyFunction(node *tree_sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "function_definition" {
			if name := p.ChildByFieldName("name"); name != nil {
				return name.Utf8Text(source)
			}
		}
	}
	return ""
}

// isPyTopLevel reports whether the node sits at module scope, directly or
// under a decorated_definition.
func isPyTopLevel(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "module" {
		return true
	}
	if parent.Kind() == "decorated_definition" {
		grandparent := parent.Parent()
		return grandparent != nil && grandparent.Kind() == "module"
	}
	return false
}

func trimPyString(s string) string {
	return strings.Trim(s, "\"'")
}
