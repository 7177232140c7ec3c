package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// tsExtractor extracts declarations from TypeScript source files: runtime
// validator objects, interfaces, functions, and the HTTP client calls
// that tie validators to API endpoints.
type tsExtractor struct{}

var tsHTTPMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) FileResult {
	var res FileResult

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, filePath, &res)
	return res
}

func (e *tsExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath string, res *FileResult) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if fn := e.extractFunction(node, source, filePath); fn != nil {
			res.Functions = append(res.Functions, *fn)
		}

	case "interface_declaration":
		if decl := e.extractInterface(node, source, filePath); decl != nil {
			res.Structurals = append(res.Structurals, *decl)
		}

	case "lexical_declaration":
		e.extractDeclarators(node, source, filePath, res)

	case "import_statement":
		if imp := e.extractImport(node, source, filePath); imp != nil {
			res.Imports = append(res.Imports, *imp)
		}

	case "call_expression":
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

func (e *tsExtractor) extractFunction(node *tree_sitter.Node, source []byte, filePath string) *FunctionDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &FunctionDecl{
		Name:    nameNode.Utf8Text(source),
		File:    filePath,
		Line:    int(node.StartPosition().Row) + 1,
		EndLine: int(node.EndPosition().Row) + 1,
	}
	e.fillParams(fn, node.ChildByFieldName("parameters"), source)
	return fn
}

func (e *tsExtractor) fillParams(fn *FunctionDecl, params *tree_sitter.Node, source []byte) {
	if params == nil {
		return
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			pat := p.ChildByFieldName("pattern")
			if pat == nil || pat.Kind() != "identifier" {
				continue
			}
			decl := ParamDecl{
				Name:     pat.Utf8Text(source),
				Optional: p.Kind() == "optional_parameter",
			}
			if ann := p.ChildByFieldName("type"); ann != nil {
				decl.Type = tsTypeToken(ann.Utf8Text(source))
			}
			if p.ChildByFieldName("value") != nil {
				decl.Optional = true
			}
			fn.Params = append(fn.Params, decl)
		}
	}
}

// extractInterface reads an interface body into a structural declaration.
// A "?" after the property name marks the field optional.
func (e *tsExtractor) extractInterface(node *tree_sitter.Node, source []byte, filePath string) *StructuralDecl {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return nil
	}

	decl := &StructuralDecl{
		Name: nameNode.Utf8Text(source),
		File: filePath,
		Line: int(node.StartPosition().Row) + 1,
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		prop := body.Child(i)
		if prop == nil || prop.Kind() != "property_signature" {
			continue
		}
		propName := prop.ChildByFieldName("name")
		if propName == nil {
			continue
		}
		field := FieldDecl{Name: propName.Utf8Text(source)}
		if ann := prop.ChildByFieldName("type"); ann != nil {
			field.Type = tsTypeToken(ann.Utf8Text(source))
		}
		for j := uint(0); j < prop.ChildCount(); j++ {
			if c := prop.Child(j); c != nil && c.Kind() == "?" {
				field.Optional = true
			}
		}
		decl.Fields = append(decl.Fields, field)
	}
	return decl
}

// extractDeclarators handles "const x = ..." declarations: validator
// objects and arrow functions.
func (e *tsExtractor) extractDeclarators(node *tree_sitter.Node, source []byte, filePath string, res *FileResult) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		line := int(child.StartPosition().Row) + 1

		switch valueNode.Kind() {
		case "call_expression":
			if fields, ok := e.validatorFields(valueNode, source); ok {
				res.Validators = append(res.Validators, ValidatorDecl{
					Name:   name,
					File:   filePath,
					Line:   line,
					Fields: fields,
				})
			}
		case "arrow_function":
			fn := &FunctionDecl{
				Name:    name,
				File:    filePath,
				Line:    line,
				EndLine: int(child.EndPosition().Row) + 1,
			}
			e.fillParams(fn, valueNode.ChildByFieldName("parameters"), source)
			res.Functions = append(res.Functions, *fn)
		}
	}
}

// validatorFields recognizes "z.object({...})" and reads each property's
// validator chain. The chain text decides the field: the token after "z."
// is the type, and ".optional()" or ".nullable()" anywhere in the chain
// makes the field optional.
func (e *tsExtractor) validatorFields(call *tree_sitter.Node, source []byte) ([]FieldDecl, bool) {
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil || fnNode.Kind() != "member_expression" {
		return nil, false
	}
	obj := fnNode.ChildByFieldName("object")
	prop := fnNode.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return nil, false
	}
	if obj.Utf8Text(source) != "z" || prop.Utf8Text(source) != "object" {
		return nil, false
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.ChildCount() == 0 {
		return nil, false
	}
	var objNode *tree_sitter.Node
	for i := uint(0); i < args.ChildCount(); i++ {
		if c := args.Child(i); c != nil && c.Kind() == "object" {
			objNode = c
			break
		}
	}
	if objNode == nil {
		return nil, false
	}

	var fields []FieldDecl
	for i := uint(0); i < objNode.ChildCount(); i++ {
		pair := objNode.Child(i)
		if pair == nil || pair.Kind() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		value := pair.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		chain := value.Utf8Text(source)
		fields = append(fields, FieldDecl{
			Name:     strings.Trim(key.Utf8Text(source), "\"'"),
			Type:     zodToken(chain),
			Optional: strings.Contains(chain, ".optional()") || strings.Contains(chain, ".nullable()"),
		})
	}
	return fields, true
}

// zodToken pulls the base validator name out of a chain like
// "z.string().min(1).optional()".
func zodToken(chain string) string {
	after, ok := strings.CutPrefix(strings.TrimSpace(chain), "z.")
	if !ok {
		return ""
	}
	if idx := strings.IndexAny(after, "(.<"); idx >= 0 {
		return after[:idx]
	}
	return after
}

func (e *tsExtractor) extractImport(node *tree_sitter.Node, source []byte, filePath string) *ImportDecl {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return nil
	}

	importPath := strings.Trim(sourceNode.Utf8Text(source), "\"'`")
	if importPath == "" {
		return nil
	}
	return &ImportDecl{Module: importPath, File: filePath, Line: int(node.StartPosition().Row) + 1}
}

// extractCall records a call. fetch(url, {method: ...}) and
// axios.<method>(url, ...) become HTTP call sites carrying the URL and
// method; everything else is an ordinary call.
func (e *tsExtractor) extractCall(node *tree_sitter.Node, source []byte, filePath string) *CallSite {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}

	call := &CallSite{
		Caller: enclosingTSFunction(node, source),
		File:   filePath,
		Line:   int(node.StartPosition().Row) + 1,
	}

	switch fnNode.Kind() {
	case "identifier":
		call.Callee = fnNode.Utf8Text(source)
		if call.Callee == "fetch" {
			e.fillFetch(call, node, source)
		}
	case "member_expression":
		obj := fnNode.ChildByFieldName("object")
		prop := fnNode.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return nil
		}
		call.Callee = prop.Utf8Text(source)
		if obj.Kind() == "identifier" && obj.Utf8Text(source) == "axios" && tsHTTPMethods[call.Callee] {
			call.HTTPMethod = strings.ToUpper(call.Callee)
			if url := firstStringArg(node, source); url != "" {
				call.URL = url
			}
		}
	default:
		return nil
	}
	if call.Callee == "" {
		return nil
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			arg := args.Child(i)
			if arg == nil {
				continue
			}
			switch arg.Kind() {
			case "identifier", "member_expression", "call_expression":
				call.Args = append(call.Args, ir.ArgBinding{Value: arg.Utf8Text(source)})
			}
		}
	}
	return call
}

// fillFetch reads fetch's URL argument and the method property of its
// options object. A fetch without an explicit method is a GET.
func (e *tsExtractor) fillFetch(call *CallSite, node *tree_sitter.Node, source []byte) {
	call.URL = firstStringArg(node, source)
	call.HTTPMethod = "GET"

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Kind() != "object" {
			continue
		}
		for j := uint(0); j < arg.ChildCount(); j++ {
			pair := arg.Child(j)
			if pair == nil || pair.Kind() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			if key != nil && value != nil && key.Utf8Text(source) == "method" {
				call.HTTPMethod = strings.ToUpper(strings.Trim(value.Utf8Text(source), "\"'`"))
			}
		}
	}
}

func firstStringArg(call *tree_sitter.Node, source []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Kind() {
		case "string", "template_string":
			return strings.Trim(arg.Utf8Text(source), "\"'`")
		}
	}
	return ""
}

// tsTypeToken reduces a type annotation like ": Item[]" to its base token.
func tsTypeToken(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
	text = strings.TrimSuffix(text, "[]")
	if before, _, found := strings.Cut(text, "<"); found {
		text = before
	}
	if before, _, found := strings.Cut(text, "|"); found {
		text = strings.TrimSpace(before)
	}
	return strings.TrimSpace(text)
}

func enclosingTSFunction(node *tree_sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "function_declaration", "method_definition":
			if name := p.ChildByFieldName("name"); name != nil {
				return name.Utf8Text(source)
			}
		case "variable_declarator":
			if value := p.ChildByFieldName("value"); value != nil && value.Kind() == "arrow_function" {
				if name := p.ChildByFieldName("name"); name != nil {
					return name.Utf8Text(source)
				}
			}
		}
	}
	return ""
}
