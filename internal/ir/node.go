package ir

// NodeID is an opaque handle into one Graph's node storage. IDs are only
// meaningful within the Graph that issued them; comparing IDs from two
// different graphs is a caller bug.
type NodeID int

// InvalidNode is returned where no node applies (e.g. unresolved handler).
const InvalidNode NodeID = -1

// NodeKind discriminates GraphNode variants.
type NodeKind string

const (
	NodeKindModule   NodeKind = "module"
	NodeKindFunction NodeKind = "function"
	NodeKindMethod   NodeKind = "method"
	NodeKindClass    NodeKind = "class"
	NodeKindRoute    NodeKind = "route"
	NodeKindSchema   NodeKind = "schema"
)

// GraphNode is the closed set of node variants stored in a Graph. The
// unexported marker keeps the set sealed: every consumer switches on Kind()
// and the exhaustiveness test in graph_test.go fails when a variant is added
// without updating the switches.
type GraphNode interface {
	Kind() NodeKind
	isNode()
}

// Location points at a source position.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// ModuleNode represents one source module (a file or package).
type ModuleNode struct {
	Path string `json:"path"`
}

// FunctionNode represents a free function.
type FunctionNode struct {
	Name       string      `json:"name"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Params     []Parameter `json:"params,omitempty"`
	ReturnType *TypeInfo   `json:"returnType,omitempty"`
}

// MethodNode represents a method. Class is a back-reference into the same
// graph, never ownership.
type MethodNode struct {
	Name       string      `json:"name"`
	Class      NodeID      `json:"class"`
	Params     []Parameter `json:"params,omitempty"`
	ReturnType *TypeInfo   `json:"returnType,omitempty"`
}

// ClassNode represents a class or model declaration. Methods holds IDs of
// MethodNodes owned by the graph arena, not by this node.
type ClassNode struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Methods []NodeID `json:"methods,omitempty"`
	// Schema caches the structural schema extracted from the class body,
	// when the extractor could produce one.
	Schema *SchemaReference `json:"schema,omitempty"`
}

// RouteNode represents one HTTP endpoint discovered in source.
type RouteNode struct {
	Path           string           `json:"path"`
	Method         string           `json:"method"`
	Handler        NodeID           `json:"handler"`
	Location       Location         `json:"location"`
	RequestSchema  *SchemaReference `json:"requestSchema,omitempty"`
	ResponseSchema *SchemaReference `json:"responseSchema,omitempty"`
}

// SchemaNode wraps a bare schema declaration (a zod object, a record
// mapping) that participates in the graph without a carrier function.
type SchemaNode struct {
	Schema SchemaReference `json:"schema"`
}

func (ModuleNode) Kind() NodeKind   { return NodeKindModule }
func (FunctionNode) Kind() NodeKind { return NodeKindFunction }
func (MethodNode) Kind() NodeKind   { return NodeKindMethod }
func (ClassNode) Kind() NodeKind    { return NodeKindClass }
func (RouteNode) Kind() NodeKind    { return NodeKindRoute }
func (SchemaNode) Kind() NodeKind   { return NodeKindSchema }

func (ModuleNode) isNode()   {}
func (FunctionNode) isNode() {}
func (MethodNode) isNode()   {}
func (ClassNode) isNode()    {}
func (RouteNode) isNode()    {}
func (SchemaNode) isNode()   {}

// Parameter is a named, typed function/method parameter.
type Parameter struct {
	Name         string   `json:"name"`
	Type         TypeInfo `json:"type"`
	Optional     bool     `json:"optional,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
}
