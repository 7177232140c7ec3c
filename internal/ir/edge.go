package ir

// EdgeKind discriminates GraphEdge variants.
type EdgeKind string

const (
	EdgeKindImport   EdgeKind = "import"
	EdgeKindCall     EdgeKind = "call"
	EdgeKindDataFlow EdgeKind = "dataflow"
	EdgeKindReturn   EdgeKind = "return"
)

// GraphEdge is the closed set of edge payload variants. Endpoints live on
// the Edge record, not on the payload.
type GraphEdge interface {
	Kind() EdgeKind
	isEdge()
}

// ImportEdge records a module-level import.
type ImportEdge struct {
	ImportPath string `json:"importPath"`
	File       string `json:"file"`
}

// ArgBinding maps a callee parameter name to the argument expression text
// at the call site.
type ArgBinding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CallEdge records a call from one node to another.
type CallEdge struct {
	ArgumentMapping []ArgBinding `json:"argumentMapping,omitempty"`
	Location        Location     `json:"location"`
}

// DataFlowEdge records a named schema-to-schema conversion, e.g. a record
// mapping being loaded into a validated model.
type DataFlowEdge struct {
	FromSchema     SchemaReference `json:"fromSchema"`
	ToSchema       SchemaReference `json:"toSchema"`
	Location       Location        `json:"location"`
	Transformation string          `json:"transformation,omitempty"`
}

// ReturnEdge records a value returned from a function to its caller.
type ReturnEdge struct {
	Location    Location `json:"location"`
	ReturnValue string   `json:"returnValue,omitempty"`
}

func (ImportEdge) Kind() EdgeKind   { return EdgeKindImport }
func (CallEdge) Kind() EdgeKind     { return EdgeKindCall }
func (DataFlowEdge) Kind() EdgeKind { return EdgeKindDataFlow }
func (ReturnEdge) Kind() EdgeKind   { return EdgeKindReturn }

func (ImportEdge) isEdge()   {}
func (CallEdge) isEdge()     {}
func (DataFlowEdge) isEdge() {}
func (ReturnEdge) isEdge()   {}

// Edge joins two nodes of the same graph with a typed payload.
type Edge struct {
	From    NodeID
	To      NodeID
	Payload GraphEdge
}
