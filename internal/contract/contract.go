// Package contract holds the data-chain model: links, pairwise contracts
// between consecutive links, and classified mismatches. These types are the
// only shape the report renderers depend on.
package contract

import "github.com/seamcheck/seamcheck/internal/ir"

// LinkType positions a link within its chain.
type LinkType string

const (
	LinkSource      LinkType = "source"
	LinkTransformer LinkType = "transformer"
	LinkSink        LinkType = "sink"
)

// Link is one node of a data chain, carrying the schema observed there.
type Link struct {
	ID       string             `json:"id"`
	Type     LinkType           `json:"type"`
	Location ir.Location        `json:"location"`
	Node     ir.NodeID          `json:"node"`
	Schema   ir.SchemaReference `json:"schema"`
}

// MismatchKind classifies one disagreement between two canonical schemas.
type MismatchKind string

const (
	TypeMismatch     MismatchKind = "type_mismatch"
	MissingField     MismatchKind = "missing_field"
	ExtraField       MismatchKind = "extra_field"
	ValidationSkew   MismatchKind = "validation_mismatch"
	UnnormalizedData MismatchKind = "unnormalized_data"
	MissingSchema    MismatchKind = "missing_schema"
)

// SeverityLevel ranks a single mismatch.
type SeverityLevel int

const (
	LevelLow SeverityLevel = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

func (s SeverityLevel) String() string {
	switch s {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText makes SeverityLevel render as its name in JSON reports.
func (s SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Severity is the aggregate verdict for a whole contract. The aggregate
// scale (info/warning/critical) is deliberately coarser than the
// per-mismatch SeverityLevel scale.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Mismatch is one classified disagreement at a field path.
type Mismatch struct {
	Kind     MismatchKind  `json:"kind"`
	Path     string        `json:"path"`
	Expected ir.TypeInfo   `json:"expected"`
	Actual   ir.TypeInfo   `json:"actual"`
	Location ir.Location   `json:"location"`
	Message  string        `json:"message"`
	Level    SeverityLevel `json:"level"`
}

// Contract compares the schemas of two consecutive links in a chain.
// Mismatches and Severity are written by the rule checker after chain
// discovery; the builder only sets the initial severity.
type Contract struct {
	FromLink   string             `json:"fromLink"`
	ToLink     string             `json:"toLink"`
	FromSchema ir.SchemaReference `json:"fromSchema"`
	ToSchema   ir.SchemaReference `json:"toSchema"`
	Mismatches []Mismatch         `json:"mismatches,omitempty"`
	Severity   Severity           `json:"severity"`
}

// Direction orients a chain relative to the stack.
type Direction string

const (
	FrontendToBackend Direction = "frontend_to_backend"
	BackendToFrontend Direction = "backend_to_frontend"
)

// ChainType classifies which layers a chain spans.
type ChainType string

const (
	ChainFull             ChainType = "full"
	ChainFrontendInternal ChainType = "frontend_internal"
	ChainBackendInternal  ChainType = "backend_internal"
)

// DataChain is one ordered data path from an API entry point through
// transformations to a terminal representation (or the reverse).
//
// Shape invariants: Links is non-empty; Links[0] is a source and the last
// link a sink; len(Contracts) == len(Links)-1 with contract i joining
// links i and i+1.
type DataChain struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Links     []Link     `json:"links"`
	Contracts []Contract `json:"contracts,omitempty"`
	Direction Direction  `json:"direction"`
	Type      ChainType  `json:"type"`
}
