// Package report renders analysis results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/seamcheck/seamcheck/internal/contract"
)

// RouteReconciliation is the outcome of comparing discovered routes with
// the API document.
type RouteReconciliation struct {
	MissingInSpec []string `json:"missingInSpec,omitempty"`
	MissingInCode []string `json:"missingInCode,omitempty"`
}

// Summary aggregates counts over all chains.
type Summary struct {
	Chains     int `json:"chains"`
	Contracts  int `json:"contracts"`
	Mismatches int `json:"mismatches"`
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Info       int `json:"info"`
}

// Report is the top-level result structure.
type Report struct {
	Project     string               `json:"project"`
	GeneratedAt string               `json:"generatedAt"`
	Chains      []contract.DataChain `json:"chains"`
	Routes      *RouteReconciliation `json:"routes,omitempty"`
	Summary     Summary              `json:"summary"`
}

// Build assembles a Report and computes its summary.
func Build(project string, chains []contract.DataChain, routes *RouteReconciliation) *Report {
	r := &Report{
		Project:     project,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Chains:      chains,
		Routes:      routes,
	}
	r.Summary.Chains = len(chains)
	for _, c := range chains {
		r.Summary.Contracts += len(c.Contracts)
		for _, ct := range c.Contracts {
			r.Summary.Mismatches += len(ct.Mismatches)
			switch ct.Severity {
			case contract.SeverityCritical:
				r.Summary.Critical++
			case contract.SeverityWarning:
				r.Summary.Warning++
			default:
				r.Summary.Info++
			}
		}
	}
	return r
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Text renders a human-readable summary. Chains print in name order;
// clean contracts print one line, mismatches one line each.
func (r *Report) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "seamcheck: %s\n\n", r.Project)

	chains := make([]contract.DataChain, len(r.Chains))
	copy(chains, r.Chains)
	sort.Slice(chains, func(i, j int) bool { return chains[i].Name < chains[j].Name })

	for _, c := range chains {
		fmt.Fprintf(&sb, "%s  [%s, %s]\n", c.Name, c.Type, c.Direction)
		for i, ct := range c.Contracts {
			fmt.Fprintf(&sb, "  contract %d: %s -> %s  [%s]\n",
				i+1, schemaLabel(ct.FromSchema.Name), schemaLabel(ct.ToSchema.Name), ct.Severity)
			for _, m := range ct.Mismatches {
				fmt.Fprintf(&sb, "    %s %s at %q: %s\n", marker(m.Level), m.Kind, m.Path, m.Message)
				if m.Location.File != "" {
					fmt.Fprintf(&sb, "      %s:%d\n", m.Location.File, m.Location.Line)
				}
			}
		}
		sb.WriteString("\n")
	}

	if r.Routes != nil && (len(r.Routes.MissingInSpec) > 0 || len(r.Routes.MissingInCode) > 0) {
		sb.WriteString("route reconciliation:\n")
		for _, rt := range r.Routes.MissingInSpec {
			fmt.Fprintf(&sb, "  undeclared in spec: %s\n", rt)
		}
		for _, rt := range r.Routes.MissingInCode {
			fmt.Fprintf(&sb, "  unimplemented:      %s\n", rt)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%d chains, %d contracts, %d mismatches (%d critical, %d warning, %d info)\n",
		r.Summary.Chains, r.Summary.Contracts, r.Summary.Mismatches,
		r.Summary.Critical, r.Summary.Warning, r.Summary.Info)
	return sb.String()
}

func schemaLabel(name string) string {
	if name == "" {
		return "<unknown>"
	}
	return name
}

func marker(level contract.SeverityLevel) string {
	switch level {
	case contract.LevelCritical:
		return "✗"
	case contract.LevelHigh:
		return "!"
	case contract.LevelMedium:
		return "~"
	default:
		return "-"
	}
}
