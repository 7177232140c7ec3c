// Package export renders analysis results into external formats: Mermaid
// diagrams for documentation and a Kuzu graph database for ad-hoc
// querying.
package export

import (
	"fmt"
	"strings"

	"github.com/seamcheck/seamcheck/internal/contract"
)

// GenerateMermaid produces a Mermaid flowchart of the given chains. Each
// chain becomes a subgraph; links become nodes labeled with their schema,
// and contract arrows carry the severity when it is above info.
func GenerateMermaid(chains []contract.DataChain) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	for ci, c := range chains {
		sb.WriteString(fmt.Sprintf("  subgraph C%d[\"%s\"]\n", ci, escapeLabel(c.Name)))
		for _, l := range c.Links {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(l.ID), linkLabel(l)))
		}
		sb.WriteString("  end\n")

		for _, ct := range c.Contracts {
			src := getID(ct.FromLink)
			dst := getID(ct.ToLink)
			if ct.Severity == contract.SeverityInfo {
				sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, dst))
			} else {
				sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", src, ct.Severity, dst))
			}
		}
	}
	return sb.String()
}

func linkLabel(l contract.Link) string {
	name := l.Schema.Name
	if name == "" {
		name = "?"
	}
	return escapeLabel(fmt.Sprintf("%s: %s", l.Type, name))
}

// escapeLabel strips characters Mermaid treats as syntax.
func escapeLabel(s string) string {
	r := strings.NewReplacer("\"", "'", "[", "(", "]", ")", "{", "(", "}", ")")
	return r.Replace(s)
}
