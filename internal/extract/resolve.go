package extract

import (
	"log"
	"path"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// candidate is one graph node a name could resolve to.
type candidate struct {
	id   ir.NodeID
	file string
}

// resolveName picks one candidate for a name referenced from fromFile.
// Ties break in a fixed order: a candidate in the same directory wins,
// then the longest common path prefix, then the lexicographically
// smallest file. Ambiguity is resolved, never fatal, and always logged.
func resolveName(name, fromFile string, candidates []candidate) (ir.NodeID, bool) {
	switch len(candidates) {
	case 0:
		return ir.InvalidNode, false
	case 1:
		return candidates[0].id, true
	}

	best := candidates[0]
	bestScore := resolutionScore(fromFile, best.file)
	for _, c := range candidates[1:] {
		score := resolutionScore(fromFile, c.file)
		if score > bestScore || (score == bestScore && c.file < best.file) {
			best, bestScore = c, score
		}
	}

	log.Printf("ambiguous reference %q from %s: %d candidates, resolved to %s", name, fromFile, len(candidates), best.file)
	return best.id, true
}

// resolutionScore ranks a candidate file against the referencing file.
// Same directory scores above any prefix match.
func resolutionScore(fromFile, candidateFile string) int {
	if path.Dir(fromFile) == path.Dir(candidateFile) {
		return 1 << 16
	}
	return commonPrefixLen(fromFile, candidateFile)
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// nameTable maps declared names to their candidate nodes.
type nameTable map[string][]candidate

func (t nameTable) add(name, file string, id ir.NodeID) {
	t[name] = append(t[name], candidate{id: id, file: file})
}

// resolve picks a node for name as seen from fromFile.
func (t nameTable) resolve(name, fromFile string) (ir.NodeID, bool) {
	return resolveName(name, fromFile, t[name])
}
