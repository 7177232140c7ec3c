//go:build e2e

package e2e

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamcheck/seamcheck/internal/analyzer"
	"github.com/seamcheck/seamcheck/internal/config"
	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/export"
)

func fixtureRoot() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "webapp")
}

// TestPipeline_E2E runs the full analysis over the fixture webapp and
// verifies chain discovery, contract checking, and route reconciliation
// end to end.
func TestPipeline_E2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := &config.ProjectConfig{SpecPath: "openapi.yml"}
	res, err := analyzer.New(fixtureRoot(), cfg).Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Graph)
	require.NotNil(t, res.Index)

	chains := make(map[string]*contract.DataChain, len(res.Chains))
	for i := range res.Chains {
		chains[res.Chains[i].Name] = &res.Chains[i]
	}
	require.Contains(t, chains, "POST /items")
	require.Contains(t, chains, "GET /items/{item_id}")
	require.Contains(t, chains, "itemSchema -> POST /items")

	// The backend chain walks route -> handler -> service function.
	post := chains["POST /items"]
	require.GreaterOrEqual(t, len(post.Links), 3)
	assert.Equal(t, contract.LinkSource, post.Links[0].Type)

	// The zod validator sends price as a string; the backend model wants
	// a number. Exactly the drift the checker exists to find.
	var priceMismatch bool
	for _, ct := range chains["itemSchema -> POST /items"].Contracts {
		for _, m := range ct.Mismatches {
			if m.Kind == contract.TypeMismatch && strings.Contains(m.Path, "price") {
				priceMismatch = true
			}
		}
	}
	assert.True(t, priceMismatch, "price string/number drift should be reported")

	// DELETE /items/{item_id} is documented but never implemented.
	require.NotNil(t, res.Report.Routes)
	assert.Contains(t, res.Report.Routes.MissingInCode, "DELETE /items/{item_id}")
	assert.Empty(t, res.Report.Routes.MissingInSpec)

	assert.Positive(t, res.Report.Summary.Critical)
}

// copyFixture clones the fixture webapp into a temp dir so the cache can
// live under the project root without touching testdata.
func copyFixture(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	err := filepath.WalkDir(fixtureRoot(), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(fixtureRoot(), path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
	return dst
}

// TestPipeline_E2E_CacheReuse runs the analysis twice with a shared cache
// directory and verifies the cached graph reproduces the same results.
func TestPipeline_E2E_CacheReuse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	root := copyFixture(t)
	cfg := &config.ProjectConfig{SpecPath: "openapi.yml", CacheDir: ".seamcheck-cache"}

	first, err := analyzer.New(root, cfg).Run(ctx)
	require.NoError(t, err)

	second, err := analyzer.New(root, cfg).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Graph.NodeCount(), second.Graph.NodeCount())
	assert.Equal(t, first.Graph.EdgeCount(), second.Graph.EdgeCount())
	assert.Equal(t, first.Report.Summary, second.Report.Summary)
}

// TestPipeline_E2E_Diagram renders the discovered chains as Mermaid.
func TestPipeline_E2E_Diagram(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := analyzer.New(fixtureRoot(), &config.ProjectConfig{}).Run(ctx)
	require.NoError(t, err)

	diagram := export.GenerateMermaid(res.Chains)
	assert.True(t, strings.HasPrefix(diagram, "flowchart LR"))
	assert.Contains(t, diagram, "POST /items")
}
