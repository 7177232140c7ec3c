// Package analyzer runs the full pipeline: scan sources, parse, build
// the graph, discover chains, and check every contract.
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seamcheck/seamcheck/internal/apispec"
	"github.com/seamcheck/seamcheck/internal/cache"
	"github.com/seamcheck/seamcheck/internal/chains"
	"github.com/seamcheck/seamcheck/internal/config"
	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/extract"
	"github.com/seamcheck/seamcheck/internal/ir"
	"github.com/seamcheck/seamcheck/internal/normalize"
	"github.com/seamcheck/seamcheck/internal/report"
	"github.com/seamcheck/seamcheck/internal/rules"
)

// defaultExcludes are skipped in every scan on top of the configured
// exclude list.
var defaultExcludes = []string{".git", "node_modules", ".venv", "venv", "__pycache__", "dist", "build"}

// Analyzer wires the pipeline together for one project root.
type Analyzer struct {
	root     string
	cfg      *config.ProjectConfig
	progress *ProgressReporter
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithProgress attaches a progress reporter.
func WithProgress(pr *ProgressReporter) Option {
	return func(a *Analyzer) { a.progress = pr }
}

// New creates an Analyzer for the project at root.
func New(root string, cfg *config.ProjectConfig, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	a := &Analyzer{root: root, cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is everything one analysis run produced. Graph and Index stay
// available so interactive consumers can answer follow-up queries without
// re-running the pipeline.
type Result struct {
	Graph  *ir.Graph
	Index  *apispec.Index
	Chains []contract.DataChain
	Report *report.Report
}

// Run executes the pipeline.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	a.progress.Emit(ProgressEvent{Stage: StageScan, Status: ProgressWorking})
	sources, err := a.collectSources()
	if err != nil {
		a.progress.Emit(ProgressEvent{Stage: StageScan, Status: ProgressFailed, Message: err.Error()})
		return nil, err
	}
	a.progress.Emit(ProgressEvent{Stage: StageScan, Status: ProgressComplete, Message: fmt.Sprintf("%d files", len(sources))})

	g, err := a.buildGraph(ctx, sources)
	if err != nil {
		return nil, err
	}

	var idx *apispec.Index
	if a.cfg.SpecPath != "" {
		doc, err := apispec.LoadDocument(filepath.Join(a.root, a.cfg.SpecPath))
		if err != nil {
			return nil, fmt.Errorf("load api document: %w", err)
		}
		idx = apispec.NewIndex(doc)
	}

	a.progress.Emit(ProgressEvent{Stage: StageChains, Status: ProgressWorking})
	builder := chains.NewBuilder(g)
	allChains, err := builder.FindAllChains()
	if err != nil {
		a.progress.Emit(ProgressEvent{Stage: StageChains, Status: ProgressFailed, Message: err.Error()})
		return nil, err
	}
	if idx != nil {
		allChains = append(allChains, builder.FindValidatorModelChains(idx)...)
	}
	a.progress.Emit(ProgressEvent{Stage: StageChains, Status: ProgressComplete, Message: fmt.Sprintf("%d chains", len(allChains))})

	a.progress.Emit(ProgressEvent{Stage: StageCheck, Status: ProgressWorking})
	if err := a.checkChains(ctx, allChains); err != nil {
		a.progress.Emit(ProgressEvent{Stage: StageCheck, Status: ProgressFailed, Message: err.Error()})
		return nil, err
	}
	a.progress.Emit(ProgressEvent{Stage: StageCheck, Status: ProgressComplete})

	a.progress.Emit(ProgressEvent{Stage: StageReport, Status: ProgressWorking})
	rep := report.Build(a.root, allChains, a.reconcileRoutes(g, idx))
	a.progress.Emit(ProgressEvent{Stage: StageReport, Status: ProgressComplete})

	return &Result{Graph: g, Index: idx, Chains: allChains, Report: rep}, nil
}

// buildGraph parses the sources into a graph, going through the snapshot
// cache when one is configured.
func (a *Analyzer) buildGraph(ctx context.Context, sources map[string][]byte) (*ir.Graph, error) {
	var store *cache.Store
	var key string
	if a.cfg.CacheDir != "" {
		var err error
		store, err = cache.NewStore(filepath.Join(a.root, a.cfg.CacheDir))
		if err != nil {
			return nil, err
		}
		key = cache.Key(sources)
		g, hit, err := store.Get(key)
		if err != nil {
			return nil, err
		}
		if hit {
			a.progress.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressComplete, Message: "cache hit"})
			return g, nil
		}
	}

	a.progress.Emit(ProgressEvent{Stage: StageParse, Status: ProgressWorking})
	parser := extract.NewParser()
	builder := extract.NewGraphBuilder(a.policy())

	files := make([]string, 0, len(sources))
	for f := range sources {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		lang := extract.DetectLanguage(file)
		if lang == extract.LangUnknown {
			continue
		}
		res, err := parser.Parse(ctx, file, sources[file], lang)
		if err != nil {
			// A file tree-sitter cannot parse degrades that file, not the run.
			log.Printf("parse %s: %v", file, err)
			continue
		}
		builder.Add(*res)
	}
	a.progress.Emit(ProgressEvent{Stage: StageParse, Status: ProgressComplete})

	a.progress.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressWorking})
	g := builder.Build()
	a.progress.Emit(ProgressEvent{Stage: StageGraph, Status: ProgressComplete,
		Message: fmt.Sprintf("%d nodes, %d edges", g.NodeCount(), g.EdgeCount())})

	if store != nil {
		if err := store.Put(key, g); err != nil {
			log.Printf("cache write failed: %v", err)
		}
	}
	return g, nil
}

// checkChains runs the rule checker over every chain. Chains are
// independent, so checking parallelizes across them; the shared
// normalizer cache is safe for concurrent use.
func (a *Analyzer) checkChains(ctx context.Context, allChains []contract.DataChain) error {
	checker := rules.NewChecker(normalize.New())

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i := range allChains {
		eg.Go(func() error {
			checker.CheckChain(&allChains[i])
			return nil
		})
	}
	return eg.Wait()
}

// reconcileRoutes compares discovered routes with the API document.
func (a *Analyzer) reconcileRoutes(g *ir.Graph, idx *apispec.Index) *report.RouteReconciliation {
	if idx == nil {
		return nil
	}

	var discovered []apispec.RouteKey
	for _, id := range g.Routes() {
		node, _ := g.Node(id)
		rn := node.(ir.RouteNode)
		discovered = append(discovered, apispec.RouteKey{Path: rn.Path, Method: rn.Method})
	}

	missingInSpec, missingInCode := idx.ValidateRoutes(discovered)
	if len(missingInSpec) == 0 && len(missingInCode) == 0 {
		return &report.RouteReconciliation{}
	}
	rec := &report.RouteReconciliation{}
	for _, k := range missingInSpec {
		rec.MissingInSpec = append(rec.MissingInSpec, k.String())
	}
	for _, k := range missingInCode {
		rec.MissingInCode = append(rec.MissingInCode, k.String())
	}
	return rec
}

func (a *Analyzer) policy() extract.Policy {
	if len(a.cfg.UntypedTokens) > 0 {
		return extract.Policy{UntypedTokens: a.cfg.UntypedTokens}
	}
	return extract.DefaultPolicy()
}

// collectSources walks the configured directories and reads every
// supported source file, keyed by path relative to the project root.
func (a *Analyzer) collectSources() (map[string][]byte, error) {
	dirs := []string{}
	if a.cfg.BackendDir != "" {
		dirs = append(dirs, a.cfg.BackendDir)
	}
	if a.cfg.FrontendDir != "" {
		dirs = append(dirs, a.cfg.FrontendDir)
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	excluded := make(map[string]bool)
	for _, d := range defaultExcludes {
		excluded[d] = true
	}
	for _, d := range a.cfg.ExcludeDirs {
		excluded[d] = true
	}

	sources := make(map[string][]byte)
	for _, dir := range dirs {
		rootDir := filepath.Join(a.root, dir)
		err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excluded[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if extract.DetectLanguage(path) == extract.LangUnknown {
				return nil
			}
			rel, err := filepath.Rel(a.root, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			sources[filepath.ToSlash(rel)] = data
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	return sources, nil
}
