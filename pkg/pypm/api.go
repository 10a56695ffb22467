package pypm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nullpx/pypm/internal/cache"
	"github.com/nullpx/pypm/internal/index"
	"github.com/nullpx/pypm/internal/parse"
	"github.com/nullpx/pypm/internal/parsecache"
	"github.com/nullpx/pypm/internal/resolve"
	"github.com/nullpx/pypm/internal/scan"
)

const cacheNamespace = "pypm"

// defaultPyPIBaseURL is the public PyPI JSON API, used unless
// Options.IndexBaseURL or Options.Offline override it.
const defaultPyPIBaseURL = "https://pypi.org"

// resolveWorkerDefaults fills in Options fields left at zero with the
// runtime-derived defaults: CPU-bound work scales with NumCPU, I/O-bound
// lookups use a fixed, generous pool independent of core count.
func resolveWorkerDefaults(opts *Options) {
	if opts.ParseWorkers <= 0 {
		opts.ParseWorkers = min(runtime.NumCPU(), 32)
		if opts.ParseWorkers < 1 {
			opts.ParseWorkers = 1
		}
	}
	if opts.LookupWorkers <= 0 {
		opts.LookupWorkers = 64
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Scan walks root and returns every eligible Python source file,
// sorted lexicographically.
func Scan(ctx context.Context, root string, opts Options) ([]FilePath, error) {
	w := scan.New(opts)
	return w.Scan(root)
}

// ParseMany parses every path in paths, consulting and populating the
// on-disk Parse Cache, using a bounded worker pool sized to
// opts.ParseWorkers (CPU-bound, so it scales with core count rather
// than with network concurrency).
func ParseMany(ctx context.Context, paths []FilePath, opts Options) (map[FilePath]ParseResult, []Warning) {
	resolveWorkerDefaults(&opts)

	pc := loadParseCache(opts)
	defer func() {
		if ctx.Err() == nil {
			pc.Save()
		}
	}()

	var (
		mu       sync.Mutex
		warnings []Warning
		results  = make(map[FilePath]ParseResult, len(paths))
	)
	warn := func(w Warning) {
		mu.Lock()
		warnings = append(warnings, w)
		mu.Unlock()
	}

	workers := opts.ParseWorkers
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	parsers := make([]*parse.Parser, workers)
	for i := range parsers {
		py, err := parse.NewPythonParser()
		if err != nil {
			warn(Warning{Kind: WarnTransient, Subject: "tree-sitter", Message: err.Error()})
			return results, warnings
		}
		defer py.Close()
		p := parse.New(py, pc)
		p.Warn = warn
		parsers[i] = p
	}

	jobs := make(chan int)
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for idx := range jobs {
				path := paths[idx]
				result := parsers[w].ParseFile(path)
				mu.Lock()
				results[path] = result
				mu.Unlock()
				if opts.OnFileParsed != nil {
					opts.OnFileParsed()
				}
			}
			return nil
		})
	}
	go func() {
		for i := range paths {
			jobs <- i
		}
		close(jobs)
	}()
	_ = g.Wait()

	return results, warnings
}

func loadParseCache(opts Options) *parsecache.Cache {
	return parsecache.Load(filepath.Join(cacheDir(opts), "parse.json"))
}

func cacheDir(opts Options) string {
	if opts.CacheDir != "" {
		return opts.CacheDir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, cacheNamespace)
}

// Resolve maps candidate module names to distribution names, per the
// filter-and-lookup cascade, bypassing the network entirely when
// opts.Offline is set.
func Resolve(ctx context.Context, modules []ModuleName, projectRoot string, opts Options) (ResolveResult, error) {
	resolveWorkerDefaults(&opts)

	var client resolve.IndexClient = offlineIndex{}
	var idxCache *index.Cache
	if !opts.Offline {
		idxCache = index.Load(filepath.Join(cacheDir(opts), "cache.json"))
		defer func() {
			if ctx.Err() == nil {
				idxCache.Save()
			}
		}()

		baseURL := opts.IndexBaseURL
		if baseURL == "" {
			baseURL = defaultPyPIBaseURL
		}
		client = index.New(baseURL, idxCache, nil)
	}

	r := resolve.New(projectRoot, client, opts.LookupWorkers)
	return r.Resolve(ctx, modules), nil
}

// offlineIndex answers every lookup as unknown, so Resolve's cascade
// falls back to whatever static sources already resolved and leaves
// everything else unresolved rather than pretending nothing exists.
type offlineIndex struct{}

func (offlineIndex) ExistsKnown(ctx context.Context, name DistributionName) (bool, bool) {
	return false, false
}

// Infer runs the complete pipeline: scan, parse, and resolve, in
// that order, returning the final dependency list plus every
// recoverable warning collected along the way.
func Infer(ctx context.Context, root string, opts Options) (InferResult, error) {
	timings := make(map[string]time.Duration)
	var warnings []Warning

	start := time.Now()
	paths, err := Scan(ctx, root, opts)
	timings["scan"] = time.Since(start)
	if err != nil {
		return InferResult{}, err
	}

	start = time.Now()
	parsed, parseWarnings := ParseMany(ctx, paths, opts)
	timings["parse"] = time.Since(start)
	warnings = append(warnings, parseWarnings...)

	seen := make(map[string]bool)
	var candidates []ModuleName
	for _, result := range parsed {
		for _, m := range result.Candidates() {
			top := m.TopLevel()
			if top == "" || seen[top] {
				continue
			}
			seen[top] = true
			candidates = append(candidates, m)
		}
	}

	start = time.Now()
	resolveResult, err := Resolve(ctx, candidates, root, opts)
	timings["resolve"] = time.Since(start)
	if err != nil {
		return InferResult{}, fmt.Errorf("resolve: %w", err)
	}
	warnings = append(warnings, resolveResult.Warnings...)

	return InferResult{
		Dependencies: resolveResult.Resolved,
		Unresolved:   resolveResult.Unresolved,
		Warnings:     warnings,
		Timings:      timings,
	}, nil
}
