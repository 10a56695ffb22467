// Package resolve is the Resolver: it takes the candidate top-level
// module names a Parser extracted and turns them into PyPI
// distribution names, through a filter-then-lookup cascade grounded
// on ascending confidence -- local code, then stdlib, then tables
// (static mapping, bundled index), then the suspicious-name heuristic,
// then the network.
package resolve

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nullpx/pypm/internal/domain"
	"github.com/nullpx/pypm/internal/validate"
)

// IndexClient is the subset of internal/index.Client the Resolver
// depends on, kept as an interface so tests can substitute a fake
// without standing up an HTTP server.
type IndexClient interface {
	ExistsKnown(ctx context.Context, name domain.DistributionName) (exists bool, known bool)
}

// Resolver maps candidate module names to distribution names for one
// project root.
type Resolver struct {
	index   IndexClient
	workers int
	local   map[string]struct{}
}

// New constructs a Resolver rooted at projectRoot, with index used
// for names no static source can resolve. workers bounds the remote
// lookup pool; values <= 0 default to 64.
func New(projectRoot string, index IndexClient, workers int) *Resolver {
	if workers <= 0 {
		workers = 64
	}
	return &Resolver{
		index:   index,
		workers: workers,
		local:   localModules(projectRoot),
	}
}

// Resolve runs the full cascade over names, returning deduplicated,
// lexicographically sorted dependencies plus anything no stage could
// resolve. Results are only visible once every worker has completed;
// there is no partial-result path.
func (r *Resolver) Resolve(ctx context.Context, names []domain.ModuleName) domain.ResolveResult {
	var result domain.ResolveResult
	var remote []domain.ModuleName

	seen := make(map[string]bool)
	for _, n := range names {
		top := n.TopLevel()

		// Every candidate is checked against the URL-safe boundary before
		// it can reach any further stage, static table included: a name
		// that collapses to "" (a dynamic import built from something
		// like "../../etc/passwd") or that carries path/query
		// metacharacters must never reach the network, and the caller
		// needs to know why the name produced no dependency.
		if ok, reason := validate.URLSafe(top); !ok {
			result.Warnings = append(result.Warnings, domain.Warning{
				Kind:    domain.WarnUnsafe,
				Subject: string(n),
				Message: reason,
			})
			continue
		}
		if seen[top] {
			continue
		}
		seen[top] = true

		if r.isLocal(top) {
			continue
		}
		if isStdlib(top) {
			continue
		}
		if dist, ok := staticMapping[top]; ok {
			result.Resolved = append(result.Resolved, domain.Dependency{Name: domain.DistributionName(dist)})
			continue
		}
		normalized := normalizeDistribution(top)
		if isBundled(normalized) {
			result.Resolved = append(result.Resolved, domain.Dependency{Name: domain.DistributionName(normalized)})
			continue
		}
		if _, ok := suspiciousNames[top]; ok {
			// A suspicious generic name that reached here without being
			// dropped by the local filter is still more likely local code
			// than an unpublished-but-real distribution; skip the
			// network round trip rather than report a false positive.
			result.Warnings = append(result.Warnings, domain.Warning{
				Kind:    domain.WarnMalformed,
				Subject: top,
				Message: "generic name matched the suspicious-name heuristic, treated as local code rather than queried remotely",
			})
			continue
		}
		remote = append(remote, domain.ModuleName(top))
	}

	if len(remote) > 0 {
		resolved, unresolved, warnings := r.resolveRemote(ctx, remote)
		result.Resolved = append(result.Resolved, resolved...)
		result.Unresolved = append(result.Unresolved, unresolved...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Resolved = applyExtras(result.Resolved)
	result.Resolved = dedupeAndSort(result.Resolved)
	sort.Slice(result.Unresolved, func(i, j int) bool { return result.Unresolved[i] < result.Unresolved[j] })
	return result
}

func (r *Resolver) isLocal(top string) bool {
	_, ok := r.local[top]
	return ok
}

// remoteVariants are the spelling transforms tried against the index,
// in order, for a module name no static source named. The first
// variant the index confirms exists wins.
func remoteVariants(name string) []string {
	normalized := normalizeDistribution(name)
	hyphenated := strings.ReplaceAll(normalized, "_", "-")
	underscored := strings.ReplaceAll(normalized, "-", "_")
	return []string{
		normalized,
		hyphenated,
		underscored,
		"python-" + normalized,
		"py-" + normalized,
	}
}

// resolveRemote dispatches one index lookup per candidate name to a
// bounded worker pool built from an errgroup and a mutex: each worker writes
// into a shared, mutex-guarded accumulator, and results are visible
// to the caller only after every worker has returned.
func (r *Resolver) resolveRemote(ctx context.Context, names []domain.ModuleName) ([]domain.Dependency, []domain.ModuleName, []domain.Warning) {
	var (
		mu         sync.Mutex
		resolved   []domain.Dependency
		unresolved []domain.ModuleName
		warnings   []domain.Warning
	)

	sem := make(chan struct{}, r.workers)
	g, ctx := errgroup.WithContext(ctx)

	for _, n := range names {
		n := n
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			dist, ok, variantWarnings := r.lookupOne(ctx, n)

			mu.Lock()
			defer mu.Unlock()
			warnings = append(warnings, variantWarnings...)
			if ok {
				resolved = append(resolved, domain.Dependency{Name: dist})
			} else {
				unresolved = append(unresolved, n)
				warnings = append(warnings, domain.Warning{
					Kind:    domain.WarnAbsent,
					Subject: string(n),
					Message: "no index variant resolved this module to a distribution",
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	return resolved, unresolved, warnings
}

// lookupOne tries each spelling variant of name against the index in
// order, the first confirmed match wins. Every variant is re-checked
// against the URL-safe boundary immediately before the request that
// would carry it onto the wire -- defense in depth on top of the
// check Resolve already ran on the unmodified candidate, since a
// spelling transform is still attacker-influenced input.
func (r *Resolver) lookupOne(ctx context.Context, name domain.ModuleName) (domain.DistributionName, bool, []domain.Warning) {
	var warnings []domain.Warning
	for _, variant := range remoteVariants(string(name)) {
		if ok, reason := validate.URLSafe(variant); !ok {
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarnUnsafe,
				Subject: variant,
				Message: reason,
			})
			continue
		}
		exists, known := r.index.ExistsKnown(ctx, domain.DistributionName(variant))
		if known && exists {
			return domain.DistributionName(variant), true, warnings
		}
	}
	return "", false, warnings
}

func applyExtras(deps []domain.Dependency) []domain.Dependency {
	present := make(map[string]bool, len(deps))
	for _, d := range deps {
		present[normalizeDistribution(string(d.Name))] = true
	}

	out := append([]domain.Dependency(nil), deps...)
	for _, d := range deps {
		extras, ok := extrasTable[normalizeDistribution(string(d.Name))]
		if !ok {
			continue
		}
		for _, extra := range extras {
			if present[extra] {
				continue
			}
			present[extra] = true
			out = append(out, domain.Dependency{Name: domain.DistributionName(extra)})
		}
	}
	return out
}

// dedupeAndSort removes case-insensitive duplicates on the
// distribution-name component, preserving the canonical casing of
// the first occurrence, then sorts lexicographically.
func dedupeAndSort(deps []domain.Dependency) []domain.Dependency {
	seen := make(map[string]int, len(deps))
	var out []domain.Dependency
	for _, d := range deps {
		key := strings.ToLower(string(d.Name))
		if idx, ok := seen[key]; ok {
			out[idx].Extras = mergeExtras(out[idx].Extras, d.Extras)
			continue
		}
		seen[key] = len(out)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mergeExtras(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
