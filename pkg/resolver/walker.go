package resolver

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/caravel-cli/caravel/pkg/maven"
	"github.com/caravel-cli/caravel/pkg/observability"
)

// DefaultFanout is the number of concurrent resolve operations per level.
const DefaultFanout = 8

// Walker performs a level-synchronous BFS over the transitive dependency
// graph. Within one level, resolve operations run concurrently with
// bounded fan-out; a level completes before the next begins. Each walk
// keeps its own visited set (full artifact identity plus exclusion
// context) and detects cycles through the ancestor path of each node.
//
// The walker is the only writer of Artifact.Dependencies: every artifact
// it enqueues, and every child whose edge it drops as a cycle, ends the
// walk with a non-nil dependency list. A child instance whose visit key
// was already enqueued through another instance is not walked and keeps
// the Dependencies it had (nil if never assigned).
type Walker struct {
	fetcher *Fetcher
	cache   *Cache
	fanout  int
	logger  *log.Logger
}

// NewWalker creates a Walker. A fanout <= 0 selects DefaultFanout.
func NewWalker(fetcher *Fetcher, cache *Cache, fanout int, logger *log.Logger) *Walker {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Walker{fetcher: fetcher, cache: cache, fanout: fanout, logger: logger}
}

// walkNode is one BFS entry: an artifact plus the GA path that led to it.
type walkNode struct {
	artifact *maven.Artifact
	path     []string
	pathSet  map[string]bool
}

// Walk resolves the transitive graph below the given roots, assigning
// Dependencies in place. It returns an error only on context
// cancellation; resolution failures degrade the affected node and the
// walk continues.
func (w *Walker) Walk(ctx context.Context, roots []*maven.Artifact) error {
	visited := make(map[string]struct{})
	var level []*walkNode

	for _, root := range roots {
		key := visitKey(root)
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}
		level = append(level, &walkNode{artifact: root, pathSet: map[string]bool{}})
	}

	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved := w.resolveLevel(ctx, level)
		if err := ctx.Err(); err != nil {
			return err
		}

		level = w.advance(ctx, level, resolved, visited)
	}
	return nil
}

// resolveLevel fetches direct dependencies for every node of the level
// that still lacks them, dispatching up to fanout resolves in parallel.
func (w *Walker) resolveLevel(ctx context.Context, level []*walkNode) [][]*maven.Artifact {
	resolved := make([][]*maven.Artifact, len(level))
	sem := make(chan struct{}, w.fanout)
	var wg sync.WaitGroup

	for i, n := range level {
		a := n.artifact
		if a.Dependencies != nil {
			observability.Resolution().OnSkippingResolution(ctx, a.GA(), a.Version)
			resolved[i] = a.Dependencies
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, a *maven.Artifact) {
			defer wg.Done()
			defer func() { <-sem }()

			deps, hit, err := w.cache.Resolve(ctx, a, func() []*maven.Artifact {
				return w.fetcher.DirectDependencies(ctx, a)
			})
			if err != nil {
				return // cancelled; the caller checks ctx after the level
			}
			if hit {
				observability.Resolution().OnSkippingResolution(ctx, a.GA(), a.Version)
				w.adoptWinner(a)
			}
			resolved[i] = deps
		}(i, a)
	}

	wg.Wait()
	return resolved
}

// adoptWinner copies the cached winner's repository binding and packaging
// onto an equal-version artifact served from the cache, so it satisfies
// the same output invariants as the artifact that was actually fetched.
func (w *Walker) adoptWinner(a *maven.Artifact) {
	winner, _, ok := w.cache.Lookup(a.GA())
	if !ok || maven.CompareVersions(winner.Version, a.Version) != 0 {
		return
	}
	if a.Repository == nil {
		a.Repository = winner.Repository
	}
	if a.Packaging == "" {
		a.Packaging = winner.Packaging
	}
}

// advance assigns each node's dependency list (applying exclusions),
// breaks cycles, and builds the next level from unvisited children.
// It runs single-threaded between levels, which keeps enqueue order and
// therefore first-seen reconciliation deterministic.
func (w *Walker) advance(ctx context.Context, level []*walkNode, resolved [][]*maven.Artifact, visited map[string]struct{}) []*walkNode {
	var next []*walkNode

	for i, n := range level {
		a := n.artifact
		if a.Dependencies == nil {
			a.Dependencies = w.keepChildren(a, resolved[i])
		}

		childPath := append(append(make([]string, 0, len(n.path)+1), n.path...), a.GA())
		childSet := make(map[string]bool, len(n.pathSet)+1)
		for ga := range n.pathSet {
			childSet[ga] = true
		}
		childSet[a.GA()] = true

		for _, child := range a.Dependencies {
			if childSet[child.GA()] {
				observability.Resolution().OnCycleDetected(ctx, child.GA(), childPath)
				w.logger.Warn("dependency cycle detected",
					"artifact", child.GA(), "path", strings.Join(childPath, " -> "))
				if child.Dependencies == nil {
					child.Dependencies = []*maven.Artifact{}
				}
				continue
			}
			key := visitKey(child)
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			next = append(next, &walkNode{artifact: child, path: childPath, pathSet: childSet})
		}
	}
	return next
}

// keepChildren drops children excluded by the parent and pushes the
// parent's exclusion set down. Children coming out of the shared cache
// are cloned before their exclusion set is widened, so one path's
// exclusions never leak into another.
func (w *Walker) keepChildren(parent *maven.Artifact, deps []*maven.Artifact) []*maven.Artifact {
	out := make([]*maven.Artifact, 0, len(deps))
	for _, child := range deps {
		if parent.Excludes(child.GA()) {
			continue
		}
		if len(parent.Exclusions) > 0 {
			child = cloneForPath(child, parent.Exclusions)
		}
		out = append(out, child)
	}
	return out
}

// cloneForPath copies a dependency's identity and binding, unioning the
// inherited exclusions into the copy. The clone starts with unassigned
// Dependencies and resolves through the cache like any other node.
func cloneForPath(child *maven.Artifact, inherited map[string]struct{}) *maven.Artifact {
	c := &maven.Artifact{
		GroupID:    child.GroupID,
		ArtifactID: child.ArtifactID,
		Version:    child.Version,
		Classifier: child.Classifier,
		Extension:  child.Extension,
		Packaging:  child.Packaging,
		Repository: child.Repository,
	}
	for ga := range child.Exclusions {
		c.AddExclusions(ga)
	}
	for ga := range inherited {
		c.AddExclusions(ga)
	}
	return c
}

// visitKey identifies a node for the per-walk visited set: full artifact
// identity plus its exclusion context. Two occurrences of one artifact
// with different exclusion sets walk independently.
func visitKey(a *maven.Artifact) string {
	if len(a.Exclusions) == 0 {
		return a.ID()
	}
	gas := make([]string, 0, len(a.Exclusions))
	for ga := range a.Exclusions {
		gas = append(gas, ga)
	}
	sort.Strings(gas)
	return a.ID() + "|" + strings.Join(gas, ",")
}
