package resolver

import (
	"context"
	"sync"

	"github.com/caravel-cli/caravel/pkg/maven"
)

// Cache memoizes resolution results per "groupId:artifactId" for the
// lifetime of a Resolver. Classifier is deliberately not part of the key:
// all classifiers of a GA share the main POM and therefore its direct
// dependencies.
//
// The cache enforces single-flight semantics: the first caller for a key
// resolves it while concurrent callers for the same key block on that
// computation and observe its result. Completed entries follow
// newest-wins: a caller holding a strictly higher version re-resolves and
// overwrites the entry; lower versions are dominated and receive no
// dependencies. No lock is held across I/O.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	done    chan struct{}
	winner  *maven.Artifact
	deps    []*maven.Artifact
	settled bool
}

// NewCache creates an empty resolution cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Resolve returns the direct dependencies to use for a. If the GA is
// uncached (or a carries a strictly higher version than the cached
// winner), resolve is invoked exactly once and its result published; the
// hit return is false. Otherwise the cached outcome applies without
// calling resolve: an equal version receives the winner's dependencies,
// a dominated (lower) version receives an empty list.
func (c *Cache) Resolve(ctx context.Context, a *maven.Artifact, resolve func() []*maven.Artifact) (deps []*maven.Artifact, hit bool, err error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[a.GA()]
		if !ok {
			e = &cacheEntry{done: make(chan struct{}), winner: a}
			c.entries[a.GA()] = e
			c.mu.Unlock()
			return c.lead(e, resolve), false, nil
		}

		if !e.settled {
			c.mu.Unlock()
			select {
			case <-e.done:
				continue // re-examine the settled entry
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}

		switch cmp := maven.CompareVersions(e.winner.Version, a.Version); {
		case cmp == 0:
			deps := e.deps
			c.mu.Unlock()
			return deps, true, nil
		case cmp > 0:
			// Dominated: a strictly newer winner is already published.
			c.mu.Unlock()
			return []*maven.Artifact{}, true, nil
		default:
			// a is newer: overwrite, taking leadership of a fresh flight.
			e = &cacheEntry{done: make(chan struct{}), winner: a}
			c.entries[a.GA()] = e
			c.mu.Unlock()
			return c.lead(e, resolve), false, nil
		}
	}
}

// lead runs the resolution outside the lock and publishes the result.
// Unresolvable coordinates publish an empty dependency list so they are
// not retried.
func (c *Cache) lead(e *cacheEntry, resolve func() []*maven.Artifact) []*maven.Artifact {
	deps := resolve()
	if deps == nil {
		deps = []*maven.Artifact{}
	}

	c.mu.Lock()
	e.deps = deps
	e.settled = true
	c.mu.Unlock()
	close(e.done)
	return deps
}

// Lookup returns the settled winner for a GA key, if any. It never
// blocks; in-flight entries report false.
func (c *Cache) Lookup(ga string) (*maven.Artifact, []*maven.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[ga]
	if !ok || !e.settled {
		return nil, nil, false
	}
	return e.winner, e.deps, true
}

// Len reports the number of cached GA keys, including in-flight ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
