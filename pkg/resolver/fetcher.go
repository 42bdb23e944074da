package resolver

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/caravel-cli/caravel/pkg/fetch"
	"github.com/caravel-cli/caravel/pkg/maven"
	"github.com/caravel-cli/caravel/pkg/observability"
)

// Fetcher turns a coordinate into its direct dependencies: it resolves
// floating versions, binds the artifact to the repository that serves it,
// fetches and merges the effective POM, and applies the extraction
// filters. Every failure degrades to an empty dependency list; the error
// taxonomy is reported through the observability hooks and the logger,
// never up the stack.
type Fetcher struct {
	client   *fetch.Client
	registry *maven.Registry
	logger   *log.Logger
	refresh  bool
}

// NewFetcher creates a Fetcher probing the given registry.
func NewFetcher(client *fetch.Client, registry *maven.Registry, logger *log.Logger, refresh bool) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{client: client, registry: registry, logger: logger, refresh: refresh}
}

// DirectDependencies resolves a's effective POM and returns the direct
// dependencies to walk. The artifact's Repository and Packaging fields
// are bound as side effects. An empty (non-nil) slice means the
// coordinate is unresolvable or has no kept dependencies.
func (f *Fetcher) DirectDependencies(ctx context.Context, a *maven.Artifact) []*maven.Artifact {
	start := time.Now()

	if maven.IsFloating(a.Version) {
		if err := f.registry.ResolveFloating(ctx, a); err != nil {
			f.logger.Warn("version resolution failed", "artifact", a.GA(), "declared", a.Version, "err", err)
			return []*maven.Artifact{}
		}
	}

	if err := f.registry.InitHost(ctx, a); err != nil {
		// The declared version is not servable from any configured remote.
		observability.Resolution().OnVersionNotFound(ctx, a.GA(), a.Version)
		f.logger.Warn("no repository claims artifact", "artifact", a.ID())
		return []*maven.Artifact{}
	}

	eff, ok := f.effectivePOM(ctx, a)
	if !ok {
		return []*maven.Artifact{}
	}

	a.Packaging = eff.Packaging
	if len(eff.Repositories) > 0 {
		f.registry.Add(eff.Repositories...)
	}

	deps := eff.DirectDependencies()
	if len(deps) == 0 {
		observability.Resolution().OnDependenciesNotFound(ctx, a.GA(), a.Version)
		f.logger.Debug("no dependencies", "artifact", a.ID())
		return []*maven.Artifact{}
	}

	observability.Resolution().OnResolutionComplete(ctx, a.GA(), a.Version, len(deps), time.Since(start))
	f.logger.Debug("resolved", "artifact", a.ID(), "deps", len(deps), "took", time.Since(start).Round(time.Millisecond))
	return deps
}

// effectivePOM fetches a's POM from its bound repository and merges the
// parent chain and dependencyManagement imports.
func (f *Fetcher) effectivePOM(ctx context.Context, a *maven.Artifact) (*maven.EffectivePOM, bool) {
	data, err := f.client.GetBytes(ctx, a.Repository.URL(a.POMPath()), f.refresh)
	if err != nil {
		// Non-2xx and socket errors both mean the declared version is not
		// servable from here.
		observability.Resolution().OnVersionNotFound(ctx, a.GA(), a.Version)
		f.logger.Warn("pom fetch failed", "artifact", a.ID(), "err", err)
		return nil, false
	}

	pom, err := maven.ParsePOM(data)
	if err != nil {
		observability.Resolution().OnInvalidPOM(ctx, a.GA(), a.Version, err)
		f.logger.Warn("invalid pom", "artifact", a.ID(), "err", err)
		return nil, false
	}

	eff, err := pom.Effective(ctx, f.loadPOM)
	if err != nil {
		observability.Resolution().OnInvalidPOM(ctx, a.GA(), a.Version, err)
		f.logger.Warn("effective pom failed", "artifact", a.ID(), "err", err)
		return nil, false
	}
	return eff, true
}

// loadPOM is the maven.POMLoader used for parent chains and BOM imports.
func (f *Fetcher) loadPOM(ctx context.Context, groupID, artifactID, version string) (*maven.POM, error) {
	ref := maven.NewArtifact(groupID, artifactID, version)
	if err := f.registry.InitHost(ctx, ref); err != nil {
		return nil, err
	}
	data, err := f.client.GetBytes(ctx, ref.Repository.URL(ref.POMPath()), f.refresh)
	if err != nil {
		return nil, err
	}
	return maven.ParsePOM(data)
}
