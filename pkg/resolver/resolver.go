package resolver

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/caravel-cli/caravel/pkg/cache"
	"github.com/caravel-cli/caravel/pkg/download"
	"github.com/caravel-cli/caravel/pkg/errors"
	"github.com/caravel-cli/caravel/pkg/fetch"
	"github.com/caravel-cli/caravel/pkg/maven"
)

const (
	// DefaultCacheTTL is how long HTTP responses (POMs, metadata) stay
	// fresh in the response cache.
	DefaultCacheTTL = 24 * time.Hour
)

// Options configures a Resolver.
type Options struct {
	Repositories []maven.Repository // probe order (default: Central, Google, Jitpack)
	Concurrency  int                // per-level fan-out (default: 8)
	CacheTTL     time.Duration      // HTTP response cache duration (default: 24h)
	Refresh      bool               // bypass the HTTP response cache
	HTTPCache    cache.Cache        // response cache backend (default: in-memory)
	Logger       *log.Logger        // structured logger (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by
// defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultFanout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.HTTPCache == nil {
		opts.HTTPCache = cache.NewMemoryCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Resolver is the public façade over the resolution pipeline. It owns
// the shared HTTP client, the repository registry, and the process-scoped
// resolution cache; one Resolver can serve many Resolve calls, and later
// calls reuse everything earlier calls learned.
type Resolver struct {
	opts       Options
	client     *fetch.Client
	registry   *maven.Registry
	cache      *Cache
	fetcher    *Fetcher
	walker     *Walker
	downloader *download.Downloader
}

// New creates a Resolver from the given options.
func New(opts Options) *Resolver {
	opts = opts.WithDefaults()

	client := fetch.NewClient(opts.HTTPCache, opts.CacheTTL)
	registry := maven.NewRegistry(client, opts.Repositories...)
	rcache := NewCache()
	fetcher := NewFetcher(client, registry, opts.Logger, opts.Refresh)

	return &Resolver{
		opts:       opts,
		client:     client,
		registry:   registry,
		cache:      rcache,
		fetcher:    fetcher,
		walker:     NewWalker(fetcher, rcache, opts.Concurrency, opts.Logger),
		downloader: download.NewDownloader(client, opts.Logger),
	}
}

// Registry exposes the repository probe order (for inspection and for
// CLI-discovered additions).
func (r *Resolver) Registry() *maven.Registry { return r.registry }

// Resolve discovers the project manifest under projectDir, walks the
// transitive dependency graph, and returns the reconciled artifact list.
// A directory without a recognized manifest yields an empty list and no
// error; a malformed root manifest returns an INVALID_MANIFEST error.
func (r *Resolver) Resolve(ctx context.Context, projectDir string) ([]*maven.Artifact, error) {
	direct, err := r.directDependencies(ctx, projectDir)
	if err != nil {
		return nil, err
	}
	return r.ResolveArtifacts(ctx, direct)
}

// ResolveGraph resolves like Resolve but returns the direct dependency
// roots with their walked subtrees intact (Dependencies edges assigned),
// for graph export and inspection.
func (r *Resolver) ResolveGraph(ctx context.Context, projectDir string) ([]*maven.Artifact, error) {
	direct, err := r.directDependencies(ctx, projectDir)
	if err != nil {
		return nil, err
	}
	if len(direct) == 0 {
		return []*maven.Artifact{}, nil
	}
	if err := r.walker.Walk(ctx, direct); err != nil {
		return nil, err
	}
	return direct, nil
}

// directDependencies detects the manifest under projectDir and extracts
// the direct dependency list.
func (r *Resolver) directDependencies(ctx context.Context, projectDir string) ([]*maven.Artifact, error) {
	logger := r.opts.Logger.With("walk", uuid.NewString()[:8])

	if path := filepath.Join(projectDir, "pom.xml"); fileExists(path) {
		logger.Info("resolving maven project", "manifest", path)
		return r.mavenDirect(ctx, path, logger)
	}
	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		if path := filepath.Join(projectDir, name); fileExists(path) {
			logger.Info("resolving gradle project", "manifest", path)
			return r.gradleDirect(ctx, path, logger)
		}
	}

	logger.Warn("no manifest found", "dir", projectDir)
	return []*maven.Artifact{}, nil
}

// ResolveArtifacts walks the transitive graph below the given direct
// dependencies and returns the reconciled closure. This is the path used
// for ad-hoc coordinates (CLI arguments, serve API requests); the
// manifest-based Resolve funnels into it.
func (r *Resolver) ResolveArtifacts(ctx context.Context, direct []*maven.Artifact) ([]*maven.Artifact, error) {
	if len(direct) == 0 {
		return []*maven.Artifact{}, nil
	}
	if err := r.walker.Walk(ctx, direct); err != nil {
		return nil, err
	}
	return Reconcile(direct), nil
}

// Download materializes the artifacts under outputDir. Per-artifact
// failures are reported via the download hooks; the batch continues.
func (r *Resolver) Download(ctx context.Context, outputDir string, artifacts []*maven.Artifact) error {
	return r.downloader.Download(ctx, outputDir, artifacts)
}

func (r *Resolver) mavenDirect(ctx context.Context, path string, logger *log.Logger) ([]*maven.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	pom, err := maven.ParsePOM(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	eff, err := pom.Effective(ctx, r.fetcher.loadPOM)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "merge %s", path)
	}

	if len(eff.Repositories) > 0 {
		r.registry.Add(eff.Repositories...)
	}

	direct := eff.DirectDependencies()
	logger.Info("direct dependencies extracted",
		"project", eff.GroupID+":"+eff.ArtifactID+":"+eff.Version, "count", len(direct))
	return direct, nil
}

func (r *Resolver) gradleDirect(ctx context.Context, path string, logger *log.Logger) ([]*maven.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	direct := maven.ParseGradle(data)
	logger.Info("direct dependencies extracted", "manifest", filepath.Base(path), "count", len(direct))
	return direct, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
