package maven

import (
	"context"
	"strings"
	"sync"

	"github.com/caravel-cli/caravel/pkg/errors"
	"github.com/caravel-cli/caravel/pkg/fetch"
	"github.com/caravel-cli/caravel/pkg/observability"
)

// Repository is a remote Maven repository endpoint.
type Repository struct {
	Name    string `json:"name" toml:"name"`
	BaseURL string `json:"base_url" toml:"base_url"`
}

// URL joins a repository-relative path onto the base URL.
func (r *Repository) URL(path string) string {
	return strings.TrimSuffix(r.BaseURL, "/") + "/" + path
}

// DefaultRepositories returns the built-in remotes, probed in order:
// Maven Central, Google Maven, Jitpack.
func DefaultRepositories() []Repository {
	return []Repository{
		{Name: "central", BaseURL: "https://repo1.maven.org/maven2"},
		{Name: "google", BaseURL: "https://maven.google.com"},
		{Name: "jitpack", BaseURL: "https://jitpack.io"},
	}
}

// Registry holds the ordered list of remote repositories and binds
// artifacts to the repository that serves them. The list is read-mostly:
// repositories discovered in fetched POMs append under a mutex.
type Registry struct {
	client *fetch.Client

	mu    sync.RWMutex
	repos []Repository
	seen  map[string]struct{}
}

// NewRegistry creates a Registry probing with the given client. With no
// explicit repositories the defaults are installed.
func NewRegistry(client *fetch.Client, repos ...Repository) *Registry {
	if len(repos) == 0 {
		repos = DefaultRepositories()
	}
	reg := &Registry{client: client, seen: make(map[string]struct{})}
	reg.Add(repos...)
	return reg
}

// Add appends repositories to the probe order, skipping base URLs already
// present. Safe for concurrent use.
func (reg *Registry) Add(repos ...Repository) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, r := range repos {
		key := strings.TrimSuffix(r.BaseURL, "/")
		if key == "" {
			continue
		}
		if _, dup := reg.seen[key]; dup {
			continue
		}
		reg.seen[key] = struct{}{}
		r.BaseURL = key
		reg.repos = append(reg.repos, r)
	}
}

// All returns a snapshot of the probe order.
func (reg *Registry) All() []Repository {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Repository, len(reg.repos))
	copy(out, reg.repos)
	return out
}

// InitHost binds the artifact to the first repository that claims its POM,
// probing each remote in order with a HEAD (falling back to GET). An
// already-bound artifact is left untouched. If no repository answers 2xx
// the artifact stays unbound and a REPOSITORY_UNRESOLVED error is
// returned; the caller degrades the artifact to "no dependencies".
func (reg *Registry) InitHost(ctx context.Context, a *Artifact) error {
	if a.Repository != nil {
		return nil
	}

	for _, repo := range reg.All() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ok, err := reg.client.Exists(ctx, repo.URL(a.POMPath()))
		if err != nil {
			continue
		}
		if ok {
			bound := repo
			a.Repository = &bound
			return nil
		}
	}

	observability.Resolution().OnRepositoryUnresolved(ctx, a.GA(), a.Version)
	return errors.New(errors.ErrCodeRepositoryUnresolved, "no repository claims %s", a.ID())
}

// ResolveFloating resolves a LATEST/RELEASE/range version against
// maven-metadata.xml and rewrites a.Version in place. A bound artifact
// reads its own repository's metadata; an unbound one tries each
// registered repository in probe order and is bound to the first whose
// metadata resolves the version. Concrete versions are a no-op.
func (reg *Registry) ResolveFloating(ctx context.Context, a *Artifact) error {
	if !IsFloating(a.Version) {
		return nil
	}

	repos := reg.All()
	if a.Repository != nil {
		repos = []Repository{*a.Repository}
	}

	for _, repo := range repos {
		data, err := reg.client.GetBytes(ctx, repo.URL(a.MetadataPath()), false)
		if err != nil {
			continue
		}
		meta, err := ParseMetadata(data)
		if err != nil {
			continue
		}
		v, err := meta.ResolveVersion(a.Version)
		if err != nil {
			continue
		}
		a.Version = v
		if a.Repository == nil {
			bound := repo
			a.Repository = &bound
		}
		return nil
	}

	observability.Resolution().OnVersionNotFound(ctx, a.GA(), a.Version)
	return errors.New(errors.ErrCodeVersionNotFound, "cannot resolve %q for %s", a.Version, a.GA())
}
