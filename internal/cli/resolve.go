package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caravel-cli/caravel/pkg/cache"
	"github.com/caravel-cli/caravel/pkg/maven"
	"github.com/caravel-cli/caravel/pkg/resolver"
)

// resolveOpts holds the command-line flags shared by the resolution
// commands (resolve, download, graph).
type resolveOpts struct {
	configPath  *string
	concurrency int
	refresh     bool
	output      string
}

// buildResolver assembles a Resolver from the config file and flags.
// The response cache backend is Redis when configured, a file cache
// otherwise.
func (o *resolveOpts) buildResolver(ctx context.Context) (*resolver.Resolver, error) {
	cfg, err := loadConfig(*o.configPath)
	if err != nil {
		return nil, err
	}

	var httpCache cache.Cache
	if cfg.Redis.Addr != "" {
		httpCache, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	} else {
		httpCache, err = cache.NewFileCache(cfg.CacheDir)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	concurrency := o.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	return resolver.New(resolver.Options{
		Repositories: cfg.repositories(),
		Concurrency:  concurrency,
		CacheTTL:     cfg.CacheTTL(),
		Refresh:      o.refresh,
		HTTPCache:    httpCache,
		Logger:       loggerFromContext(ctx),
	}), nil
}

// resolveTarget resolves either a project directory or a list of
// explicit coordinates, depending on what the arguments look like.
func resolveTarget(ctx context.Context, res *resolver.Resolver, args []string) ([]*maven.Artifact, error) {
	if looksLikeCoordinates(args) {
		direct := make([]*maven.Artifact, 0, len(args))
		for _, coord := range args {
			a, err := maven.ParseCoordinate(coord)
			if err != nil {
				return nil, err
			}
			direct = append(direct, a)
		}
		return res.ResolveArtifacts(ctx, direct)
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return res.Resolve(ctx, dir)
}

// looksLikeCoordinates reports whether every argument is a Maven
// coordinate rather than a path.
func looksLikeCoordinates(args []string) bool {
	if len(args) == 0 {
		return false
	}
	for _, arg := range args {
		if !strings.Contains(arg, ":") {
			return false
		}
		if _, err := os.Stat(arg); err == nil {
			return false
		}
	}
	return true
}

// newResolveCmd creates the resolve command.
//
// Examples:
//
//	caravel resolve                          # project in the current directory
//	caravel resolve ./service                # project directory
//	caravel resolve com.google.guava:guava:31.1-jre
func newResolveCmd(configPath *string) *cobra.Command {
	opts := resolveOpts{configPath: configPath}

	cmd := &cobra.Command{
		Use:   "resolve [project-dir | coordinate...]",
		Short: "Resolve a project's transitive dependency closure",
		Long: `Resolve walks the transitive dependency graph of a Maven or Gradle
project (or of explicit coordinates) and prints the reconciled,
deduplicated artifact list.`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			res, err := opts.buildResolver(ctx)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			spin := newSpinner(ctx, "Resolving dependencies…")
			spin.Start()
			artifacts, err := resolveTarget(ctx, res, args)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d artifacts", len(artifacts)))

			return writeArtifacts(artifacts, opts.output)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel resolves per level (default 8)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the HTTP response cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to file (text to stdout if empty)")
	return cmd
}

// artifactJSON is the serialized form of one resolved artifact.
type artifactJSON struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension"`
	Packaging  string `json:"packaging,omitempty"`
	Repository string `json:"repository"`
	URL        string `json:"url,omitempty"`
}

// writeArtifacts prints the artifact list as styled text, or as JSON
// when an output path is given.
func writeArtifacts(artifacts []*maven.Artifact, path string) error {
	if path == "" {
		for _, a := range artifacts {
			repo := ""
			if a.Repository != nil {
				repo = a.Repository.Name
			}
			fmt.Printf("%s %s %s\n",
				StyleHighlight.Render(a.GA()), a.Version, StyleDim.Render("("+repo+")"))
		}
		return nil
	}

	out := make([]artifactJSON, 0, len(artifacts))
	for _, a := range artifacts {
		j := artifactJSON{
			GroupID:    a.GroupID,
			ArtifactID: a.ArtifactID,
			Version:    a.Version,
			Classifier: a.Classifier,
			Extension:  a.Extension,
			Packaging:  a.Packaging,
		}
		if a.Repository != nil {
			j.Repository = a.Repository.Name
		}
		if url, err := a.DownloadURL(); err == nil {
			j.URL = url
		}
		out = append(out, j)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(io.Writer(f))
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
