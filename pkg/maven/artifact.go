package maven

import (
	"fmt"
	"strings"

	"github.com/caravel-cli/caravel/pkg/errors"
)

// DefaultExtension is the artifact extension assumed when a dependency
// declares none.
const DefaultExtension = "jar"

// Artifact identifies a single Maven artifact. Identity is the full
// (GroupID, ArtifactID, Version, Classifier) tuple; conflict resolution
// and caching key on the (GroupID, ArtifactID) pair only.
//
// Version may be empty until a LATEST/RELEASE/range marker has been
// resolved against repository metadata. Repository is nil until host
// discovery binds the artifact to the remote that serves it.
//
// Dependencies is nil until the graph walker assigns it; an empty,
// non-nil slice means the artifact resolved with no dependencies (or was
// marked unresolvable). The walker is the only writer.
type Artifact struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Extension  string
	Packaging  string

	// Repository is bound by Registry.InitHost.
	Repository *Repository

	// Exclusions holds "groupId:artifactId" keys that must not appear in
	// this artifact's transitive subtree. Populated from <exclusions> and
	// unioned with the parent's set as the walk descends.
	Exclusions map[string]struct{}

	// Dependencies is assigned exactly once by the graph walker.
	Dependencies []*Artifact
}

// NewArtifact creates an Artifact with the default "jar" extension.
// Version may be empty for coordinates that require metadata resolution.
func NewArtifact(groupID, artifactID, version string) *Artifact {
	return &Artifact{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Extension:  DefaultExtension,
	}
}

// GA returns the conflict-resolution key "groupId:artifactId".
func (a *Artifact) GA() string {
	return a.GroupID + ":" + a.ArtifactID
}

// ID returns the full identity "groupId:artifactId:version[:classifier]".
func (a *Artifact) ID() string {
	if a.Classifier != "" {
		return fmt.Sprintf("%s:%s:%s:%s", a.GroupID, a.ArtifactID, a.Version, a.Classifier)
	}
	return fmt.Sprintf("%s:%s:%s", a.GroupID, a.ArtifactID, a.Version)
}

// String returns the full identity; Artifacts print as coordinates.
func (a *Artifact) String() string { return a.ID() }

// FileName returns the on-disk name "artifactId-version[-classifier].ext".
func (a *Artifact) FileName() string {
	name := a.ArtifactID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return name + "." + a.ext()
}

// RemotePath returns the repository-relative path of the artifact file:
// group/with/slashes/artifact/version/artifact-version[-classifier].ext
func (a *Artifact) RemotePath() string {
	return a.dirPath() + "/" + a.FileName()
}

// POMPath returns the repository-relative path of the artifact's POM.
// Classifiers share the main artifact's POM.
func (a *Artifact) POMPath() string {
	return fmt.Sprintf("%s/%s-%s.pom", a.dirPath(), a.ArtifactID, a.Version)
}

// MetadataPath returns the repository-relative path of maven-metadata.xml
// for this artifact's versionless coordinate.
func (a *Artifact) MetadataPath() string {
	return strings.ReplaceAll(a.GroupID, ".", "/") + "/" + a.ArtifactID + "/maven-metadata.xml"
}

// DownloadURL returns the absolute URL of the artifact file.
// The repository must be bound first.
func (a *Artifact) DownloadURL() (string, error) {
	if a.Repository == nil {
		return "", errors.New(errors.ErrCodeRepositoryUnresolved, "no repository bound for %s", a.ID())
	}
	return a.Repository.URL(a.RemotePath()), nil
}

// Excludes reports whether the given "groupId:artifactId" key is excluded
// from this artifact's subtree.
func (a *Artifact) Excludes(ga string) bool {
	_, ok := a.Exclusions[ga]
	return ok
}

// AddExclusions unions the given GA keys into the artifact's exclusion set.
func (a *Artifact) AddExclusions(gas ...string) {
	if len(gas) == 0 {
		return
	}
	if a.Exclusions == nil {
		a.Exclusions = make(map[string]struct{}, len(gas))
	}
	for _, ga := range gas {
		a.Exclusions[ga] = struct{}{}
	}
}

// IsPOMOnly reports whether the artifact has no binary to download
// (packaging "pom", e.g. BOMs and aggregator projects).
func (a *Artifact) IsPOMOnly() bool {
	return a.Packaging == "pom"
}

func (a *Artifact) dirPath() string {
	return strings.ReplaceAll(a.GroupID, ".", "/") + "/" + a.ArtifactID + "/" + a.Version
}

func (a *Artifact) ext() string {
	if a.Extension == "" {
		return DefaultExtension
	}
	return a.Extension
}

// ParseCoordinate parses "group:artifact[:version[:classifier]][@ext]"
// into an Artifact. Version and classifier are optional; "@ext" overrides
// the jar extension. This is the format accepted by the CLI and by Gradle
// single-string dependency declarations.
func ParseCoordinate(coord string) (*Artifact, error) {
	spec := coord
	ext := ""
	if at := strings.LastIndex(spec, "@"); at >= 0 {
		ext = spec[at+1:]
		spec = spec[:at]
	}

	parts := strings.Split(spec, ":")
	for _, p := range parts {
		if p == "" {
			return nil, errors.New(errors.ErrCodeInvalidCoordinate, "empty segment in %q", coord)
		}
	}

	var a *Artifact
	switch len(parts) {
	case 2:
		a = NewArtifact(parts[0], parts[1], "")
	case 3:
		a = NewArtifact(parts[0], parts[1], parts[2])
	case 4:
		a = NewArtifact(parts[0], parts[1], parts[2])
		a.Classifier = parts[3]
	default:
		return nil, errors.New(errors.ErrCodeInvalidCoordinate,
			"%q (expected group:artifact[:version[:classifier]][@ext])", coord)
	}
	if ext != "" {
		a.Extension = ext
	}
	return a, nil
}
