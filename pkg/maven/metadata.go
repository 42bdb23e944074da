package maven

import (
	"encoding/xml"

	"github.com/caravel-cli/caravel/pkg/errors"
)

// Metadata is the parsed form of a repository's maven-metadata.xml for a
// groupId:artifactId coordinate. It lists the versions the repository
// offers and is consulted when a declared version is a LATEST/RELEASE
// marker or a range.
type Metadata struct {
	XMLName    xml.Name    `xml:"metadata"`
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Versioning *Versioning `xml:"versioning"`
}

// Versioning holds the version inventory of a Metadata document.
type Versioning struct {
	Latest   string   `xml:"latest"`
	Release  string   `xml:"release"`
	Versions []string `xml:"versions>version"`
}

// ParseMetadata decodes maven-metadata.xml bytes.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPOM, err, "parse maven-metadata.xml")
	}
	return &m, nil
}

// ResolveVersion maps a floating version (empty, LATEST, RELEASE, or a
// range) to a concrete version using the metadata inventory. Concrete
// versions pass through unchanged.
func (m *Metadata) ResolveVersion(declared string) (string, error) {
	if !IsFloating(declared) {
		return declared, nil
	}

	var versions []string
	var latest, release string
	if m.Versioning != nil {
		versions = m.Versioning.Versions
		latest = m.Versioning.Latest
		release = m.Versioning.Release
	}

	switch {
	case IsRange(declared):
		if v, ok := HighestInRange(declared, versions); ok {
			return v, nil
		}
		return "", errors.New(errors.ErrCodeVersionNotFound,
			"no version of %s:%s satisfies %s", m.GroupID, m.ArtifactID, declared)
	case declared == VersionRelease && release != "":
		return release, nil
	case latest != "":
		return latest, nil
	}

	// Older repositories omit latest/release; fall back to the highest
	// listed version.
	best := ""
	for _, v := range versions {
		if IsHigherThan(v, best) {
			best = v
		}
	}
	if best == "" {
		return "", errors.New(errors.ErrCodeVersionNotFound,
			"metadata for %s:%s lists no versions", m.GroupID, m.ArtifactID)
	}
	return best, nil
}
