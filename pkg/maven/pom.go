package maven

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/caravel-cli/caravel/pkg/errors"
)

const (
	// maxParentDepth bounds the <parent> chain chase.
	maxParentDepth = 20
	// maxInterpolationPasses bounds property-to-property expansion.
	maxInterpolationPasses = 10
)

// POM is the raw deserialized form of a pom.xml document. GroupID and
// Version may be empty when inherited from <parent>; use [POM.Effective]
// to obtain the merged, interpolated view.
type POM struct {
	XMLName    xml.Name `xml:"project"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Version    string   `xml:"version"`
	Packaging  string   `xml:"packaging"`

	Parent               *ParentRef      `xml:"parent"`
	Properties           Properties      `xml:"properties"`
	Dependencies         []Dependency    `xml:"dependencies>dependency"`
	DependencyManagement []Dependency    `xml:"dependencyManagement>dependencies>dependency"`
	Repositories         []pomRepository `xml:"repositories>repository"`
}

// ParentRef points at the parent POM a project inherits from.
type ParentRef struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Dependency is one <dependency> entry, from either <dependencies> or
// <dependencyManagement>.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Classifier string      `xml:"classifier"`
	Type       string      `xml:"type"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// GA returns the dependency's "groupId:artifactId" key.
func (d *Dependency) GA() string { return d.GroupID + ":" + d.ArtifactID }

// Exclusion names a GA whose subtree must be pruned under this dependency.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

type pomRepository struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

// Properties is the <properties> block: arbitrary child elements mapped
// to their text content.
type Properties map[string]string

// UnmarshalXML decodes the free-form property elements.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = Properties{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var val string
			if err := d.DecodeElement(&val, &el); err != nil {
				return err
			}
			(*p)[el.Name.Local] = strings.TrimSpace(val)
		case xml.EndElement:
			return nil
		}
	}
}

// ParsePOM decodes raw pom.xml bytes. Malformed XML surfaces as an
// INVALID_POM error.
func ParsePOM(data []byte) (*POM, error) {
	var pom POM
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPOM, err, "parse pom")
	}
	return &pom, nil
}

// EffectiveGroupID returns the project's groupId, falling back to the
// parent's when inherited.
func (p *POM) EffectiveGroupID() string {
	if p.GroupID != "" {
		return p.GroupID
	}
	if p.Parent != nil {
		return p.Parent.GroupID
	}
	return ""
}

// EffectiveVersion returns the project's version, falling back to the
// parent's when inherited.
func (p *POM) EffectiveVersion() string {
	if p.Version != "" {
		return p.Version
	}
	if p.Parent != nil {
		return p.Parent.Version
	}
	return ""
}

// POMLoader fetches and parses the raw POM for a coordinate. The resolver
// supplies an HTTP-backed implementation; tests supply stubs.
type POMLoader func(ctx context.Context, groupID, artifactID, version string) (*POM, error)

// EffectivePOM is a POM after parent-chain merging, property
// interpolation, and dependencyManagement import expansion.
type EffectivePOM struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string

	Properties   map[string]string
	Dependencies []Dependency
	Management   map[string]Dependency // keyed by "groupId:artifactId"
	Repositories []Repository
}

// Effective merges the POM with its parent chain and resolves properties
// and dependencyManagement imports. The loader is used to chase <parent>
// references (bounded depth) and to fetch imported BOMs. A missing or
// malformed parent aborts with the underlying error; the caller degrades
// the artifact rather than guessing at partial inheritance.
func (p *POM) Effective(ctx context.Context, load POMLoader) (*EffectivePOM, error) {
	return p.effective(ctx, load, maxParentDepth)
}

func (p *POM) effective(ctx context.Context, load POMLoader, depth int) (*EffectivePOM, error) {
	chain, err := parentChain(ctx, p, load, depth)
	if err != nil {
		return nil, err
	}

	eff := mergeChain(chain)
	eff.interpolate()
	if err := eff.expandImports(ctx, load, depth); err != nil {
		return nil, err
	}

	// Management versions may pin dependencies; interpolate once more so
	// imported-BOM properties do not leak raw ${} references.
	eff.interpolate()
	return eff, nil
}

// parentChain returns the POM and its ancestors, child first.
func parentChain(ctx context.Context, p *POM, load POMLoader, depth int) ([]*POM, error) {
	chain := []*POM{p}
	cur := p
	for i := 0; cur.Parent != nil && i < depth; i++ {
		ref := cur.Parent
		if ref.GroupID == "" || ref.ArtifactID == "" || ref.Version == "" {
			break
		}
		parent, err := load(ctx, ref.GroupID, ref.ArtifactID, ref.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPOM, err,
				"parent %s:%s:%s", ref.GroupID, ref.ArtifactID, ref.Version)
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}

// mergeChain folds the parent chain into one model. Child values override
// parent values; <dependencies> and <dependencyManagement> union, with
// the child's declaration winning on a key collision.
func mergeChain(chain []*POM) *EffectivePOM {
	child := chain[0]
	eff := &EffectivePOM{
		GroupID:    child.EffectiveGroupID(),
		ArtifactID: child.ArtifactID,
		Version:    child.EffectiveVersion(),
		Packaging:  child.Packaging,
		Properties: make(map[string]string),
		Management: make(map[string]Dependency),
	}
	if eff.Packaging == "" {
		eff.Packaging = "jar"
	}

	// Ancestors first so nearer declarations overwrite.
	for i := len(chain) - 1; i >= 0; i-- {
		pom := chain[i]
		for k, v := range pom.Properties {
			eff.Properties[k] = v
		}
		for _, dep := range pom.DependencyManagement {
			eff.Management[dep.GA()] = dep
		}
		for _, repo := range pom.Repositories {
			name := repo.ID
			if name == "" {
				name = repo.Name
			}
			eff.Repositories = append(eff.Repositories, Repository{Name: name, BaseURL: repo.URL})
		}
	}

	// Dependencies union child-first, ancestors appended for GAs the
	// child does not declare itself.
	seen := make(map[string]struct{})
	for _, pom := range chain {
		for _, dep := range pom.Dependencies {
			if _, dup := seen[dep.GA()]; dup {
				continue
			}
			seen[dep.GA()] = struct{}{}
			eff.Dependencies = append(eff.Dependencies, dep)
		}
	}
	return eff
}

// interpolate expands ${...} references in properties and dependency
// fields. Property-to-property references are iterated to a fixed point,
// capped at maxInterpolationPasses. Unresolvable references are left
// verbatim.
func (e *EffectivePOM) interpolate() {
	table := make(map[string]string, len(e.Properties)+6)
	for k, v := range e.Properties {
		table[k] = v
	}
	table["project.groupId"] = e.GroupID
	table["project.artifactId"] = e.ArtifactID
	table["project.version"] = e.Version
	table["pom.groupId"] = e.GroupID
	table["pom.artifactId"] = e.ArtifactID
	table["pom.version"] = e.Version

	for range maxInterpolationPasses {
		changed := false
		for k, v := range table {
			if expanded := expandProps(v, table); expanded != v {
				table[k] = expanded
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for k := range e.Properties {
		e.Properties[k] = table[k]
	}

	for i := range e.Dependencies {
		interpolateDep(&e.Dependencies[i], table)
	}
	for ga, dep := range e.Management {
		interpolateDep(&dep, table)
		e.Management[ga] = dep
	}
	for i := range e.Repositories {
		e.Repositories[i].BaseURL = expandProps(e.Repositories[i].BaseURL, table)
	}
}

func interpolateDep(d *Dependency, table map[string]string) {
	d.GroupID = expandProps(d.GroupID, table)
	d.ArtifactID = expandProps(d.ArtifactID, table)
	d.Version = expandProps(d.Version, table)
	d.Classifier = expandProps(d.Classifier, table)
}

// expandProps replaces ${key} references found in table, leaving unknown
// references untouched.
func expandProps(s string, table map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var out strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			out.WriteString(s)
			return out.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			out.WriteString(s)
			return out.String()
		}
		end += start
		key := s[start+2 : end]
		out.WriteString(s[:start])
		if v, ok := table[key]; ok {
			out.WriteString(v)
		} else {
			out.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}

// expandImports replaces dependencyManagement entries with
// scope=import/type=pom by the managed versions of the referenced BOM.
// Directly declared management entries win over imported ones.
func (e *EffectivePOM) expandImports(ctx context.Context, load POMLoader, depth int) error {
	if depth <= 0 {
		return nil
	}

	var imports []Dependency
	for ga, dep := range e.Management {
		if dep.Scope == "import" && dep.Type == "pom" {
			imports = append(imports, dep)
			delete(e.Management, ga)
		}
	}

	for _, bom := range imports {
		if bom.GroupID == "" || bom.ArtifactID == "" || bom.Version == "" {
			continue
		}
		pom, err := load(ctx, bom.GroupID, bom.ArtifactID, bom.Version)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPOM, err,
				"import %s:%s:%s", bom.GroupID, bom.ArtifactID, bom.Version)
		}
		eff, err := pom.effective(ctx, load, depth-1)
		if err != nil {
			return err
		}
		for ga, dep := range eff.Management {
			if _, exists := e.Management[ga]; !exists {
				e.Management[ga] = dep
			}
		}
	}
	return nil
}

// droppedScopes never participate in transitive resolution.
var droppedScopes = map[string]bool{
	"test":     true,
	"provided": true,
	"system":   true,
}

// DirectDependencies extracts the artifact's direct dependencies:
//   - optional and test/provided/system scoped entries are dropped
//   - absent scope defaults to compile; compile and runtime are kept
//   - entries without a version are pinned from dependencyManagement
//   - <exclusions> attach to the produced artifact
//
// Entries whose group or artifact still carry an unresolved property
// reference are skipped.
func (e *EffectivePOM) DirectDependencies() []*Artifact {
	var out []*Artifact
	for _, dep := range e.Dependencies {
		if dep.Optional == "true" {
			continue
		}
		scope := dep.Scope
		version := dep.Version
		if managed, ok := e.Management[dep.GA()]; ok {
			if version == "" || strings.Contains(version, "${") {
				version = managed.Version
			}
			if scope == "" {
				scope = managed.Scope
			}
		}
		if scope == "" {
			scope = "compile"
		}
		if droppedScopes[scope] || scope == "import" {
			continue
		}
		if strings.Contains(dep.GroupID, "${") || strings.Contains(dep.ArtifactID, "${") {
			continue
		}
		if strings.Contains(version, "${") {
			version = ""
		}

		a := NewArtifact(dep.GroupID, dep.ArtifactID, version)
		a.Classifier = dep.Classifier
		if dep.Type != "" && dep.Type != "jar" {
			a.Extension = dep.Type
			if dep.Type == "pom" {
				a.Packaging = "pom"
			}
		}
		for _, ex := range dep.Exclusions {
			a.AddExclusions(ex.GroupID + ":" + ex.ArtifactID)
		}
		out = append(out, a)
	}
	return out
}
