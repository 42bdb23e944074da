package render

import (
	"strings"
	"testing"

	"github.com/caravel-cli/caravel/pkg/maven"
)

func node(group, id, version string, deps ...*maven.Artifact) *maven.Artifact {
	a := maven.NewArtifact(group, id, version)
	a.Dependencies = deps
	return a
}

func TestToDOTNodesAndEdges(t *testing.T) {
	leaf := node("g", "leaf", "1.0")
	mid := node("g", "mid", "1.0", leaf)
	root := node("com.x", "app-lib", "2.0", mid)

	dot := ToDOT([]*maven.Artifact{root}, Options{})

	for _, want := range []string{
		`"com.x:app-lib:2.0"`,
		`"g:mid:1.0"`,
		`"g:leaf:1.0"`,
		`"com.x:app-lib:2.0" -> "g:mid:1.0";`,
		`"g:mid:1.0" -> "g:leaf:1.0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOTDeduplicatesDiamond(t *testing.T) {
	shared := node("g", "shared", "1.0")
	a := node("g", "a", "1.0", shared)
	b := node("g", "b", "1.0", shared)

	dot := ToDOT([]*maven.Artifact{a, b}, Options{})
	if strings.Count(dot, `"g:shared:1.0" [`) != 1 {
		t.Errorf("shared node should render once:\n%s", dot)
	}
	if strings.Count(dot, `-> "g:shared:1.0";`) != 2 {
		t.Errorf("both edges into shared should render:\n%s", dot)
	}
}

func TestToDOTPOMOnlyStyle(t *testing.T) {
	bom := node("io.netty", "netty-bom", "4.1.100")
	bom.Packaging = "pom"

	dot := ToDOT([]*maven.Artifact{bom}, Options{})
	if !strings.Contains(dot, "dashed") {
		t.Errorf("BOM node should be dashed:\n%s", dot)
	}
}

func TestToDOTDetailedLabel(t *testing.T) {
	a := node("g", "lib", "1.0")
	a.Packaging = "jar"
	a.Repository = &maven.Repository{Name: "central", BaseURL: "https://repo1.maven.org/maven2"}

	dot := ToDOT([]*maven.Artifact{a}, Options{Detailed: true})
	if !strings.Contains(dot, "repo: central") || !strings.Contains(dot, "packaging: jar") {
		t.Errorf("detailed label incomplete:\n%s", dot)
	}
}
