package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/caravel-cli/caravel/pkg/maven"
)

func TestLooksLikeCoordinates(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"."}, false},
		{[]string{"./service"}, false},
		{[]string{"com.google.guava:guava:31.1-jre"}, true},
		{[]string{"g:a:1", "g:b:2"}, true},
		{[]string{"g:a:1", "plainpath"}, false},
	}
	for _, tt := range tests {
		if got := looksLikeCoordinates(tt.args); got != tt.want {
			t.Errorf("looksLikeCoordinates(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestLooksLikeCoordinatesExistingPathWins(t *testing.T) {
	// A path that exists is a path, even if it contains a colon.
	dir := t.TempDir()
	weird := filepath.Join(dir, "odd:name")
	if err := os.Mkdir(weird, 0o755); err != nil {
		t.Skip("filesystem rejects colon in names")
	}
	if looksLikeCoordinates([]string{weird}) {
		t.Error("existing path should not be treated as a coordinate")
	}
}

func TestWriteArtifactsJSON(t *testing.T) {
	a := maven.NewArtifact("com.x", "lib", "1.0")
	a.Repository = &maven.Repository{Name: "central", BaseURL: "https://repo1.maven.org/maven2"}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := writeArtifacts([]*maven.Artifact{a}, path); err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []artifactJSON
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(out) != 1 || out[0].Version != "1.0" || out[0].Repository != "central" {
		t.Errorf("out = %+v", out)
	}
	if out[0].URL == "" {
		t.Error("expected download URL in JSON output")
	}
}
