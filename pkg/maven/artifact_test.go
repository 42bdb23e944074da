package maven

import "testing"

func TestArtifactURLConstruction(t *testing.T) {
	repo := &Repository{Name: "r", BaseURL: "https://r"}

	a := NewArtifact("com.x", "y", "1.0")
	a.Classifier = "sources"
	a.Repository = repo

	url, err := a.DownloadURL()
	if err != nil {
		t.Fatalf("DownloadURL() error: %v", err)
	}
	want := "https://r/com/x/y/1.0/y-1.0-sources.jar"
	if url != want {
		t.Errorf("DownloadURL() = %q, want %q", url, want)
	}
}

func TestArtifactPOMPathIgnoresClassifier(t *testing.T) {
	a := NewArtifact("com.google.guava", "guava", "31.1-jre")
	a.Classifier = "sources"
	want := "com/google/guava/guava/31.1-jre/guava-31.1-jre.pom"
	if got := a.POMPath(); got != want {
		t.Errorf("POMPath() = %q, want %q", got, want)
	}
}

func TestArtifactMetadataPath(t *testing.T) {
	a := NewArtifact("io.netty", "netty-handler", "")
	want := "io/netty/netty-handler/maven-metadata.xml"
	if got := a.MetadataPath(); got != want {
		t.Errorf("MetadataPath() = %q, want %q", got, want)
	}
}

func TestArtifactFileName(t *testing.T) {
	tests := []struct {
		artifact *Artifact
		want     string
	}{
		{NewArtifact("g", "lib", "2.1"), "lib-2.1.jar"},
		{&Artifact{GroupID: "g", ArtifactID: "lib", Version: "2.1", Classifier: "linux-x86_64", Extension: "so"}, "lib-2.1-linux-x86_64.so"},
		{&Artifact{GroupID: "g", ArtifactID: "lib", Version: "2.1"}, "lib-2.1.jar"},
	}
	for _, tt := range tests {
		if got := tt.artifact.FileName(); got != tt.want {
			t.Errorf("FileName() = %q, want %q", got, tt.want)
		}
	}
}

func TestArtifactIdentity(t *testing.T) {
	a := NewArtifact("com.x", "y", "1.0")
	if a.GA() != "com.x:y" {
		t.Errorf("GA() = %q", a.GA())
	}
	if a.ID() != "com.x:y:1.0" {
		t.Errorf("ID() = %q", a.ID())
	}
	a.Classifier = "sources"
	if a.ID() != "com.x:y:1.0:sources" {
		t.Errorf("ID() with classifier = %q", a.ID())
	}
}

func TestArtifactExclusions(t *testing.T) {
	a := NewArtifact("com.x", "y", "1.0")
	if a.Excludes("g:x") {
		t.Error("empty exclusion set should exclude nothing")
	}
	a.AddExclusions("g:x", "g:z")
	if !a.Excludes("g:x") || !a.Excludes("g:z") {
		t.Error("added exclusions should match")
	}
	if a.Excludes("g:other") {
		t.Error("unrelated GA should not match")
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		coord   string
		want    string // expected ID
		ext     string
		wantErr bool
	}{
		{"com.google.guava:guava:31.1-jre", "com.google.guava:guava:31.1-jre", "jar", false},
		{"com.x:y", "com.x:y:", "jar", false},
		{"com.x:y:1.0:sources", "com.x:y:1.0:sources", "jar", false},
		{"com.x:y:1.0@aar", "com.x:y:1.0", "aar", false},
		{"com.x:y:1.0:natives@zip", "com.x:y:1.0:natives", "zip", false},
		{"justonefield", "", "", true},
		{"a::1.0", "", "", true},
		{"a:b:c:d:e", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			a, err := ParseCoordinate(tt.coord)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if a.ID() != tt.want {
				t.Errorf("ID() = %q, want %q", a.ID(), tt.want)
			}
			if a.Extension != tt.ext {
				t.Errorf("Extension = %q, want %q", a.Extension, tt.ext)
			}
		})
	}
}

func TestIsPOMOnly(t *testing.T) {
	a := NewArtifact("io.netty", "netty-bom", "4.1.100.Final")
	a.Packaging = "pom"
	if !a.IsPOMOnly() {
		t.Error("pom packaging should be POM-only")
	}
	if NewArtifact("g", "a", "1").IsPOMOnly() {
		t.Error("default packaging should not be POM-only")
	}
}

func TestDownloadURLRequiresRepository(t *testing.T) {
	a := NewArtifact("g", "a", "1")
	if _, err := a.DownloadURL(); err == nil {
		t.Error("expected error for unbound repository")
	}
}
