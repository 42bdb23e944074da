package maven

import "testing"

const sampleMetadata = `<?xml version="1.0"?>
<metadata>
  <groupId>com.x</groupId>
  <artifactId>lib</artifactId>
  <versioning>
    <latest>2.1-SNAPSHOT</latest>
    <release>2.0</release>
    <versions>
      <version>1.0</version>
      <version>1.5</version>
      <version>2.0</version>
      <version>2.1-SNAPSHOT</version>
    </versions>
  </versioning>
</metadata>`

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("ParseMetadata() error: %v", err)
	}
	if m.GroupID != "com.x" || m.ArtifactID != "lib" {
		t.Errorf("identity = %s:%s", m.GroupID, m.ArtifactID)
	}
	if len(m.Versioning.Versions) != 4 {
		t.Errorf("versions = %v", m.Versioning.Versions)
	}
}

func TestResolveVersionMarkers(t *testing.T) {
	m, _ := ParseMetadata([]byte(sampleMetadata))

	tests := []struct {
		declared string
		want     string
	}{
		{"1.5", "1.5"}, // concrete versions pass through
		{"LATEST", "2.1-SNAPSHOT"},
		{"RELEASE", "2.0"},
		{"", "2.1-SNAPSHOT"},
		{"[1.0,2.0)", "1.5"},
		{"[1.0,2.0]", "2.0"},
	}
	for _, tt := range tests {
		got, err := m.ResolveVersion(tt.declared)
		if err != nil {
			t.Errorf("ResolveVersion(%q) error: %v", tt.declared, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveVersion(%q) = %q, want %q", tt.declared, got, tt.want)
		}
	}
}

func TestResolveVersionNoMatch(t *testing.T) {
	m, _ := ParseMetadata([]byte(sampleMetadata))
	if _, err := m.ResolveVersion("[9.0,)"); err == nil {
		t.Error("expected error for unsatisfiable range")
	}
}

func TestResolveVersionFallbackToHighest(t *testing.T) {
	m, _ := ParseMetadata([]byte(`<metadata>
  <groupId>g</groupId><artifactId>a</artifactId>
  <versioning><versions><version>1.0</version><version>1.2</version></versions></versioning>
</metadata>`))

	got, err := m.ResolveVersion("LATEST")
	if err != nil {
		t.Fatalf("ResolveVersion() error: %v", err)
	}
	if got != "1.2" {
		t.Errorf("ResolveVersion(LATEST) = %q, want highest listed", got)
	}
}

func TestParseMetadataMalformed(t *testing.T) {
	if _, err := ParseMetadata([]byte("<metadata><versioning>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}
