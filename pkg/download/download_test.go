package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/caravel-cli/caravel/pkg/fetch"
	"github.com/caravel-cli/caravel/pkg/maven"
)

func artifactFor(server *httptest.Server, group, id, version string) *maven.Artifact {
	a := maven.NewArtifact(group, id, version)
	a.Repository = &maven.Repository{Name: "stub", BaseURL: server.URL}
	return a
}

func newDownloader() *Downloader {
	return NewDownloader(fetch.NewClient(nil, 0), log.New(io.Discard))
}

func TestDownloadWritesFile(t *testing.T) {
	payload := []byte("jar-bytes-payload")
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/com/x/lib/1.0/lib-1.0.jar" {
			gets.Add(1)
			w.Write(payload)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	outDir := t.TempDir()
	d := newDownloader()
	a := artifactFor(server, "com.x", "lib", "1.0")

	if err := d.Download(context.Background(), outDir, []*maven.Artifact{a}); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	target := filepath.Join(outDir, "lib-1.0.jar")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("file length = %d, want %d", len(data), len(payload))
	}

	// A second invocation skips the existing file: zero additional GETs.
	if err := d.Download(context.Background(), outDir, []*maven.Artifact{a}); err != nil {
		t.Fatalf("second Download() error: %v", err)
	}
	if gets.Load() != 1 {
		t.Errorf("expected 1 GET total, got %d", gets.Load())
	}
}

func TestDownloadClassifierName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	outDir := t.TempDir()
	a := artifactFor(server, "com.x", "lib", "1.0")
	a.Classifier = "sources"

	if err := newDownloader().Download(context.Background(), outDir, []*maven.Artifact{a}); err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "lib-1.0-sources.jar")); err != nil {
		t.Errorf("classifier file missing: %v", err)
	}
}

func TestDownloadFailureContinuesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/g/ok/1.0/ok-1.0.jar" {
			w.Write([]byte("fine"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	outDir := t.TempDir()
	missing := artifactFor(server, "g", "broken", "1.0")
	ok := artifactFor(server, "g", "ok", "1.0")

	if err := newDownloader().Download(context.Background(), outDir, []*maven.Artifact{missing, ok}); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "ok-1.0.jar")); err != nil {
		t.Error("batch should continue past a failed artifact")
	}
	if _, err := os.Stat(filepath.Join(outDir, "broken-1.0.jar")); err == nil {
		t.Error("failed artifact must not leave a file behind")
	}
}

func TestDownloadSkipsPOMOnly(t *testing.T) {
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gets.Add(1)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	bom := artifactFor(server, "io.netty", "netty-bom", "4.1.100")
	bom.Packaging = "pom"

	if err := newDownloader().Download(context.Background(), t.TempDir(), []*maven.Artifact{bom}); err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if gets.Load() != 0 {
		t.Errorf("pom-packaged artifact should not be fetched, got %d GETs", gets.Load())
	}
}

func TestDownloadUnboundArtifact(t *testing.T) {
	a := maven.NewArtifact("g", "unbound", "1.0")
	outDir := t.TempDir()

	// No repository bound: the artifact is reported and skipped.
	if err := newDownloader().Download(context.Background(), outDir, []*maven.Artifact{a}); err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("expected empty output dir, got %v", entries)
	}
}
