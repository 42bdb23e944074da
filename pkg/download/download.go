// Package download materializes resolved artifacts on local disk.
//
// Downloads stream straight from the artifact's bound repository to the
// output directory, writing through a temporary file so an interrupted
// transfer never leaves a truncated artifact behind. Files that already
// exist are skipped, and per-artifact failures are reported through the
// download hooks without aborting the batch.
package download

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/caravel-cli/caravel/pkg/fetch"
	"github.com/caravel-cli/caravel/pkg/maven"
	"github.com/caravel-cli/caravel/pkg/observability"
)

// Downloader fetches artifact files into an output directory.
type Downloader struct {
	client *fetch.Client
	logger *log.Logger
}

// NewDownloader creates a Downloader using the shared HTTP client.
func NewDownloader(client *fetch.Client, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.Default()
	}
	return &Downloader{client: client, logger: logger}
}

// Download materializes the artifacts under outputDir as
// "artifactId-version[-classifier].ext". Existing files are skipped and
// POM-packaged artifacts (BOMs, aggregators) have no file to download.
// Per-artifact failures emit OnDownloadError and the batch continues;
// only a failure to create outputDir or context cancellation returns an
// error.
func (d *Downloader) Download(ctx context.Context, outputDir string, artifacts []*maven.Artifact) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.IsPOMOnly() {
			d.logger.Debug("skipping pom-packaged artifact", "artifact", a.ID())
			continue
		}

		target := filepath.Join(outputDir, a.FileName())
		if _, err := os.Stat(target); err == nil {
			observability.Download().OnDownloadSkipped(ctx, a.GA(), target)
			d.logger.Debug("already present", "file", target)
			continue
		}

		d.fetchOne(ctx, a, target)
	}
	return nil
}

func (d *Downloader) fetchOne(ctx context.Context, a *maven.Artifact, target string) {
	url, err := a.DownloadURL()
	if err != nil {
		observability.Download().OnDownloadError(ctx, a.GA(), "", err)
		d.logger.Warn("cannot download", "artifact", a.ID(), "err", err)
		return
	}

	observability.Download().OnDownloadStart(ctx, a.GA(), url)
	start := time.Now()

	body, _, err := d.client.Stream(ctx, url)
	if err != nil {
		observability.Download().OnDownloadError(ctx, a.GA(), url, err)
		d.logger.Warn("download failed", "artifact", a.ID(), "err", err)
		return
	}
	defer body.Close()

	written, err := writeAtomic(target, body)
	if err != nil {
		observability.Download().OnDownloadError(ctx, a.GA(), url, err)
		d.logger.Warn("write failed", "file", target, "err", err)
		return
	}

	observability.Download().OnDownloadEnd(ctx, a.GA(), target, written, time.Since(start))
	d.logger.Debug("downloaded", "file", target, "bytes", written,
		"took", time.Since(start).Round(time.Millisecond))
}

// writeAtomic streams r into path via a temporary sibling file and a
// rename, so readers never observe a partial artifact.
func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	return written, os.Rename(tmp.Name(), path)
}
