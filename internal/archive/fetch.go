// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

const rawDir = "raw"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Paths      []string
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchFile downloads one cube from rawURL into cfg.DataDir/raw/, keeping
// the URL's base filename. An already-present file skips the download.
// The skipped return value indicates whether the download was skipped.
func FetchFile(ctx context.Context, client *http.Client, rawURL string, cfg types.ArchiveConfig, w io.Writer) (destPath string, skipped bool, err error) {
	name, err := cubeFilename(rawURL)
	if err != nil {
		return "", false, err
	}

	destDir := filepath.Join(cfg.DataDir, rawDir)
	destPath = filepath.Join(destDir, name)

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return destPath, true, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", name)

	if err := downloadFile(ctx, client, rawURL, destPath, cfg, w); err != nil {
		return "", false, fmt.Errorf("downloading %s: %w", name, err)
	}
	return destPath, false, nil
}

// FetchBatch processes multiple URLs, printing per-item status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive downloads.
func FetchBatch(ctx context.Context, client *http.Client, urls []string, cfg types.ArchiveConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, u := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		dest, wasSkipped, err := FetchFile(ctx, client, u, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Paths = append(result.Paths, dest)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// cubeFilename derives a local filename from the URL path, requiring a
// .fits or .fit suffix so arbitrary archive responses do not masquerade
// as cubes.
func cubeFilename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	ext := strings.ToLower(path.Ext(name))
	if name == "." || name == "/" || (ext != ".fits" && ext != ".fit") {
		return "", fmt.Errorf("URL %q does not name a .fits file", rawURL)
	}
	return name, nil
}

// downloadFile fetches url to destPath using a temporary file, renaming
// only after the full body has been written, so a failed download never
// leaves a truncated cube behind.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.ArchiveConfig, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/fits")

	resp, err := DoWithRetry(ctx, client, req, cfg.MaxRetries, w)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
