// ABOUTME: Download cache for remote Speex files
// ABOUTME: Fetches URLs once into a local directory so they can be reopened as files
package fetch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when a download exceeds the size limit
var ErrTooLarge = errors.New("fetch: download exceeds size limit")

// Cache manages downloads
type Cache struct {
	dir       string
	maxBytes  int64
	userAgent string
	client    *http.Client
}

// NewCache creates a cache in dir, or in the system temp directory when dir
// is empty. Downloads larger than maxBytes are rejected; zero means no limit.
func NewCache(dir string, maxBytes int64, userAgent string) (*Cache, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "speex-cache")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		dir:       dir,
		maxBytes:  maxBytes,
		userAgent: userAgent,
		client:    &http.Client{},
	}, nil
}

// Path returns where url is cached, whether or not it has been fetched
func (c *Cache) Path(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, fmt.Sprintf("%x%s", hash[:8], extension(url)))
}

// Fetch returns the local path of url, downloading it on first use
func (c *Cache) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("fetch: empty URL")
	}

	path := c.Path(url)
	if _, err := os.Stat(path); err == nil {
		log.Printf("Cache hit: %s", path)
		return path, nil
	}

	log.Printf("Downloading %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	if c.maxBytes > 0 && resp.ContentLength > c.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	// Write beside the final path so a partial download is never visible
	f, err := os.CreateTemp(c.dir, "partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save download: %w", err)
	}
	if c.maxBytes > 0 && n > c.maxBytes {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to store download: %w", err)
	}

	log.Printf("Saved %d bytes to %s", n, path)
	return path, nil
}

// extension keeps the container extension of url so the cached file opens
// with the same container
func extension(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}

	ext := strings.ToLower(filepath.Ext(url))
	switch ext {
	case ".spx", ".ogg", ".oga", ".wav":
		return ext
	}
	return ".spx"
}

// Cleanup removes the cache directory
func (c *Cache) Cleanup() error {
	return os.RemoveAll(c.dir)
}
