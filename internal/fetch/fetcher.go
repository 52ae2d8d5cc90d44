// Package fetch downloads contact sheets published at a URL, such as a
// spreadsheet's CSV export link.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/communityhub/importer/internal/headers"
)

// MaxBytes caps a fetched sheet at 10MB, the same as an upload.
const MaxBytes = 10 * 1024 * 1024

// ErrTooLarge is returned when the remote file exceeds MaxBytes.
var ErrTooLarge = errors.New("remote file too large (max 10MB)")

// Fetcher retrieves remote sheets over HTTP.
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsURL reports whether s looks like something Fetch can download.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads rawURL and parses it as a table. The format comes from the
// URL path, then a format query parameter, then the Content-Disposition
// filename, then the Content-Type.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts ...headers.Option) (*headers.Table, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid sheet URL %q", rawURL)
	}

	slog.Info("Fetching sheet", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	name := fileName(u, resp.Header)
	slog.Debug("Fetched sheet", "url", rawURL, "name", name, "bytes", len(data))

	return headers.Read(name, bytes.NewReader(data), opts...)
}

// fileName picks a name whose extension tells headers.Read the format.
func fileName(u *url.URL, h http.Header) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = u.Host
	}
	if hasSupportedExt(base) {
		return base
	}

	if format := strings.ToLower(u.Query().Get("format")); format != "" && hasSupportedExt("x."+format) {
		return base + "." + format
	}

	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		if fn := params["filename"]; hasSupportedExt(fn) {
			return path.Base(fn)
		}
	}

	if mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil {
		if ext := contentTypeExt(mediaType); ext != "" {
			return base + ext
		}
	}

	return base
}

func contentTypeExt(mediaType string) string {
	switch mediaType {
	case "text/csv", "application/csv":
		return ".csv"
	case "text/tab-separated-values":
		return ".tsv"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	case "application/vnd.apache.parquet":
		return ".parquet"
	}
	return ""
}

func hasSupportedExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, supported := range headers.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
