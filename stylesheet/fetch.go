package stylesheet

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned by fetchers if a stylesheet does not exist.
var ErrNotFound = errors.New("stylesheet not found")

// ErrUnsupported is returned for locators no fetcher is able to handle.
var ErrUnsupported = errors.New("unsupported stylesheet locator")

// Fetcher retrieves the text of a stylesheet, given its locator (the href
// of a <link> element).
type Fetcher interface {
	Fetch(ctx context.Context, href string) (string, error)
}

// maxSheetSize limits the number of bytes read for a single stylesheet.
const maxSheetSize = 8 << 20

// DefaultTimeout is the timeout for HTTP requests if none is configured.
const DefaultTimeout = 30 * time.Second

// --- HTTP ------------------------------------------------------------------

// HTTPFetcher gets stylesheets from a web server.
type HTTPFetcher struct {
	base       *url.URL
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher resolving relative locators against base.
// base may be empty, if all locators will be absolute URLs.
func NewHTTPFetcher(base string, timeout time.Duration) (*HTTPFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		f.base = u
	}
	return f, nil
}

// Fetch is part of interface Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet URL %q: %w", href, err)
	}
	if f.base != nil {
		u = f.base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrUnsupported, href)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/css,*/*;q=0.1")
	tracer().Debugf("GET %s", u)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// --- Files -----------------------------------------------------------------

// FileFetcher reads stylesheets from the file system. Relative locators are
// relative to Dir.
type FileFetcher struct {
	Dir string
}

// Fetch is part of interface Fetcher.
func (f FileFetcher) Fetch(ctx context.Context, href string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet locator %q: %w", href, err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, href)
	}
	path := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.Dir, path)
	}
	tracer().Debugf("reading %s", path)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- Tables ----------------------------------------------------------------

// MapFetcher serves stylesheets from memory, keyed by locator.
type MapFetcher map[string]string

// Fetch is part of interface Fetcher.
func (m MapFetcher) Fetch(ctx context.Context, href string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	css, ok := m[href]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, href)
	}
	return css, nil
}

// --- Dispatch --------------------------------------------------------------

// Resolver dispatches on the scheme of a locator: http and https go to HTTP,
// file URLs to Local. Relative locators go to Local, or to HTTP if there is
// no Local fetcher.
type Resolver struct {
	HTTP  Fetcher
	Local Fetcher
}

// Fetch is part of interface Fetcher.
func (r Resolver) Fetch(ctx context.Context, href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet locator %q: %w", href, err)
	}
	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = r.HTTP
	case "file":
		f = r.Local
	case "":
		f = r.Local
		if f == nil {
			f = r.HTTP
		}
	}
	if f == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, href)
	}
	return f.Fetch(ctx, href)
}
