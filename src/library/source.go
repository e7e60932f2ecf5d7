package library

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// A Source opens the resource identified by a locator. Locators may be
// absolute URLs or paths relative to the root of the source.
type Source interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// ResolveLocator resolves a locator against a root URL. Absolute locators and
// locators that can not be parsed are returned unchanged.
func ResolveLocator(root, locator string) string {
	if root == "" {
		return locator
	}
	ref, err := url.Parse(locator)
	if err != nil || ref.IsAbs() {
		return locator
	}
	base, err := url.Parse(root)
	if err != nil {
		return locator
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String()
}

// HTTPSource fetches resources over HTTP.
type HTTPSource struct {
	// Root is the base URL against which relative locators are resolved.
	Root string
	// Client is used to perform requests. If nil, http.DefaultClient is used.
	Client *http.Client
}

var _ Source = &HTTPSource{}

// Open implements the library.Source interface.
func (src *HTTPSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	client := src.Client
	if client == nil {
		client = http.DefaultClient
	}
	uri := ResolveLocator(src.Root, locator)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("could not fetch %q: %s", uri, resp.Status)
	}
	return resp.Body, nil
}

// FSSource reads resources from a filesystem, absolute URLs are delegated to
// Remote.
type FSSource struct {
	FS     fs.FS
	Remote Source
}

var _ Source = &FSSource{}

// Open implements the library.Source interface.
func (src *FSSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if u, err := url.Parse(locator); err == nil && u.IsAbs() {
		if src.Remote == nil {
			return nil, fmt.Errorf("could not open %q: no remote source", locator)
		}
		return src.Remote.Open(ctx, locator)
	}
	return src.FS.Open(path.Clean(strings.TrimPrefix(locator, "/")))
}
