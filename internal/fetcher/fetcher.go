// Package fetcher loads documents from local files, HTTP(S) endpoints and
// S3-compatible object storage.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading a document.
type Fetcher interface {
	// Download fetches the location and returns the document body.
	Download(ctx context.Context, location string) (io.ReadCloser, error)
}

// Router dispatches a location to the fetcher registered for its scheme.
// Locations without a scheme are treated as file paths.
type Router struct {
	HTTP Fetcher
	S3   Fetcher
	File Fetcher
}

// Download implements Fetcher.
func (r *Router) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	f, err := r.pick(location)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, location)
}

func (r *Router) pick(location string) (Fetcher, error) {
	scheme := ""
	if i := strings.Index(location, "://"); i > 0 {
		u, err := url.Parse(location)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: parse location %q", location)
		}
		scheme = strings.ToLower(u.Scheme)
	}

	var f Fetcher
	switch scheme {
	case "http", "https":
		f = r.HTTP
	case "s3":
		f = r.S3
	case "", "file":
		f = r.File
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", scheme)
	}
	if f == nil {
		return nil, eris.Errorf("fetcher: no fetcher configured for %q", location)
	}
	return f, nil
}
