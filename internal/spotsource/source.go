// Package spotsource fetches kindness spots near a coordinate from either a
// static document or a live Overpass query.
package spotsource

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/kindness-map/internal/config"
	"github.com/sells-group/kindness-map/internal/fetcher"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/pkg/overpass"
)

// Source produces spots near a center coordinate.
type Source interface {
	// Fetch returns spots near center. Spots may lack a coordinate; callers
	// drop those before rendering.
	Fetch(ctx context.Context, center model.Coordinate) ([]model.Spot, error)
	// Name identifies the variant in logs.
	Name() string
}

// Kinds accepted by New.
const (
	KindStatic = "static"
	KindLive   = "live"
)

// New builds the source selected by cfg.Source.Kind.
func New(cfg *config.Config) (Source, error) {
	switch cfg.Source.Kind {
	case KindStatic, "":
		f, err := NewDocumentFetcher(cfg)
		if err != nil {
			return nil, err
		}
		return NewStatic(f, cfg.Static.Location, cfg.Static.RadiusM), nil
	case KindLive:
		client := overpass.NewClient(
			overpass.WithBaseURL(cfg.Overpass.URL),
			overpass.WithUserAgent(cfg.Overpass.UserAgent),
			overpass.WithTimeout(cfg.Overpass.Timeout),
		)
		return NewLive(client, cfg.Overpass.RadiusM, int(cfg.Overpass.Timeout.Seconds())), nil
	default:
		return nil, eris.Errorf("spotsource: unknown kind %q", cfg.Source.Kind)
	}
}

// NewDocumentFetcher wires the file, HTTP and (when configured) S3 fetchers
// behind a scheme router.
func NewDocumentFetcher(cfg *config.Config) (*fetcher.Router, error) {
	r := &fetcher.Router{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.Overpass.UserAgent,
			Timeout:   cfg.Overpass.Timeout,
		}),
		File: &fetcher.FileFetcher{},
	}
	if cfg.S3.Endpoint != "" {
		s3, err := fetcher.NewS3Fetcher(fetcher.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, eris.Wrap(err, "spotsource: s3 fetcher")
		}
		r.S3 = s3
	}
	return r, nil
}
