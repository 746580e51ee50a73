package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/config"
	"github.com/sells-group/kindness-map/internal/locate"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/internal/render"
	"github.com/sells-group/kindness-map/internal/spotsource"
	"github.com/sells-group/kindness-map/internal/view"
	"github.com/sells-group/kindness-map/pkg/iplocate"
)

// app bundles the pipeline pieces shared by the commands.
type app struct {
	pipeline *view.Pipeline
	resolver *locate.Resolver
	viewOpts view.Options
}

// newIPLocator prefers the offline database when one is configured. The
// returned close func is never nil.
func newIPLocator(c *config.Config) (iplocate.Client, func(), error) {
	if c.IPLocate.MMDBPath != "" {
		db, err := iplocate.OpenDatabase(c.IPLocate.MMDBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}
	client := iplocate.NewClient(
		iplocate.WithBaseURL(c.IPLocate.BaseURL),
		iplocate.WithRateLimit(c.IPLocate.RPS),
	)
	return client, func() {}, nil
}

// buildApp wires the configured source, classifier and renderer.
func buildApp(c *config.Config) (*app, error) {
	icons, err := classify.LookupIconSet(c.Render.IconSet)
	if err != nil {
		return nil, err
	}
	policy, err := classify.ParseUnknownPolicy(c.Classify.Unknown)
	if err != nil {
		return nil, err
	}
	src, err := spotsource.New(c)
	if err != nil {
		return nil, eris.Wrap(err, "build spot source")
	}

	fallback := model.Coordinate{Lat: c.Map.DefaultLat, Lng: c.Map.DefaultLng}
	if !fallback.Valid() {
		return nil, eris.Errorf("invalid default coordinate %v", fallback)
	}

	return &app{
		pipeline: view.NewPipeline(src, classify.New(icons, policy), render.NewRenderer()),
		resolver: locate.NewResolver(fallback, c.Locate.Timeout),
		viewOpts: view.Options{
			Zoom:              c.Map.Zoom,
			FetchOnDefault:    c.View.FetchOnDefault,
			Cluster:           c.Render.Cluster,
			ClusterZoomOffset: c.Render.ClusterZoomOffset,
		},
	}, nil
}

// newController creates a view controller for one viewer.
func (a *app) newController() *view.Controller {
	return view.NewController(a.pipeline, a.resolver, a.viewOpts)
}
