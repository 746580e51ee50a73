package view

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/locate"
	"github.com/sells-group/kindness-map/internal/metrics"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/internal/render"
)

var (
	// ErrSuperseded is returned by a transition whose fetch was overtaken by
	// a newer one. Its results were discarded.
	ErrSuperseded = eris.New("view: superseded by a newer location change")
	// ErrInvalidCoordinate rejects a search selection outside WGS84 bounds.
	ErrInvalidCoordinate = eris.New("view: invalid coordinate")
)

// OriginSearch marks a camera position chosen through the search control.
const OriginSearch locate.Origin = "search"

// Camera is the map center and zoom.
type Camera struct {
	Center model.Coordinate `json:"center"`
	Zoom   int              `json:"zoom"`
}

// Options configures a Controller.
type Options struct {
	Zoom              int
	FetchOnDefault    bool
	Cluster           bool
	ClusterZoomOffset int
}

// State is a point-in-time snapshot of a view.
type State struct {
	Camera       Camera            `json:"camera"`
	LayerVisible bool              `json:"layer_visible"`
	Origin       locate.Origin     `json:"origin"`
	UserLocation *model.Coordinate `json:"user_location,omitempty"`
	Source       string            `json:"source"`
	Generation   uint64            `json:"generation"`
	Markers      []render.Marker   `json:"markers"`
}

// Controller is one viewer's map. It is safe for concurrent use; the newest
// location change always wins.
type Controller struct {
	pipeline *Pipeline
	resolver *locate.Resolver
	opts     Options
	layer    *render.Layer
	cluster  *render.ClusterGroup

	mu           sync.Mutex
	camera       Camera
	visible      bool
	origin       locate.Origin
	userLocation *model.Coordinate
	gen          uint64
	cancel       context.CancelFunc
}

// NewController creates a Controller with the camera at the resolver's
// default coordinate and an empty, visible layer.
func NewController(p *Pipeline, resolver *locate.Resolver, opts Options) *Controller {
	layer := render.NewLayer()
	c := &Controller{
		pipeline: p,
		resolver: resolver,
		opts:     opts,
		layer:    layer,
		visible:  true,
		origin:   locate.OriginDefault,
		camera:   Camera{Center: resolver.Default().Coordinate, Zoom: opts.Zoom},
	}
	if opts.Cluster {
		c.cluster = render.NewClusterGroup(layer, opts.ClusterZoomOffset)
	}
	return c
}

// Init handles initial load: jump to the default coordinate and, when
// configured, fetch around it.
func (c *Controller) Init(ctx context.Context) error {
	def := c.resolver.Default()
	return c.transition(ctx, def.Coordinate, def.Origin, false, nil, c.opts.FetchOnDefault)
}

// Geolocated handles a geolocation result. Success centers on the device;
// failure falls back to the default coordinate.
func (c *Controller) Geolocated(ctx context.Context, g locate.Geolocator) error {
	res := c.resolver.Resolve(ctx, g)
	metrics.Geolocations.WithLabelValues(string(res.Origin)).Inc()
	if res.Origin == locate.OriginDevice {
		user := res.Coordinate
		return c.transition(ctx, res.Coordinate, res.Origin, true, &user, true)
	}
	return c.transition(ctx, res.Coordinate, res.Origin, true, nil, c.opts.FetchOnDefault)
}

// SearchSelected handles a search result selection.
func (c *Controller) SearchSelected(ctx context.Context, coord model.Coordinate) error {
	if !coord.Valid() {
		return ErrInvalidCoordinate
	}
	return c.transition(ctx, coord, OriginSearch, false, nil, true)
}

// transition jumps the camera, then fetches around the new center unless
// fetch is false, in which case the layer keeps its markers. Any in-flight
// fetch is cancelled first. When setUser is true the user location becomes
// user, so a failed geolocation clears it.
func (c *Controller) transition(ctx context.Context, center model.Coordinate, origin locate.Origin, setUser bool, user *model.Coordinate, fetch bool) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.camera = Camera{Center: center, Zoom: c.opts.Zoom}
	c.origin = origin
	if setUser {
		c.userLocation = user
	}
	if !fetch {
		c.mu.Unlock()
		return nil
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	source := c.pipeline.Source.Name()
	start := time.Now()
	markers, err := c.pipeline.Markers(fetchCtx, center)
	metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		metrics.FetchesTotal.WithLabelValues(source, metrics.OutcomeSuperseded).Inc()
		zap.L().Debug("view: discarding superseded fetch",
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.gen),
		)
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		metrics.FetchesTotal.WithLabelValues(source, metrics.OutcomeError).Inc()
		zap.L().Warn("view: spot fetch failed",
			zap.String("source", source),
			zap.Float64("lat", center.Lat),
			zap.Float64("lng", center.Lng),
			zap.Error(err),
		)
		c.layer.Clear()
		return nil
	}

	c.layer.Replace(markers)
	metrics.FetchesTotal.WithLabelValues(source, metrics.OutcomeOK).Inc()
	metrics.MarkersRendered.Observe(float64(len(markers)))
	zap.L().Debug("view: layer rebuilt",
		zap.String("source", source),
		zap.Int("markers", len(markers)),
		zap.Uint64("generation", gen),
	)
	return nil
}

// SetLayerVisible shows or hides the spots layer.
func (c *Controller) SetLayerVisible(visible bool) {
	c.mu.Lock()
	c.visible = visible
	c.mu.Unlock()
}

// ToggleLayer flips layer visibility and returns the new value.
func (c *Controller) ToggleLayer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = !c.visible
	return c.visible
}

// State returns a snapshot of the view.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Camera:       c.camera,
		LayerVisible: c.visible,
		Origin:       c.origin,
		Source:       c.pipeline.Source.Name(),
		Generation:   c.gen,
		Markers:      c.layer.Markers(),
	}
	if c.userLocation != nil {
		u := *c.userLocation
		s.UserLocation = &u
	}
	return s
}

// FeatureCollection encodes the visible markers for the widget. With
// clustering enabled, markers are grouped for zoom; a negative zoom uses the
// camera zoom. Hidden layers yield only the user location.
func (c *Controller) FeatureCollection(zoom int) *geojson.FeatureCollection {
	s := c.State()
	if zoom < 0 {
		zoom = s.Camera.Zoom
	}

	var fc *geojson.FeatureCollection
	switch {
	case !s.LayerVisible:
		fc = geojson.NewFeatureCollection()
	case c.cluster != nil:
		fc = render.ClusterFeatureCollection(render.ClusterMarkers(s.Markers, zoom, c.opts.ClusterZoomOffset))
	default:
		fc = render.FeatureCollection(s.Markers)
	}
	if s.UserLocation != nil {
		render.AppendUserLocation(fc, *s.UserLocation)
	}
	return fc
}

// Close cancels any in-flight fetch.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}
