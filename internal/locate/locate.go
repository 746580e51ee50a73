// Package locate resolves the reference coordinate a map view centers on.
package locate

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/pkg/iplocate"
)

// ErrUnavailable is returned when no device location can be obtained.
var ErrUnavailable = eris.New("locate: geolocation unavailable")

// Geolocator asks a device for its position.
type Geolocator interface {
	Locate(ctx context.Context) (model.Coordinate, error)
}

// Reported replays a position (or failure) the browser already reported.
type Reported struct {
	Coordinate *model.Coordinate
	// Err is the browser's error message, e.g. "User denied Geolocation".
	Err string
}

// Locate implements Geolocator.
func (r Reported) Locate(context.Context) (model.Coordinate, error) {
	if r.Err != "" {
		return model.Coordinate{}, eris.Errorf("locate: device reported: %s", r.Err)
	}
	if r.Coordinate == nil {
		return model.Coordinate{}, ErrUnavailable
	}
	return *r.Coordinate, nil
}

// Unsupported is a device without geolocation.
type Unsupported struct{}

// Locate implements Geolocator.
func (Unsupported) Locate(context.Context) (model.Coordinate, error) {
	return model.Coordinate{}, ErrUnavailable
}

// IPGeolocator approximates the device position from its public IP.
type IPGeolocator struct {
	Client iplocate.Client
	IP     string
}

// Locate implements Geolocator.
func (g IPGeolocator) Locate(ctx context.Context) (model.Coordinate, error) {
	res, err := g.Client.Lookup(ctx, g.IP)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "locate: ip lookup")
	}
	return model.Coordinate{Lat: res.Lat, Lng: res.Lon}, nil
}

// Origin records where a resolved coordinate came from.
type Origin string

// Origins.
const (
	OriginDevice  Origin = "device"
	OriginDefault Origin = "default"
)

// Resolution is the outcome of a single resolve attempt.
type Resolution struct {
	Coordinate model.Coordinate `json:"coordinate"`
	Origin     Origin           `json:"origin"`
}

// Resolver turns a geolocation attempt into exactly one coordinate.
type Resolver struct {
	fallback model.Coordinate
	timeout  time.Duration
}

// NewResolver creates a Resolver. A zero timeout leaves the attempt bounded
// only by ctx.
func NewResolver(fallback model.Coordinate, timeout time.Duration) *Resolver {
	return &Resolver{fallback: fallback, timeout: timeout}
}

// Default returns the fallback resolution.
func (r *Resolver) Default() Resolution {
	return Resolution{Coordinate: r.fallback, Origin: OriginDefault}
}

// Resolve tries g once. Any failure yields the fallback coordinate; errors
// are logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, g Geolocator) Resolution {
	if g == nil {
		return r.Default()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	coord, err := g.Locate(ctx)
	if err != nil {
		zap.L().Warn("locate: geolocation failed, using default", zap.Error(err))
		return r.Default()
	}
	if !coord.Valid() {
		zap.L().Warn("locate: invalid coordinate, using default",
			zap.Float64("lat", coord.Lat),
			zap.Float64("lng", coord.Lng),
		)
		return r.Default()
	}
	return Resolution{Coordinate: coord, Origin: OriginDevice}
}
