package spotsource

import (
	"context"
	"strconv"

	"github.com/paulmach/orb/geo"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/fetcher"
	"github.com/sells-group/kindness-map/internal/model"
)

// Document is the static spot document.
type Document struct {
	KindnessSpots []DocumentSpot `json:"kindnessSpots" yaml:"kindnessSpots"`
}

// DocumentSpot is one record of the static document. Every field is
// optional; Location or either of its members may be absent.
type DocumentSpot struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Type        string            `json:"type" yaml:"type"`
	Address     string            `json:"address" yaml:"address"`
	Phone       string            `json:"phone" yaml:"phone"`
	Location    *DocumentLocation `json:"location" yaml:"location"`
}

// DocumentLocation holds a record's position.
type DocumentLocation struct {
	Lat *float64 `json:"lat" yaml:"lat"`
	Lng *float64 `json:"lng" yaml:"lng"`
}

// Static loads the whole document on every Fetch.
type Static struct {
	fetcher  fetcher.Fetcher
	location string
	radiusM  float64
}

// NewStatic creates a static source. A positive radiusM drops spots farther
// than radiusM meters from the fetch center.
func NewStatic(f fetcher.Fetcher, location string, radiusM float64) *Static {
	return &Static{fetcher: f, location: location, radiusM: radiusM}
}

// Name implements Source.
func (s *Static) Name() string { return KindStatic }

// Fetch implements Source.
func (s *Static) Fetch(ctx context.Context, center model.Coordinate) ([]model.Spot, error) {
	body, err := s.fetcher.Download(ctx, s.location)
	if err != nil {
		return nil, eris.Wrap(err, "spotsource: load static document")
	}
	defer body.Close() //nolint:errcheck

	doc, err := fetcher.DecodeDocument[Document](body, s.location)
	if err != nil {
		return nil, eris.Wrapf(err, "spotsource: parse static document %s", s.location)
	}

	spots := make([]model.Spot, 0, len(doc.KindnessSpots))
	for i, rec := range doc.KindnessSpots {
		spot := rec.toSpot(i)
		if s.radiusM > 0 && spot.HasCoordinate() &&
			geo.DistanceHaversine(center.Point(), spot.Coordinate.Point()) > s.radiusM {
			continue
		}
		spots = append(spots, spot)
	}

	zap.L().Debug("spotsource: static document loaded",
		zap.String("location", s.location),
		zap.Int("records", len(doc.KindnessSpots)),
		zap.Int("spots", len(spots)),
	)
	return spots, nil
}

func (r DocumentSpot) toSpot(index int) model.Spot {
	spot := model.Spot{
		Name:        r.Name,
		Description: r.Description,
		RawCategory: r.Type,
		Category:    classify.Normalize(r.Type),
		Address:     r.Address,
		Phone:       r.Phone,
		Source:      model.SourceStatic,
		SourceID:    strconv.Itoa(index),
	}
	if r.Location != nil && r.Location.Lat != nil && r.Location.Lng != nil {
		spot.Coordinate = &model.Coordinate{Lat: *r.Location.Lat, Lng: *r.Location.Lng}
	}
	return spot
}
