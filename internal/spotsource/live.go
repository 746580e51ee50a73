package spotsource

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/pkg/overpass"
)

// Live queries Overpass around the fetch center on every Fetch.
type Live struct {
	client   overpass.Client
	radiusM  float64
	timeoutS int
}

// NewLive creates a live source. timeoutS is passed to the interpreter as
// its [timeout:] setting; 0 leaves the server default.
func NewLive(client overpass.Client, radiusM float64, timeoutS int) *Live {
	return &Live{client: client, radiusM: radiusM, timeoutS: timeoutS}
}

// Name implements Source.
func (l *Live) Name() string { return KindLive }

// Query returns the QL sent for center.
func (l *Live) Query(center model.Coordinate) string {
	return overpass.AroundQuery{
		Lat:      center.Lat,
		Lon:      center.Lng,
		RadiusM:  l.radiusM,
		Tags:     overpass.KindnessTags,
		TimeoutS: l.timeoutS,
	}.Build()
}

// Fetch implements Source.
func (l *Live) Fetch(ctx context.Context, center model.Coordinate) ([]model.Spot, error) {
	resp, err := l.client.Query(ctx, l.Query(center))
	if err != nil {
		return nil, eris.Wrap(err, "spotsource: live query")
	}

	spots := make([]model.Spot, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		spots = append(spots, elementToSpot(el))
	}

	zap.L().Debug("spotsource: live query complete",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Int("elements", len(resp.Elements)),
	)
	return spots, nil
}

func elementToSpot(el overpass.Element) model.Spot {
	cat, raw := classify.FromTags(el.Tags)
	spot := model.Spot{
		Name:        el.Tags["name"],
		Description: el.Tags["description"],
		RawCategory: raw,
		Category:    cat,
		Address:     formatAddress(el.Tags),
		Phone:       firstTag(el.Tags, "phone", "contact:phone"),
		Source:      model.SourceOverpass,
		SourceID:    el.Type + "/" + strconv.FormatInt(el.ID, 10),
	}
	if lat, lon, ok := el.Position(); ok {
		spot.Coordinate = &model.Coordinate{Lat: lat, Lng: lon}
	}
	return spot
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}

// formatAddress joins addr:* tags as "12 High Street, London, SW1A 1AA".
func formatAddress(tags map[string]string) string {
	if full := strings.TrimSpace(tags["addr:full"]); full != "" {
		return full
	}
	street := strings.TrimSpace(strings.Join(nonEmpty(tags["addr:housenumber"], tags["addr:street"]), " "))
	parts := nonEmpty(street, tags["addr:city"], tags["addr:postcode"])
	return strings.Join(parts, ", ")
}

func nonEmpty(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
