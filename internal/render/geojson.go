package render

import (
	"github.com/paulmach/orb/geojson"

	"github.com/sells-group/kindness-map/internal/model"
)

// FeatureCollection encodes markers as GeoJSON point features.
func FeatureCollection(markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		fc.Append(markerFeature(m))
	}
	return fc
}

// ClusterFeatureCollection encodes clusters. Single-member clusters are
// encoded as their marker.
func ClusterFeatureCollection(clusters []Cluster) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range clusters {
		if c.Marker != nil {
			fc.Append(markerFeature(*c.Marker))
			continue
		}
		f := geojson.NewFeature(c.Center.Point())
		f.ID = c.ID
		f.Properties["id"] = c.ID
		f.Properties["cluster"] = true
		f.Properties["count"] = c.Count
		f.Properties["marker_ids"] = c.MarkerIDs
		fc.Append(f)
	}
	return fc
}

// AppendUserLocation adds the "You are here" feature.
func AppendUserLocation(fc *geojson.FeatureCollection, c model.Coordinate) {
	f := geojson.NewFeature(c.Point())
	f.ID = "user"
	f.Properties["id"] = "user"
	f.Properties["user"] = true
	f.Properties["popup"] = UserLocationPopup
	fc.Append(f)
}

func markerFeature(m Marker) *geojson.Feature {
	f := geojson.NewFeature(m.Position.Point())
	f.ID = m.ID
	f.Properties["id"] = m.ID
	f.Properties["name"] = m.Spot.Name
	f.Properties["category"] = string(m.Category)
	f.Properties["label"] = m.Label
	f.Properties["icon"] = m.Icon.ID
	if m.Icon.URL != "" {
		f.Properties["icon_url"] = m.Icon.URL
	}
	if m.Icon.Glyph != "" {
		f.Properties["glyph"] = m.Icon.Glyph
	}
	f.Properties["popup"] = m.Popup
	return f
}
