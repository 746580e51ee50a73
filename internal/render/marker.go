// Package render turns classified spots into map markers with popups and
// keeps the marker layer the widget draws.
package render

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/model"
)

// Marker is one spot placed on the map.
type Marker struct {
	ID       string           `json:"id"`
	Position model.Coordinate `json:"position"`
	Icon     classify.Icon    `json:"icon"`
	Category model.Category   `json:"category"`
	Label    string           `json:"label"`
	Popup    string           `json:"popup"`
	Spot     model.Spot       `json:"-"`
}

// Renderer builds markers from classified spots.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns one marker per spot that has a coordinate. Spots without
// one produce no marker.
func (r *Renderer) Render(classified []classify.Classified) []Marker {
	markers := make([]Marker, 0, len(classified))
	dropped := 0
	for _, c := range classified {
		if !c.Spot.HasCoordinate() {
			dropped++
			continue
		}
		markers = append(markers, Marker{
			ID:       markerID(c.Spot, len(markers)),
			Position: *c.Spot.Coordinate,
			Icon:     c.Icon,
			Category: c.Spot.Category,
			Label:    c.Label,
			Popup:    Popup(c.Spot, c.Label),
			Spot:     c.Spot,
		})
	}
	if dropped > 0 {
		zap.L().Debug("render: dropped spots without coordinates", zap.Int("dropped", dropped))
	}
	return markers
}

func markerID(s model.Spot, index int) string {
	if s.SourceID != "" {
		return s.Source + ":" + s.SourceID
	}
	return s.Source + ":" + strconv.Itoa(index)
}
