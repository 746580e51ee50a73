// Package view owns the per-viewer camera and marker layer and runs the
// fetch, classify and render pipeline on every location change.
package view

import (
	"context"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/internal/render"
	"github.com/sells-group/kindness-map/internal/spotsource"
)

// Pipeline fetches spots near a coordinate and renders them as markers.
type Pipeline struct {
	Source     spotsource.Source
	Classifier *classify.Classifier
	Renderer   *render.Renderer
}

// NewPipeline creates a Pipeline.
func NewPipeline(src spotsource.Source, cl *classify.Classifier, r *render.Renderer) *Pipeline {
	return &Pipeline{Source: src, Classifier: cl, Renderer: r}
}

// Markers fetches, classifies and renders in one pass.
func (p *Pipeline) Markers(ctx context.Context, center model.Coordinate) ([]render.Marker, error) {
	spots, err := p.Source.Fetch(ctx, center)
	if err != nil {
		return nil, err
	}
	return p.Renderer.Render(p.Classifier.Classify(spots)), nil
}
