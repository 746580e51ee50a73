package spotsource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kindness-map/internal/fetcher"
	"github.com/sells-group/kindness-map/internal/model"
)

var london = model.Coordinate{Lat: 51.5074, Lng: -0.1278}

const sampleDocument = `{
	"kindnessSpots": [
		{"name": "Test Kitchen", "description": "Hot meals", "type": "food_bank",
		 "address": "1 Test St", "phone": "020 0000", "location": {"lat": 51.5, "lng": -0.1}},
		{"name": "Night Shelter", "type": "Shelter", "location": {"lat": 51.52, "lng": -0.13}},
		{"name": "Nowhere", "type": "charity"},
		{"name": "Half", "type": "charity", "location": {"lat": 51.5}},
		{"name": "Paris Pantry", "type": "food bank", "location": {"lat": 48.8566, "lng": 2.3522}}
	]
}`

type memFetcher struct {
	body string
	err  error
}

func (m memFetcher) Download(context.Context, string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.body)), nil
}

func TestStatic_Fetch(t *testing.T) {
	s := NewStatic(memFetcher{body: sampleDocument}, "kindnessSpots.json", 0)
	assert.Equal(t, "static", s.Name())

	spots, err := s.Fetch(context.Background(), london)
	require.NoError(t, err)
	require.Len(t, spots, 5)

	first := spots[0]
	assert.Equal(t, "Test Kitchen", first.Name)
	assert.Equal(t, model.CategoryFoodBank, first.Category)
	assert.Equal(t, "food_bank", first.RawCategory)
	assert.Equal(t, "1 Test St", first.Address)
	assert.Equal(t, model.SourceStatic, first.Source)
	require.NotNil(t, first.Coordinate)
	assert.Equal(t, model.Coordinate{Lat: 51.5, Lng: -0.1}, *first.Coordinate)

	assert.Equal(t, model.CategoryShelter, spots[1].Category)
	assert.Nil(t, spots[2].Coordinate, "missing location")
	assert.Nil(t, spots[3].Coordinate, "missing lng")
	assert.Equal(t, model.CategoryFoodBank, spots[4].Category)
}

func TestStatic_RadiusFilter(t *testing.T) {
	s := NewStatic(memFetcher{body: sampleDocument}, "kindnessSpots.json", 50000)

	spots, err := s.Fetch(context.Background(), london)
	require.NoError(t, err)

	var names []string
	for _, sp := range spots {
		names = append(names, sp.Name)
	}
	assert.NotContains(t, names, "Paris Pantry")
	assert.Contains(t, names, "Test Kitchen")
	assert.Contains(t, names, "Nowhere", "coordinate-less records are left for the renderer to drop")
}

func TestStatic_YAMLDocument(t *testing.T) {
	doc := `
kindnessSpots:
  - name: Test Kitchen
    type: Food Bank
    location:
      lat: 51.5
      lng: -0.1
`
	s := NewStatic(memFetcher{body: doc}, "spots.yaml", 0)
	spots, err := s.Fetch(context.Background(), london)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, model.CategoryFoodBank, spots[0].Category)
	assert.True(t, spots[0].HasCoordinate())
}

func TestStatic_Errors(t *testing.T) {
	_, err := NewStatic(memFetcher{err: assert.AnError}, "x.json", 0).Fetch(context.Background(), london)
	assert.Error(t, err)

	_, err = NewStatic(memFetcher{body: "{not json"}, "x.json", 0).Fetch(context.Background(), london)
	assert.Error(t, err)
}

func TestStatic_EmptyDocument(t *testing.T) {
	spots, err := NewStatic(memFetcher{body: `{}`}, "x.json", 0).Fetch(context.Background(), london)
	require.NoError(t, err)
	assert.Empty(t, spots)
}

func TestStatic_OverHTTPAndFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, sampleDocument)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "kindnessSpots.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	router := &fetcher.Router{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
		File: &fetcher.FileFetcher{},
	}
	for _, loc := range []string{srv.URL + "/kindnessSpots.json", path} {
		spots, err := NewStatic(router, loc, 0).Fetch(context.Background(), london)
		require.NoError(t, err, loc)
		assert.Len(t, spots, 5, loc)
	}
}
