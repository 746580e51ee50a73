package render

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kindness-map/internal/classify"
	"github.com/sells-group/kindness-map/internal/model"
)

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Lat: lat, Lng: lng}
}

func classifyAll(t *testing.T, spots []model.Spot) []classify.Classified {
	t.Helper()
	set, err := classify.LookupIconSet("color")
	require.NoError(t, err)
	return classify.New(set, classify.UnknownDefault).Classify(spots)
}

func TestRender_TestKitchen(t *testing.T) {
	spots := []model.Spot{{
		Name:        "Test Kitchen",
		RawCategory: "food_bank",
		Coordinate:  coord(51.5, -0.1),
		Source:      model.SourceStatic,
		SourceID:    "0",
	}}

	markers := NewRenderer().Render(classifyAll(t, spots))
	require.Len(t, markers, 1)

	m := markers[0]
	assert.Equal(t, model.Coordinate{Lat: 51.5, Lng: -0.1}, m.Position)
	assert.Contains(t, m.Popup, "Test Kitchen")
	assert.Contains(t, m.Popup, "Type: Food Bank")
	assert.Equal(t, classify.IconFood, m.Icon.ID)
	assert.Equal(t, "static:0", m.ID)
}

func TestRender_OneMarkerPerCoordinate(t *testing.T) {
	spots := []model.Spot{
		{Name: "a", Category: model.CategoryShelter, Coordinate: coord(51.5, -0.1)},
		{Name: "b", Category: model.CategoryShelter},
		{Name: "c", Category: model.CategoryCharity, Coordinate: coord(51.6, -0.2)},
		{Name: "d", Category: model.CategoryCharity, Coordinate: coord(95, 0)},
	}
	markers := NewRenderer().Render(classifyAll(t, spots))
	require.Len(t, markers, 2)
	assert.Equal(t, "a", markers[0].Spot.Name)
	assert.Equal(t, "c", markers[1].Spot.Name)
	assert.NotEqual(t, markers[0].ID, markers[1].ID)
}

func TestRender_IconByCategory(t *testing.T) {
	spots := []model.Spot{
		{RawCategory: "food_bank", Coordinate: coord(1, 1)},
		{RawCategory: "shelter", Coordinate: coord(1, 1)},
		{Category: model.CategoryCharity, RawCategory: "shop=charity", Coordinate: coord(1, 1)},
		{RawCategory: "library", Coordinate: coord(1, 1)},
	}
	markers := NewRenderer().Render(classifyAll(t, spots))
	require.Len(t, markers, 4)
	assert.Equal(t, classify.IconFood, markers[0].Icon.ID)
	assert.Equal(t, classify.IconShelter, markers[1].Icon.ID)
	assert.Equal(t, classify.IconCharity, markers[2].Icon.ID)
	assert.Equal(t, classify.IconDefault, markers[3].Icon.ID)
}

func TestPopup_Placeholders(t *testing.T) {
	p := Popup(model.Spot{}, "Shelter")
	assert.Contains(t, p, UnnamedPlaceholder)
	assert.Contains(t, p, NoDescriptionText)
	assert.Contains(t, p, "Type: Shelter")
	assert.Contains(t, p, "<strong>Address:</strong> Not available")
	assert.Contains(t, p, "<strong>Phone:</strong> Not available")
	assert.NotContains(t, p, "undefined")

	p = Popup(model.Spot{Name: "x", Address: "undefined", Phone: "  "}, "")
	assert.NotContains(t, p, "undefined")
	assert.Contains(t, p, "Type: Other")
}

func TestPopup_AllFields(t *testing.T) {
	p := Popup(model.Spot{
		Name:        "Test Kitchen",
		Description: "Hot meals daily",
		Address:     "1 Test St",
		Phone:       "020 0000",
	}, "Food Bank")
	want := "<strong>Test Kitchen</strong><br>Hot meals daily<br><em>Type: Food Bank</em><br>" +
		"<strong>Address:</strong> 1 Test St<br><strong>Phone:</strong> 020 0000"
	assert.Equal(t, want, p)
}

func TestPopup_EscapesHTML(t *testing.T) {
	p := Popup(model.Spot{Name: `<script>alert("x")</script>`, Description: "Tom & Jerry"}, "Food Bank")
	assert.NotContains(t, p, "<script>")
	assert.Contains(t, p, "&lt;script&gt;")
	assert.Contains(t, p, "Tom &amp; Jerry")
}

func TestLayer_ReplaceClearsPrevious(t *testing.T) {
	l := NewLayer()
	l.Replace([]Marker{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, 2, l.Len())

	l.Replace([]Marker{{ID: "c"}})
	got := l.Markers()
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestLayer_MarkersIsCopy(t *testing.T) {
	in := []Marker{{ID: "a"}}
	l := NewLayer()
	l.Replace(in)
	in[0].ID = "mutated"

	out := l.Markers()
	out[0].ID = "also mutated"
	assert.Equal(t, "a", l.Markers()[0].ID)
}

func TestLayer_ConcurrentAccess(t *testing.T) {
	l := NewLayer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Replace([]Marker{{ID: "x"}, {ID: "y"}})
		}()
		go func() {
			defer wg.Done()
			n := len(l.Markers())
			assert.True(t, n == 0 || n == 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, l.Len())
}

func TestClusterGroup_Clusters(t *testing.T) {
	l := NewLayer()
	l.Replace([]Marker{
		{ID: "a", Position: model.Coordinate{Lat: 51.5000, Lng: -0.1000}},
		{ID: "b", Position: model.Coordinate{Lat: 51.5001, Lng: -0.1001}},
		{ID: "c", Position: model.Coordinate{Lat: 48.8566, Lng: 2.3522}},
	})
	g := NewClusterGroup(l, 2)
	assert.Same(t, l, g.Layer())

	clusters := g.Clusters(8)
	require.Len(t, clusters, 2)

	assert.Equal(t, 2, clusters[0].Count)
	assert.Equal(t, []string{"a", "b"}, clusters[0].MarkerIDs)
	assert.Nil(t, clusters[0].Marker)
	assert.InDelta(t, 51.50005, clusters[0].Center.Lat, 1e-9)
	assert.True(t, strings.HasPrefix(clusters[0].ID, "cluster:10/"))

	assert.Equal(t, 1, clusters[1].Count)
	require.NotNil(t, clusters[1].Marker)
	assert.Equal(t, "c", clusters[1].Marker.ID)
}

func TestClusterGroup_HighZoomSeparates(t *testing.T) {
	l := NewLayer()
	l.Replace([]Marker{
		{ID: "a", Position: model.Coordinate{Lat: 51.50, Lng: -0.10}},
		{ID: "b", Position: model.Coordinate{Lat: 51.51, Lng: -0.12}},
	})
	g := NewClusterGroup(l, 2)
	assert.Len(t, g.Clusters(0), 1)
	assert.Len(t, g.Clusters(18), 2)
	assert.Len(t, g.Clusters(40), 2, "zoom is clamped")
	assert.Len(t, NewClusterGroup(l, -10).Clusters(0), 1)
}

func TestClusterMarkers_UsesGivenSnapshot(t *testing.T) {
	snapshot := []Marker{
		{ID: "a", Position: model.Coordinate{Lat: 51.5000, Lng: -0.1000}},
		{ID: "b", Position: model.Coordinate{Lat: 51.5001, Lng: -0.1001}},
	}
	l := NewLayer()
	l.Replace(snapshot)
	g := NewClusterGroup(l, 2)

	l.Replace([]Marker{{ID: "z", Position: model.Coordinate{Lat: 48.8566, Lng: 2.3522}}})

	clusters := ClusterMarkers(snapshot, 8, 2)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"a", "b"}, clusters[0].MarkerIDs)

	fromLayer := g.Clusters(8)
	require.Len(t, fromLayer, 1)
	assert.Equal(t, []string{"z"}, fromLayer[0].MarkerIDs)
}

func TestFeatureCollection(t *testing.T) {
	markers := NewRenderer().Render(classifyAll(t, []model.Spot{{
		Name: "Test Kitchen", RawCategory: "food_bank", Coordinate: coord(51.5, -0.1),
		Source: model.SourceStatic, SourceID: "0",
	}}))
	fc := FeatureCollection(markers)
	AppendUserLocation(fc, model.Coordinate{Lat: 51.4, Lng: -0.2})

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 2)

	f := decoded.Features[0]
	assert.Equal(t, []float64{-0.1, 51.5}, f.Geometry.Coordinates)
	assert.Equal(t, "static:0", f.Properties["id"])
	assert.Equal(t, "food_bank", f.Properties["category"])
	assert.Equal(t, "food", f.Properties["icon"])
	assert.Contains(t, f.Properties["icon_url"], "green")
	assert.Contains(t, f.Properties["popup"], "Type: Food Bank")

	assert.Equal(t, true, decoded.Features[1].Properties["user"])
	assert.Equal(t, UserLocationPopup, decoded.Features[1].Properties["popup"])
}

func TestClusterFeatureCollection(t *testing.T) {
	fc := ClusterFeatureCollection([]Cluster{
		{ID: "cluster:10/1/2", Center: model.Coordinate{Lat: 1, Lng: 2}, Count: 3, MarkerIDs: []string{"a", "b", "c"}},
		{ID: "cluster:10/5/5", Count: 1, Marker: &Marker{ID: "d", Position: model.Coordinate{Lat: 3, Lng: 4}}},
	})
	require.Len(t, fc.Features, 2)
	assert.Equal(t, true, fc.Features[0].Properties["cluster"])
	assert.Equal(t, 3, fc.Features[0].Properties["count"])
	assert.Equal(t, "d", fc.Features[1].Properties["id"])
	assert.Nil(t, fc.Features[1].Properties["cluster"])
}
