package render

import (
	"strconv"

	"github.com/paulmach/orb/maptile"

	"github.com/sells-group/kindness-map/internal/model"
)

const maxClusterZoom = 22

// Cluster is a group of markers sharing a grid cell. Single-member cells
// carry the marker itself.
type Cluster struct {
	ID        string           `json:"id"`
	Center    model.Coordinate `json:"center"`
	Count     int              `json:"count"`
	MarkerIDs []string         `json:"marker_ids"`
	Marker    *Marker          `json:"marker,omitempty"`
}

// ClusterGroup wraps a layer and groups its markers by web-mercator tile.
type ClusterGroup struct {
	layer  *Layer
	offset int
}

// NewClusterGroup wraps layer. Markers are grouped at zoom+offset, so a
// larger offset produces smaller cells.
func NewClusterGroup(layer *Layer, offset int) *ClusterGroup {
	return &ClusterGroup{layer: layer, offset: offset}
}

// Layer returns the wrapped layer.
func (g *ClusterGroup) Layer() *Layer { return g.layer }

// Clusters groups the layer's markers for the given map zoom.
func (g *ClusterGroup) Clusters(zoom int) []Cluster {
	return ClusterMarkers(g.layer.Markers(), zoom, g.offset)
}

// ClusterMarkers groups markers by tile at zoom+offset. Clusters are returned
// in order of first appearance.
func ClusterMarkers(markers []Marker, zoom, offset int) []Cluster {
	z := zoom + offset
	if z < 0 {
		z = 0
	}
	if z > maxClusterZoom {
		z = maxClusterZoom
	}

	type cell struct {
		tile    maptile.Tile
		members []Marker
	}
	var cells []*cell
	byTile := make(map[maptile.Tile]*cell)
	for _, m := range markers {
		t := maptile.At(m.Position.Point(), maptile.Zoom(z))
		c, ok := byTile[t]
		if !ok {
			c = &cell{tile: t}
			byTile[t] = c
			cells = append(cells, c)
		}
		c.members = append(c.members, m)
	}

	out := make([]Cluster, 0, len(cells))
	for _, c := range cells {
		cl := Cluster{
			ID:        clusterID(c.tile),
			Count:     len(c.members),
			MarkerIDs: make([]string, 0, len(c.members)),
		}
		var lat, lng float64
		for _, m := range c.members {
			lat += m.Position.Lat
			lng += m.Position.Lng
			cl.MarkerIDs = append(cl.MarkerIDs, m.ID)
		}
		n := float64(len(c.members))
		cl.Center = model.Coordinate{Lat: lat / n, Lng: lng / n}
		if len(c.members) == 1 {
			m := c.members[0]
			cl.Marker = &m
		}
		out = append(out, cl)
	}
	return out
}

func clusterID(t maptile.Tile) string {
	return "cluster:" + strconv.Itoa(int(t.Z)) + "/" + strconv.Itoa(int(t.X)) + "/" + strconv.Itoa(int(t.Y))
}
