// Package model defines the spot and coordinate types shared by the pipeline.
package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the coordinate as an orb.Point (lng, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Valid reports whether the coordinate is finite and within WGS84 bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// FromPoint converts an orb.Point back to a Coordinate.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// Category is the normalized kind of a spot.
type Category string

// Spot categories.
const (
	CategoryFoodBank Category = "food_bank"
	CategoryShelter  Category = "shelter"
	CategoryCharity  Category = "charity"
	CategoryOther    Category = "other"
)

// Spot sources.
const (
	SourceStatic   = "static"
	SourceOverpass = "overpass"
)

// Spot is a charitable resource to be plotted on the map.
type Spot struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	RawCategory string   `json:"raw_category,omitempty"`
	Category    Category `json:"category"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	// Coordinate is nil when the source record had no usable location.
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Source     string      `json:"source"`
	SourceID   string      `json:"source_id,omitempty"`
}

// HasCoordinate reports whether the spot can be placed on the map.
func (s Spot) HasCoordinate() bool {
	return s.Coordinate != nil && s.Coordinate.Valid()
}
