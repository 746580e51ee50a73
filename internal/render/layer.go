package render

import "sync"

// Layer holds the markers currently on the map. Every update replaces the
// full set.
type Layer struct {
	mu      sync.RWMutex
	markers []Marker
}

// NewLayer creates an empty layer.
func NewLayer() *Layer {
	return &Layer{}
}

// Clear removes every marker.
func (l *Layer) Clear() {
	l.mu.Lock()
	l.markers = nil
	l.mu.Unlock()
}

// Replace clears the layer and inserts markers.
func (l *Layer) Replace(markers []Marker) {
	cp := make([]Marker, len(markers))
	copy(cp, markers)

	l.mu.Lock()
	l.markers = cp
	l.mu.Unlock()
}

// Markers returns a copy of the current markers.
func (l *Layer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

// Len returns the number of markers.
func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.markers)
}
