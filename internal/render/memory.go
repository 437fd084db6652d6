package render

import (
	"sync"

	"pilemap/internal/summary"
)

// MemorySurface keeps the rendered markers in memory. It backs the JSON API.
type MemorySurface struct {
	mu      sync.Mutex
	markers []Marker
	summary summary.Summary
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

func (m *MemorySurface) Clear() error {
	m.mu.Lock()
	m.markers = nil
	m.mu.Unlock()
	return nil
}

func (m *MemorySurface) AddMarker(mk Marker) error {
	m.mu.Lock()
	m.markers = append(m.markers, mk)
	m.mu.Unlock()
	return nil
}

func (m *MemorySurface) SetSummary(s summary.Summary) error {
	m.mu.Lock()
	m.summary = s
	m.mu.Unlock()
	return nil
}

func (m *MemorySurface) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, len(m.markers))
	copy(out, m.markers)
	return out
}

func (m *MemorySurface) Summary() summary.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}
