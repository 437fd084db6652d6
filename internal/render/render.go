package render

import (
	"fmt"
	"strings"

	"pilemap/internal/domain"
	"pilemap/internal/summary"
)

// Surface is the display the renderer paints onto.
type Surface interface {
	Clear() error
	AddMarker(m Marker) error
	SetSummary(s summary.Summary) error
}

type Marker struct {
	ID       string                `json:"id"`
	Label    string                `json:"label"`
	Status   string                `json:"status"`
	Category domain.StatusCategory `json:"category"`
	Notes    string                `json:"notes"`
	X        float64               `json:"x"`
	Y        float64               `json:"y"`
}

// Placement pairs a record with its resolved pixel position.
type Placement struct {
	Record   domain.PileRecord
	Position domain.Position
}

func NewMarker(p Placement) Marker {
	return Marker{
		ID:       p.Record.ID,
		Label:    domain.MarkerLabel(p.Record.ID),
		Status:   p.Record.Status,
		Category: p.Record.Category(),
		Notes:    p.Record.Notes,
		X:        p.Position.X,
		Y:        p.Position.Y,
	}
}

func (m Marker) Class() string {
	return "pile-highlight status-" + string(m.Category)
}

// Tooltip is the detail panel text shown on hover.
func (m Marker) Tooltip() string {
	id := m.ID
	if id == "" {
		id = "(no id)"
	}
	lines := []string{id, "Status: " + m.Status}
	if strings.TrimSpace(m.Notes) != "" {
		lines = append(lines, m.Notes)
	}
	return strings.Join(lines, "\n")
}

// Render replaces everything on the surface with one marker per placement,
// then the summary. Repeated calls with the same input leave an equivalent
// surface.
func Render(s Surface, placements []Placement, sum summary.Summary) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("clearing markers: %w", err)
	}
	for _, p := range placements {
		if err := s.AddMarker(NewMarker(p)); err != nil {
			return fmt.Errorf("adding marker %q: %w", p.Record.ID, err)
		}
	}
	if err := s.SetSummary(sum); err != nil {
		return fmt.Errorf("setting summary: %w", err)
	}
	return nil
}
