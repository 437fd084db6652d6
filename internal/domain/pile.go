package domain

import "strings"

type PileRecord struct {
	ID     string
	Status string // lowercased raw status text, "pending" when the sheet cell is empty
	Notes  string
}

// Position is a pixel offset relative to the drawing container.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Cell is a 1-based grid slot, prior to pixel conversion.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type StatusCategory string

const (
	StatusCompleted StatusCategory = "completed"
	StatusOngoing   StatusCategory = "ongoing"
	StatusPending   StatusCategory = "pending"
)

const DefaultStatus = "pending"

// Categorize buckets free-text status by substring. Anything unrecognized,
// including an empty status, is pending.
func Categorize(status string) StatusCategory {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "complete"):
		return StatusCompleted
	case strings.Contains(s, "ongo"):
		return StatusOngoing
	default:
		return StatusPending
	}
}

func (r PileRecord) Category() StatusCategory {
	return Categorize(r.Status)
}

// MarkerLabel is the short text shown on a marker: the last hyphen-delimited
// segment of the identifier.
func MarkerLabel(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "?"
	}
	parts := strings.Split(id, "-")
	last := parts[len(parts)-1]
	if last == "" {
		return "?"
	}
	return last
}
