package summary

import (
	"fmt"
	"math"

	"pilemap/internal/domain"
)

type Summary struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Ongoing      int `json:"ongoing"`
	Pending      int `json:"pending"`
	CompletedPct int `json:"completed_pct"`
	OngoingPct   int `json:"ongoing_pct"`
	PendingPct   int `json:"pending_pct"`
}

// Aggregate counts records per status category. Percentages are rounded to
// the nearest integer and are all 0 for an empty input.
func Aggregate(records []domain.PileRecord) Summary {
	var s Summary
	for _, r := range records {
		switch r.Category() {
		case domain.StatusCompleted:
			s.Completed++
		case domain.StatusOngoing:
			s.Ongoing++
		default:
			s.Pending++
		}
	}
	s.Total = len(records)
	s.CompletedPct = Percent(s.Completed, s.Total)
	s.OngoingPct = Percent(s.Ongoing, s.Total)
	s.PendingPct = Percent(s.Pending, s.Total)
	return s
}

// Percent is count as a rounded share of total, 0 when total is 0.
func Percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}

func Format(s Summary) string {
	return fmt.Sprintf("%d piles: %d completed (%d%%), %d ongoing (%d%%), %d pending (%d%%)",
		s.Total, s.Completed, s.CompletedPct, s.Ongoing, s.OngoingPct, s.Pending, s.PendingPct)
}
