package domain

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		status string
		want   StatusCategory
	}{
		{"Complete", StatusCompleted},
		{"completed", StatusCompleted},
		{"INCOMPLETE", StatusCompleted},
		{"Ongoing", StatusOngoing},
		{"ongo", StatusOngoing},
		{"pending", StatusPending},
		{"", StatusPending},
		{"on hold", StatusPending},
	}
	for _, tt := range tests {
		if got := Categorize(tt.status); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestMarkerLabel(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"P-101", "101"},
		{"P5-02", "02"},
		{"A-B-7", "7"},
		{"42", "42"},
		{"", "?"},
		{"  ", "?"},
		{"P-", "?"},
	}
	for _, tt := range tests {
		if got := MarkerLabel(tt.id); got != tt.want {
			t.Errorf("MarkerLabel(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
