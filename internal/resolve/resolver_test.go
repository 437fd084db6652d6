package resolve

import (
	"testing"

	"pilemap/internal/domain"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		id      string
		columns int
		want    domain.Cell
	}{
		{"P-101", 10, domain.Cell{Row: 1, Col: 1}},
		{"P-312", 10, domain.Cell{Row: 3, Col: 12}},
		{"P-7", 10, domain.Cell{Row: 7, Col: 1}},
		{"P-045", 10, domain.Cell{Row: 1, Col: 45}},
		{"P5-02", 10, domain.Cell{Row: 5, Col: 2}},
		{"B-4", 10, domain.Cell{Row: 1, Col: 4}},
		{"P12-x", 10, domain.Cell{Row: 12, Col: 1}},
		{"P-10A", 10, domain.Cell{Row: 1, Col: 10}},
		{"42", 10, domain.Cell{Row: 5, Col: 3}},
		{"PILE 7", 10, domain.Cell{Row: 1, Col: 8}},
		{"X", 10, domain.Cell{Row: 1, Col: 1}},
		{"", 10, domain.Cell{Row: 1, Col: 1}},
		{"   ", 10, domain.Cell{Row: 1, Col: 1}},
		{"23", 0, domain.Cell{Row: 24, Col: 1}},
	}
	for _, tt := range tests {
		if got := ParseCell(tt.id, tt.columns); got != tt.want {
			t.Errorf("ParseCell(%q, %d) = %+v, want %+v", tt.id, tt.columns, got, tt.want)
		}
	}
}

func TestLookupResolver(t *testing.T) {
	reg := NewRegistry(SimulatedPositions())
	r := LookupResolver{Registry: reg}

	got, ok := r.Resolve("P-102")
	if !ok {
		t.Fatal("expected P-102 to resolve")
	}
	if !got.Explicit || got.Pixel != (domain.Position{X: 300, Y: 250}) {
		t.Fatalf("unexpected target: %+v", got)
	}

	if _, ok := r.Resolve("P-999"); ok {
		t.Fatal("unregistered id must not resolve")
	}
	if _, ok := r.Resolve(""); ok {
		t.Fatal("empty id must not resolve")
	}
}

func TestGridResolverPrefersRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Set("P-205", domain.Position{X: 12, Y: 34})
	r := GridResolver{Columns: 10, Registry: reg}

	got, ok := r.Resolve("P-205")
	if !ok || !got.Explicit || got.Pixel.X != 12 {
		t.Fatalf("expected manual mapping to win, got %+v ok=%v", got, ok)
	}

	got, ok = r.Resolve("P-206")
	if !ok || got.Explicit {
		t.Fatalf("expected grid target, got %+v ok=%v", got, ok)
	}
	if got.Cell != (domain.Cell{Row: 2, Col: 6}) {
		t.Fatalf("unexpected cell: %+v", got.Cell)
	}
}

func TestNew(t *testing.T) {
	reg := NewRegistry(nil)
	if r, err := New("lookup", 10, reg); err != nil {
		t.Fatalf("New(lookup): %v", err)
	} else if _, ok := r.(LookupResolver); !ok {
		t.Fatalf("New(lookup) = %T", r)
	}
	if r, err := New("grid", 10, reg); err != nil {
		t.Fatalf("New(grid): %v", err)
	} else if g, ok := r.(GridResolver); !ok || g.Columns != 10 {
		t.Fatalf("New(grid) = %#v", r)
	}
	if _, err := New("ocr", 10, reg); err == nil {
		t.Fatal("expected error for unknown resolver")
	}
}

func TestLeadingIntCapsLongDigitRuns(t *testing.T) {
	n, ok := leadingInt("99999999999999999999")
	if !ok || n != 999999999 {
		t.Fatalf("leadingInt = %d, %v; want 999999999, true", n, ok)
	}
	cell := ParseCell("P1-99999999999999999999", 10)
	if cell.Row != 1 || cell.Col != 999999999 {
		t.Fatalf("unexpected cell %+v", cell)
	}
}
