package board

import (
	"context"
	"errors"
	"math"
	"testing"

	"pilemap/internal/domain"
	"pilemap/internal/layout"
	"pilemap/internal/render"
	"pilemap/internal/resolve"
	"pilemap/internal/summary"
)

type fakeSource struct {
	records []domain.PileRecord
	calls   int
}

func (f *fakeSource) Load(context.Context) []domain.PileRecord {
	f.calls++
	return f.records
}

var testGrid = layout.Grid{Columns: 10, MarginX: 0.1, MarginY: 0.1}

func newGridBoard(src RecordSource) *Board {
	reg := resolve.NewRegistry(nil)
	return New(src, resolve.GridResolver{Columns: 10, Registry: reg}, reg, testGrid)
}

func newLookupBoard(src RecordSource) *Board {
	reg := resolve.NewRegistry(resolve.SimulatedPositions())
	return New(src, resolve.LookupResolver{Registry: reg}, reg, testGrid)
}

func TestRefreshAndRenderGrid(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{
		{ID: "P-101", Status: "complete"},
		{ID: "P5-02", Status: "ongoing"},
		{ID: "", Status: "pending"},
	}}
	b := newGridBoard(src)

	sum := b.Refresh(context.Background())
	if sum.Total != 3 || sum.Completed != 1 || sum.Ongoing != 1 || sum.Pending != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	s := render.NewMemorySurface()
	if err := b.Render(s, 1000, 500); err != nil {
		t.Fatalf("Render: %v", err)
	}
	markers := s.Markers()
	if len(markers) != 3 {
		t.Fatalf("grid mode must place every record, got %d", len(markers))
	}
	// one row: cellW 80, cellH 400
	if math.Abs(markers[0].X-140) > 1e-9 || math.Abs(markers[0].Y-250) > 1e-9 {
		t.Fatalf("P-101 at (%f, %f), want (140, 250)", markers[0].X, markers[0].Y)
	}
	if markers[2].X != markers[0].X || markers[2].Y != markers[0].Y || markers[2].Label != "?" {
		t.Fatalf("empty id should share cell 1,1: %+v", markers[2])
	}
	if s.Summary() != sum {
		t.Fatalf("surface summary %+v, want %+v", s.Summary(), sum)
	}
}

func TestRenderLookupDropsUnknownIDs(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{
		{ID: "P-101", Status: "complete"},
		{ID: "P-999", Status: "ongoing"},
		{ID: "P-103", Status: "pending"},
	}}
	b := newLookupBoard(src)
	b.Refresh(context.Background())

	s := render.NewMemorySurface()
	if err := b.Render(s, 1000, 500); err != nil {
		t.Fatalf("Render: %v", err)
	}
	markers := s.Markers()
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[1].ID != "P-103" || markers[1].X != 450 || markers[1].Y != 180 {
		t.Fatalf("unexpected P-103 marker %+v", markers[1])
	}
	if s.Summary().Total != 3 {
		t.Fatalf("summary must count dropped records too, got %+v", s.Summary())
	}
}

func TestMapPositionTriggersPlacement(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{{ID: "P-999", Status: "ongoing"}}}
	b := newLookupBoard(src)
	b.Refresh(context.Background())

	if got := b.Place(1000, 500); len(got) != 0 {
		t.Fatalf("expected no placements before mapping, got %d", len(got))
	}
	if err := b.MapPosition(" P-999 ", domain.Position{X: 77, Y: 88}); err != nil {
		t.Fatalf("MapPosition: %v", err)
	}
	got := b.Place(1000, 500)
	if len(got) != 1 || got[0].Position != (domain.Position{X: 77, Y: 88}) {
		t.Fatalf("unexpected placements after mapping: %+v", got)
	}

	if err := b.MapPosition("  ", domain.Position{}); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestSearchTargetsFirstMarker(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{
		{ID: "P-101", Status: "complete"},
		{ID: "P-102", Status: "ongoing"},
	}}
	b := newGridBoard(src)
	b.Refresh(context.Background())

	if _, ok := b.Search("  ", 1000, 500); ok {
		t.Fatal("empty query should not select a marker")
	}
	m, ok := b.Search("P-102", 1000, 500)
	if !ok {
		t.Fatal("expected a marker")
	}
	if m.ID != "P-101" {
		t.Fatalf("search selects the first marker, got %q", m.ID)
	}
}

func TestRefreshWithEmptySource(t *testing.T) {
	b := newGridBoard(&fakeSource{})
	sum := b.Refresh(context.Background())
	if sum != (summary.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
	if b.Records() == nil {
		t.Fatal("records should be empty, not nil")
	}

	s := render.NewMemorySurface()
	if err := b.Render(s, 1000, 500); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(s.Markers()) != 0 {
		t.Fatalf("expected no markers, got %d", len(s.Markers()))
	}
	if _, ok := b.Search("P-1", 1000, 500); ok {
		t.Fatal("search on an empty board should find nothing")
	}
}

func TestRenderRecomputesOnResize(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{{ID: "P-205", Status: "ongoing"}}}
	b := newGridBoard(src)
	b.Refresh(context.Background())

	small := b.Place(500, 250)[0].Position
	large := b.Place(1000, 500)[0].Position
	if math.Abs(large.X-2*small.X) > 1e-9 || math.Abs(large.Y-2*small.Y) > 1e-9 {
		t.Fatalf("positions did not follow container size: %+v vs %+v", small, large)
	}
}

func TestStateIsCopied(t *testing.T) {
	src := &fakeSource{records: []domain.PileRecord{{ID: "P-1"}}}
	b := newGridBoard(src)
	b.Refresh(context.Background())

	st := b.State()
	st.Records[0].ID = "mutated"
	if b.Records()[0].ID != "P-1" {
		t.Fatal("State must not expose internal slice")
	}
	if st.FetchedAt.IsZero() {
		t.Fatal("FetchedAt should be set after refresh")
	}
}
