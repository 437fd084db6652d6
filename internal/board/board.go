package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"pilemap/internal/domain"
	"pilemap/internal/layout"
	"pilemap/internal/render"
	"pilemap/internal/resolve"
	"pilemap/internal/summary"
)

var ErrEmptyID = errors.New("pile id is required")

// RecordSource supplies the current pile records. Failures are the
// source's business; it returns an empty slice instead.
type RecordSource interface {
	Load(ctx context.Context) []domain.PileRecord
}

// State is everything one fetch produced.
type State struct {
	Records   []domain.PileRecord
	FetchedAt time.Time
}

// Board owns the application state and runs fetch → resolve → layout →
// render. Refreshes are not serialized: overlapping refreshes each replace
// the state when they finish, last one wins.
type Board struct {
	source   RecordSource
	resolver resolve.Resolver
	registry *resolve.Registry
	grid     layout.Grid

	mu    sync.RWMutex
	state State
}

func New(source RecordSource, resolver resolve.Resolver, registry *resolve.Registry, grid layout.Grid) *Board {
	return &Board{
		source:   source,
		resolver: resolver,
		registry: registry,
		grid:     grid,
		state:    State{Records: []domain.PileRecord{}},
	}
}

// Refresh re-fetches the records and returns the new summary.
func (b *Board) Refresh(ctx context.Context) summary.Summary {
	records := b.source.Load(ctx)
	if records == nil {
		records = []domain.PileRecord{}
	}
	b.mu.Lock()
	b.state = State{Records: records, FetchedAt: time.Now()}
	b.mu.Unlock()

	sum := summary.Aggregate(records)
	log.Printf("Loaded pile data: %s", summary.Format(sum))
	return sum
}

func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	records := make([]domain.PileRecord, len(b.state.Records))
	copy(records, b.state.Records)
	return State{Records: records, FetchedAt: b.state.FetchedAt}
}

func (b *Board) Records() []domain.PileRecord {
	return b.State().Records
}

func (b *Board) Summary() summary.Summary {
	return summary.Aggregate(b.Records())
}

// Place resolves every record for a container of the given size. Records
// without a position are dropped. Grid rows are sized from all records,
// resolved or not.
func (b *Board) Place(width, height float64) []render.Placement {
	return b.place(b.Records(), width, height)
}

func (b *Board) place(records []domain.PileRecord, width, height float64) []render.Placement {
	placements := make([]render.Placement, 0, len(records))
	for _, rec := range records {
		target, ok := b.resolver.Resolve(rec.ID)
		if !ok {
			continue
		}
		pos := target.Pixel
		if !target.Explicit {
			pos = b.grid.Place(width, height, len(records), target.Cell)
		}
		placements = append(placements, render.Placement{Record: rec, Position: pos})
	}
	return placements
}

// Render paints the current state onto s.
func (b *Board) Render(s render.Surface, width, height float64) error {
	records := b.Records()
	placements := b.place(records, width, height)
	if dropped := len(records) - len(placements); dropped > 0 {
		log.Debugf("render skipped %d records without a position", dropped)
	}
	return render.Render(s, placements, summary.Aggregate(records))
}

// MapPosition binds id to a clicked position for the rest of the session.
func (b *Board) MapPosition(id string, pos domain.Position) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	b.registry.Set(id, pos)
	log.Printf("Mapped %s to (%.0f, %.0f)", id, pos.X, pos.Y)
	return nil
}

// Search returns the marker to bring into view for a query. Any non-empty
// query selects the first rendered marker; the query text is not matched
// against identifiers.
func (b *Board) Search(query string, width, height float64) (render.Marker, bool) {
	if strings.TrimSpace(query) == "" {
		return render.Marker{}, false
	}
	placements := b.Place(width, height)
	if len(placements) == 0 {
		return render.Marker{}, false
	}
	return render.NewMarker(placements[0]), true
}

func (b *Board) Registry() *resolve.Registry {
	return b.registry
}
