package resolve

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"pilemap/internal/domain"
)

// Registry maps pile identifiers to pixel positions. Static entries come
// from a positions file (or the simulated table); manual entries come from
// user clicks and shadow static ones. Nothing here is written to disk.
type Registry struct {
	mu     sync.RWMutex
	static map[string]domain.Position
	manual map[string]domain.Position
}

func NewRegistry(static map[string]domain.Position) *Registry {
	r := &Registry{manual: make(map[string]domain.Position)}
	r.ReplaceStatic(static)
	return r
}

// SimulatedPositions stands in for drawing detection until a positions file
// is provided.
func SimulatedPositions() map[string]domain.Position {
	return map[string]domain.Position{
		"P-101": {X: 150, Y: 200},
		"P-102": {X: 300, Y: 250},
		"P-103": {X: 450, Y: 180},
	}
}

func (r *Registry) Get(id string) (domain.Position, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if pos, ok := r.manual[id]; ok {
		return pos, true
	}
	pos, ok := r.static[id]
	return pos, ok
}

func (r *Registry) Set(id string, pos domain.Position) {
	r.mu.Lock()
	r.manual[id] = pos
	r.mu.Unlock()
}

func (r *Registry) ReplaceStatic(static map[string]domain.Position) {
	next := make(map[string]domain.Position, len(static))
	for id, pos := range static {
		next[id] = pos
	}
	r.mu.Lock()
	r.static = next
	r.mu.Unlock()
}

// Snapshot returns the merged view, manual entries winning.
func (r *Registry) Snapshot() map[string]domain.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Position, len(r.static)+len(r.manual))
	for id, pos := range r.static {
		out[id] = pos
	}
	for id, pos := range r.manual {
		out[id] = pos
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.Snapshot())
}

type positionsFile struct {
	Positions map[string]domain.Position `yaml:"positions"`
}

// LoadPositionsFile reads a YAML file of the form
//
//	positions:
//	  P-101: {x: 150, y: 200}
func LoadPositionsFile(path string) (map[string]domain.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	var f positionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse positions yaml: %w", err)
	}
	out := make(map[string]domain.Position, len(f.Positions))
	for id, pos := range f.Positions {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out[id] = pos
	}
	return out, nil
}
