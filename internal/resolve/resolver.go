package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"pilemap/internal/config"
	"pilemap/internal/domain"
)

// Target is where a record goes: an explicit pixel position from the
// registry, or a grid cell still to be laid out.
type Target struct {
	Cell     domain.Cell
	Pixel    domain.Position
	Explicit bool
}

type Resolver interface {
	Resolve(id string) (Target, bool)
}

func New(mode string, columns int, registry *Registry) (Resolver, error) {
	switch mode {
	case config.ResolverLookup:
		return LookupResolver{Registry: registry}, nil
	case config.ResolverGrid:
		return GridResolver{Columns: columns, Registry: registry}, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", mode)
	}
}

// LookupResolver only places identifiers present in the registry; everything
// else is left off the drawing.
type LookupResolver struct {
	Registry *Registry
}

func (l LookupResolver) Resolve(id string) (Target, bool) {
	pos, ok := l.Registry.Get(id)
	if !ok {
		return Target{}, false
	}
	return Target{Pixel: pos, Explicit: true}, true
}

// GridResolver derives a cell from the identifier's shape. Registry entries
// still win, so manual mappings work in grid mode too. It never fails.
type GridResolver struct {
	Columns  int
	Registry *Registry
}

func (g GridResolver) Resolve(id string) (Target, bool) {
	if g.Registry != nil {
		if pos, ok := g.Registry.Get(id); ok {
			return Target{Pixel: pos, Explicit: true}, true
		}
	}
	return Target{Cell: ParseCell(id, g.Columns)}, true
}

var dashedNumber = regexp.MustCompile(`^P-(\d+)$`)

// ParseCell maps an identifier to a 1-based row/column:
//
//	P-<d><rest>  row d, col rest
//	A-B          row A (leading P dropped), col B
//	otherwise    N = digits of id; row N/columns+1, col N%columns+1
//
// Components that do not parse, or parse to zero, become 1. An empty id is
// {1,1}, so several such records share a cell.
func ParseCell(id string, columns int) domain.Cell {
	if columns < 1 {
		columns = 1
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Cell{Row: 1, Col: 1}
	}

	if m := dashedNumber.FindStringSubmatch(id); m != nil {
		digits := m[1]
		return domain.Cell{
			Row: orOne(leadingInt(digits[:1])),
			Col: orOne(leadingInt(digits[1:])),
		}
	}

	if strings.Contains(id, "-") {
		parts := strings.Split(id, "-")
		return domain.Cell{
			Row: orOne(leadingInt(strings.TrimPrefix(parts[0], "P"))),
			Col: orOne(leadingInt(parts[1])),
		}
	}

	n, _ := leadingInt(digitsOnly(id))
	return domain.Cell{Row: n/columns + 1, Col: n%columns + 1}
}

// leadingInt parses the run of digits at the start of s, after spaces.
// Parsing stops once the value passes 2^31/10, so long digit runs are
// truncated (to at most 10 digits) rather than overflowing.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, seen := 0, false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		seen = true
		if n > (1<<31)/10 {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n, seen
}

func orOne(n int, ok bool) int {
	if !ok || n < 1 {
		return 1
	}
	return n
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
