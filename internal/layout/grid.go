package layout

import (
	"math"

	"pilemap/internal/domain"
)

// Grid places 1-based cells inside a container with a fixed column count and
// fractional margins on each side. It holds no state between renders.
type Grid struct {
	Columns int
	MarginX float64
	MarginY float64
}

// Rows is ceil(total/Columns), never less than 1.
func (g Grid) Rows(total int) int {
	rows := int(math.Ceil(float64(total) / float64(g.columns())))
	if rows < 1 {
		return 1
	}
	return rows
}

// Place returns the pixel centre of cell for a container of the given size
// holding total records.
func (g Grid) Place(width, height float64, total int, cell domain.Cell) domain.Position {
	cellW := width * (1 - 2*g.MarginX) / float64(g.columns())
	cellH := height * (1 - 2*g.MarginY) / float64(g.Rows(total))
	return domain.Position{
		X: width*g.MarginX + (float64(cell.Col)-0.5)*cellW,
		Y: height*g.MarginY + (float64(cell.Row)-0.5)*cellH,
	}
}

func (g Grid) columns() int {
	if g.Columns < 1 {
		return 1
	}
	return g.Columns
}
