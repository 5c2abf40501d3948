// Package grid maps named floor cells to integer coordinates and measures
// the straight-line distance between them.
package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var ErrUnknownCell = errors.New("grid: unknown cell")

type Point struct {
	X int
	Y int
}

type Grid struct {
	cells map[string]Point
}

// Default is the 3x3 factory floor: the digit moves along x, the letter along y.
func Default() *Grid {
	return New(map[string]Point{
		"A1": {0, 0}, "A2": {1, 0}, "A3": {2, 0},
		"B1": {0, 1}, "B2": {1, 1}, "B3": {2, 1},
		"C1": {0, 2}, "C2": {1, 2}, "C3": {2, 2},
	})
}

func New(cells map[string]Point) *Grid {
	g := &Grid{cells: make(map[string]Point, len(cells))}
	for name, p := range cells {
		g.cells[name] = p
	}
	return g
}

func (g *Grid) Lookup(cell string) (Point, bool) {
	p, ok := g.cells[cell]
	return p, ok
}

func (g *Grid) Contains(cell string) bool {
	_, ok := g.cells[cell]
	return ok
}

// Cells returns the cell names in lexical order.
func (g *Grid) Cells() []string {
	names := make([]string, 0, len(g.cells))
	for name := range g.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Distance is the Euclidean distance between two cells rounded to two decimals.
func (g *Grid) Distance(a, b string) (decimal.Decimal, error) {
	pa, ok := g.cells[a]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCell, a)
	}
	pb, ok := g.cells[b]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCell, b)
	}
	dx := float64(pb.X - pa.X)
	dy := float64(pb.Y - pa.Y)
	return decimal.NewFromFloat(math.Sqrt(dx*dx + dy*dy)).Round(2), nil
}
