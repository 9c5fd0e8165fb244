package engine

import (
	"fmt"
	"strings"
)

// Grid is a rectangular maze stored row-major. Both dimensions are always
// odd so that chambers sit on even coordinates and walls between them on
// the odd ones.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid returns a grid with every cell set to Wall. Even dimensions are
// reduced by one. Areas above MaxGridCells fail with ErrGridTooLarge.
func NewGrid(width, height int) (*Grid, error) {
	w, h := oddDimension(width), oddDimension(height)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if w > MaxGridCells/h {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrGridTooLarge, width, height, MaxGridCells)
	}
	return &Grid{width: w, height: h, cells: make([]Cell, w*h)}, nil
}

// NewGridFromCells rebuilds a grid from a row-major cell slice. Dimensions
// must already be odd and match the slice length; cells is copied.
func NewGridFromCells(width, height int, cells []Cell) (*Grid, error) {
	if width < 1 || height < 1 || width%2 == 0 || height%2 == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxGridCells/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrGridTooLarge, width, height, MaxGridCells)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: %dx%d needs %d cells, got %d",
			ErrInvalidDimensions, width, height, width*height, len(cells))
	}
	for i, c := range cells {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown cell %d at index %d", uint8(c), i)
		}
	}
	g := &Grid{width: width, height: height, cells: make([]Cell, len(cells))}
	copy(g.cells, cells)
	return g, nil
}

func oddDimension(n int) int {
	if n%2 == 0 {
		return n - 1
	}
	return n
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Get returns the cell at (x, y). The second result is false when the
// coordinates fall outside the grid.
func (g *Grid) Get(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Wall, false
	}
	return g.cells[y*g.width+x], true
}

// Set overwrites the cell at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, c Cell) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.width+x] = c
}

// Entrance is the opening in the top row.
func (g *Grid) Entrance() Position {
	return Position{X: 1, Y: 0}
}

// Exit is the opening in the bottom row.
func (g *Grid) Exit() Position {
	return Position{X: g.width - 2, Y: g.height - 1}
}

// Cells returns a copy of the row-major cell slice.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{width: g.width, height: g.height, cells: g.Cells()}
}

// Equal reports whether both grids have the same dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Fill sets every cell to c.
func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// ClearSolution turns every Solution cell back into Path and returns how
// many cells changed.
func (g *Grid) ClearSolution() int {
	n := 0
	for i, c := range g.cells {
		if c == Solution {
			g.cells[i] = Path
			n++
		}
	}
	return n
}

// Count returns the number of cells equal to c.
func (g *Grid) Count(c Cell) int {
	n := 0
	for _, cell := range g.cells {
		if cell == c {
			n++
		}
	}
	return n
}

// Rows renders the grid as one string per row using Cell.Char.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.cells[y*g.width+x].Char()
		}
		rows[y] = string(buf)
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}
