package engine

import (
	"fmt"
	"math/rand/v2"
)

// CreateGrid allocates an all-wall grid; see NewGrid.
func CreateGrid(width, height int) (*Grid, error) {
	return NewGrid(width, height)
}

// Generate carves a maze into g using rng.
func Generate(g *Grid, rng *rand.Rand) {
	NewGenerator(rng).Generate(g)
}

// SolveGrid marks the shortest route on g and reports whether one exists.
func SolveGrid(g *Grid) bool {
	_, err := Solve(g)
	return err == nil
}

// CellAt returns the cell at (x, y) or ErrCellOutOfBounds.
func CellAt(g *Grid, x, y int) (Cell, error) {
	c, ok := g.Get(x, y)
	if !ok {
		return Wall, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrCellOutOfBounds, x, y, g.Width(), g.Height())
	}
	return c, nil
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// RouteToExit returns the shortest walk from pos to the exit, both ends
// included. It fails with ErrUnreachable when pos is closed or cut off.
func RouteToExit(g *Grid, pos Position) ([]Position, error) {
	exit := g.Exit()
	if c, ok := g.Get(pos.X, pos.Y); !ok || !c.Walkable() {
		return nil, fmt.Errorf("%w: %v is not open", ErrUnreachable, pos)
	}
	if c, ok := g.Get(exit.X, exit.Y); !ok || !c.Walkable() {
		return nil, fmt.Errorf("%w: exit %v is closed", ErrUnreachable, exit)
	}

	// Search backwards from the exit so each cell records its successor.
	next := map[Position]Position{exit: exit}
	queue := []Position{exit}
	for head := 0; head < len(queue); head++ {
		if _, found := next[pos]; found {
			break
		}
		cur := queue[head]
		for _, step := range searchSteps {
			nb := Position{X: cur.X + step.X, Y: cur.Y + step.Y}
			if _, seen := next[nb]; seen {
				continue
			}
			if c, ok := g.Get(nb.X, nb.Y); !ok || !c.Walkable() {
				continue
			}
			next[nb] = cur
			queue = append(queue, nb)
		}
	}
	if _, found := next[pos]; !found {
		return nil, ErrUnreachable
	}

	route := []Position{pos}
	for cur := pos; cur != exit; {
		cur = next[cur]
		route = append(route, cur)
	}
	return route, nil
}

// NextStepToExit returns the direction of the first step on the shortest
// route from pos to the exit, or "" when pos is the exit or no route exists.
func NextStepToExit(g *Grid, pos Position) string {
	route, err := RouteToExit(g, pos)
	if err != nil || len(route) < 2 {
		return ""
	}
	return directionBetween(route[0], route[1])
}

func directionBetween(from, to Position) string {
	for _, dir := range Directions {
		if p, _ := from.Offset(dir); p == to {
			return dir
		}
	}
	return ""
}
