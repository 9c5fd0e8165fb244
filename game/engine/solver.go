package engine

import "fmt"

// searchSteps is the neighbour order used by the breadth-first search.
var searchSteps = [4]Position{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: 0}}

// ShortestPath returns the cells from the entrance to the exit inclusive
// without modifying g. Solution cells are walkable, so a grid that has
// already been solved yields the same route.
func ShortestPath(g *Grid) ([]Position, error) {
	entrance, exit := g.Entrance(), g.Exit()
	if c, ok := g.Get(entrance.X, entrance.Y); !ok || !c.Walkable() {
		return nil, fmt.Errorf("%w: entrance %v is closed", ErrUnreachable, entrance)
	}
	if c, ok := g.Get(exit.X, exit.Y); !ok || !c.Walkable() {
		return nil, fmt.Errorf("%w: exit %v is closed", ErrUnreachable, exit)
	}

	index := func(p Position) int { return p.Y*g.width + p.X }

	visited := make([]bool, len(g.cells))
	prev := make([]int, len(g.cells))
	queue := []Position{entrance}
	visited[index(entrance)] = true
	prev[index(entrance)] = -1

	found := false
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur == exit {
			found = true
			break
		}
		for _, step := range searchSteps {
			next := Position{X: cur.X + step.X, Y: cur.Y + step.Y}
			c, ok := g.Get(next.X, next.Y)
			if !ok || !c.Walkable() || visited[index(next)] {
				continue
			}
			visited[index(next)] = true
			prev[index(next)] = index(cur)
			queue = append(queue, next)
		}
	}
	if !found {
		return nil, ErrUnreachable
	}

	var route []Position
	for i := index(exit); i >= 0; i = prev[i] {
		route = append(route, Position{X: i % g.width, Y: i / g.width})
	}
	for l, r := 0, len(route)-1; l < r; l, r = l+1, r-1 {
		route[l], route[r] = route[r], route[l]
	}
	return route, nil
}

// Solve marks the shortest entrance-to-exit route on g. Any earlier
// overlay is cleared first. Entrance and exit stay Path; the cells in
// between become Solution. When no route exists g is left untouched and
// ErrUnreachable is returned.
func Solve(g *Grid) ([]Position, error) {
	route, err := ShortestPath(g)
	if err != nil {
		return nil, err
	}
	g.ClearSolution()
	for i := 1; i < len(route)-1; i++ {
		g.Set(route[i].X, route[i].Y, Solution)
	}
	return route, nil
}
