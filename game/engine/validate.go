package engine

import "fmt"

// ValidationReport summarises the structural health of a grid.
// If Valid is true, Errors is empty; Warnings are informational either way.
type ValidationReport struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Valid          bool     `json:"valid"`
	OpenCells      int      `json:"open_cells"`
	ReachableCells int      `json:"reachable_cells"`
	SolutionCells  int      `json:"solution_cells"`
	Perfect        bool     `json:"perfect"`
	ExitReachable  bool     `json:"exit_reachable"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
}

// Validate checks that the grid is a usable maze: odd dimensions, open
// entrance and exit, every open cell reachable from the entrance. Loops are
// reported through Perfect but do not make the grid invalid.
func Validate(g *Grid) *ValidationReport {
	report := &ValidationReport{
		Width:    g.width,
		Height:   g.height,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}
	fail := func(format string, args ...interface{}) {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf(format, args...))
	}

	if g.width%2 == 0 || g.height%2 == 0 {
		fail("dimensions %dx%d must both be odd", g.width, g.height)
	}
	if g.width < MinDimension || g.height < MinDimension {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("dimensions %dx%d are below the playable minimum of %d", g.width, g.height, MinDimension))
	}

	entrance, exit := g.Entrance(), g.Exit()
	entranceOpen := isOpen(g, entrance)
	if !entranceOpen {
		fail("entrance (%d,%d) is not open", entrance.X, entrance.Y)
	}
	if !isOpen(g, exit) {
		fail("exit (%d,%d) is not open", exit.X, exit.Y)
	}

	edges := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if !isOpen(g, Position{X: x, Y: y}) {
				continue
			}
			report.OpenCells++
			if isOpen(g, Position{X: x + 1, Y: y}) {
				edges++
			}
			if isOpen(g, Position{X: x, Y: y + 1}) {
				edges++
			}
		}
	}
	report.SolutionCells = g.Count(Solution)

	if entranceOpen {
		seen := floodFill(g, entrance)
		report.ReachableCells = len(seen)
		report.ExitReachable = seen[exit]
	}
	if !report.ExitReachable {
		fail("exit is not reachable from the entrance")
	}
	if report.ReachableCells != report.OpenCells {
		fail("%d of %d open cells are unreachable from the entrance",
			report.OpenCells-report.ReachableCells, report.OpenCells)
	}

	report.Perfect = report.OpenCells > 0 &&
		report.ReachableCells == report.OpenCells &&
		edges == report.OpenCells-1
	if !report.Perfect && report.Valid {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("maze contains %d loop(s)", edges-(report.OpenCells-1)))
	}

	return report
}

func isOpen(g *Grid, p Position) bool {
	c, ok := g.Get(p.X, p.Y)
	return ok && c.Walkable()
}

func floodFill(g *Grid, start Position) map[Position]bool {
	seen := map[Position]bool{start: true}
	queue := []Position{start}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, step := range searchSteps {
			next := Position{X: cur.X + step.X, Y: cur.Y + step.Y}
			if !seen[next] && isOpen(g, next) {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
