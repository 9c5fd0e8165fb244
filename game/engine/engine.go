package engine

import (
	"fmt"
)

// Engine provides the main interface for maze operations
type Engine interface {
	// Maze state management
	Grid() *Grid
	Seed() uint64
	GetState() *GameState
	Reset() *GameState
	IsVictory() bool
	GetPlayerPosition() Position
	IsVisited(pos Position) bool

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool

	// Maze operations
	Regenerate(seed uint64)
	Solve() ([]Position, error)
	ClearSolution() int
	IsSolved() bool
	CellAt(x, y int) (Cell, error)

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Persistence
	PlayerState() PlayerState
	RestorePlayer(state PlayerState) error
}

// MazeEngine implements the Engine interface
type MazeEngine struct {
	grid           *Grid
	seed           uint64
	solved         bool
	solutionLength int
	player         *player
}

// NewEngine creates a maze of the requested size carved from seed.
// Both dimensions must lie within [MinDimension, MaxDimension]; even
// values are reduced to the next odd number.
func NewEngine(width, height int, seed uint64) (*MazeEngine, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	NewSeededGenerator(seed).Generate(grid)

	return &MazeEngine{
		grid:   grid,
		seed:   seed,
		player: newPlayer(grid.Entrance()),
	}, nil
}

// NewEngineFromGrid wraps an existing grid, typically one loaded from disk.
// A grid that already carries a solution overlay is reported as solved.
func NewEngineFromGrid(grid *Grid, seed uint64) (*MazeEngine, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid cannot be nil")
	}
	e := &MazeEngine{
		grid:   grid,
		seed:   seed,
		player: newPlayer(grid.Entrance()),
	}
	if grid.Count(Solution) > 0 {
		if route, err := ShortestPath(grid); err == nil {
			e.solved = true
			e.solutionLength = len(route)
		}
	}
	return e, nil
}

// ValidateDimensions checks requested maze dimensions before any
// odd-number coercion happens.
func ValidateDimensions(width, height int) error {
	if width < MinDimension || width > MaxDimension {
		return fmt.Errorf("%w: width must be between %d and %d, got %d",
			ErrInvalidDimensions, MinDimension, MaxDimension, width)
	}
	if height < MinDimension || height > MaxDimension {
		return fmt.Errorf("%w: height must be between %d and %d, got %d",
			ErrInvalidDimensions, MinDimension, MaxDimension, height)
	}
	return nil
}

// Grid returns the live grid. Callers must not retain it across mutations.
func (e *MazeEngine) Grid() *Grid {
	return e.grid
}

// Seed returns the seed the current maze was carved from.
func (e *MazeEngine) Seed() uint64 {
	return e.seed
}

// GetState returns a snapshot of the maze and player
func (e *MazeEngine) GetState() *GameState {
	history := make([]MoveHistoryEntry, len(e.player.moveHistory))
	copy(history, e.player.moveHistory)

	possible := e.GetPossibleMoves()
	if possible == nil {
		possible = []string{}
	}

	return &GameState{
		Width:             e.grid.Width(),
		Height:            e.grid.Height(),
		Rows:              e.grid.Rows(),
		Entrance:          e.grid.Entrance(),
		Exit:              e.grid.Exit(),
		PlayerPos:         e.player.pos,
		VisitedCount:      len(e.player.visited),
		Seed:              e.seed,
		Solved:            e.solved,
		SolutionLength:    e.solutionLength,
		Victory:           e.player.victory,
		Message:           e.player.message,
		MoveHistory:       history,
		TotalMoves:        e.player.totalMoves,
		CurrentMovesCount: e.player.currentMovesCount,
		PossibleMoves:     possible,
	}
}

// Reset puts the player back on the entrance. The maze itself is kept and
// the cumulative move history survives.
func (e *MazeEngine) Reset() *GameState {
	prev := e.player
	e.player = newPlayer(e.grid.Entrance())
	e.player.moveHistory = prev.moveHistory
	e.player.totalMoves = prev.totalMoves
	e.player.message = "Back at the entrance."
	return e.GetState()
}

// IsVictory returns whether the player has reached the exit
func (e *MazeEngine) IsVictory() bool {
	return e.player.victory
}

// GetPlayerPosition returns the current player position
func (e *MazeEngine) GetPlayerPosition() Position {
	return e.player.pos
}

// IsVisited reports whether the player has stood on pos since the last reset.
func (e *MazeEngine) IsVisited(pos Position) bool {
	return e.player.visited[pos]
}

// Move attempts to move the player in the specified direction
func (e *MazeEngine) Move(direction string) bool {
	from := e.player.pos
	success := e.movePlayer(direction)
	e.player.addMoveToHistory(direction, from, e.player.pos, success)
	return success
}

// CanMove checks if the player can move in the specified direction
func (e *MazeEngine) CanMove(direction string) bool {
	if e.player.victory {
		return false
	}
	target, err := e.player.pos.Offset(direction)
	if err != nil {
		return false
	}
	return e.CanMoveTo(target.X, target.Y)
}

// GetPossibleMoves returns all valid directions the player can move
func (e *MazeEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// BulkMove executes multiple moves in sequence, returning success status for each.
// It stops early once the exit is reached.
func (e *MazeEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))
	for _, direction := range moves {
		if e.IsVictory() {
			break
		}
		results = append(results, e.Move(direction))
	}
	return results
}

// Regenerate carves a new maze of the same size and starts the player over.
func (e *MazeEngine) Regenerate(seed uint64) {
	NewSeededGenerator(seed).Generate(e.grid)
	e.seed = seed
	e.solved = false
	e.solutionLength = 0
	e.player = newPlayer(e.grid.Entrance())
	e.player.message = "A new maze has been generated."
}

// Solve overlays the shortest route on the grid.
func (e *MazeEngine) Solve() ([]Position, error) {
	route, err := Solve(e.grid)
	if err != nil {
		return nil, err
	}
	e.solved = true
	e.solutionLength = len(route)
	return route, nil
}

// ClearSolution removes the overlay and returns how many cells it covered.
func (e *MazeEngine) ClearSolution() int {
	e.solved = false
	e.solutionLength = 0
	return e.grid.ClearSolution()
}

// IsSolved reports whether a solution overlay is present.
func (e *MazeEngine) IsSolved() bool {
	return e.solved
}

// CellAt returns the cell at (x, y).
func (e *MazeEngine) CellAt(x, y int) (Cell, error) {
	return CellAt(e.grid, x, y)
}

// GetMoveHistory returns the complete move history
func (e *MazeEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.player.moveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *MazeEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.player.moveHistory) == 0 {
		return nil
	}
	return &e.player.moveHistory[len(e.player.moveHistory)-1]
}

// PlayerState exports the player for persistence.
func (e *MazeEngine) PlayerState() PlayerState {
	visited := make([]Position, 0, len(e.player.visited))
	for y := 0; y < e.grid.Height(); y++ {
		for x := 0; x < e.grid.Width(); x++ {
			if p := (Position{X: x, Y: y}); e.player.visited[p] {
				visited = append(visited, p)
			}
		}
	}
	history := make([]MoveHistoryEntry, len(e.player.moveHistory))
	copy(history, e.player.moveHistory)

	return PlayerState{
		Position:          e.player.pos,
		Visited:           visited,
		MoveHistory:       history,
		TotalMoves:        e.player.totalMoves,
		CurrentMovesCount: e.player.currentMovesCount,
		Victory:           e.player.victory,
		Message:           e.player.message,
	}
}

// RestorePlayer replaces the player with a previously exported state (used for persistence loading)
func (e *MazeEngine) RestorePlayer(state PlayerState) error {
	if !e.CanMoveTo(state.Position.X, state.Position.Y) {
		return fmt.Errorf("player position (%d,%d) is not an open cell", state.Position.X, state.Position.Y)
	}
	p := newPlayer(state.Position)
	for _, pos := range state.Visited {
		if e.grid.InBounds(pos.X, pos.Y) {
			p.visited[pos] = true
		}
	}
	if state.MoveHistory != nil {
		p.moveHistory = state.MoveHistory
	}
	p.totalMoves = state.TotalMoves
	p.currentMovesCount = state.CurrentMovesCount
	p.victory = state.Victory
	p.message = state.Message
	e.player = p
	return nil
}
