package engine

import (
	"errors"
	"fmt"
	"math"
)

// Cell is the state of a single grid square. The numeric values are the
// tags written by the codec and must not be reordered.
type Cell uint8

const (
	Wall     Cell = 0
	Path     Cell = 1
	Solution Cell = 2
)

const (
	// Validation constants
	MinDimension        = 5
	MaxDimension        = 2001
	MaxGridCells        = math.MaxInt32
	MaxBulkMoves        = 200
	WebSocketBufferSize = 256
)

// Direction names accepted by the movement API.
const (
	Up    = "up"
	Down  = "down"
	Left  = "left"
	Right = "right"
)

// Directions lists every movement direction in the order reported by GetPossibleMoves.
var Directions = []string{Up, Down, Left, Right}

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrGridTooLarge      = errors.New("grid too large")
	ErrUnreachable       = errors.New("exit unreachable from entrance")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrCellOutOfBounds   = errors.New("cell out of bounds")
)

// String returns the lower-case name of the cell.
func (c Cell) String() string {
	switch c {
	case Wall:
		return "wall"
	case Path:
		return "path"
	case Solution:
		return "solution"
	default:
		return fmt.Sprintf("cell(%d)", uint8(c))
	}
}

// Char returns the ASCII glyph used when rendering a grid.
func (c Cell) Char() byte {
	switch c {
	case Path:
		return ' '
	case Solution:
		return '.'
	default:
		return '#'
	}
}

// Walkable reports whether a player or the solver may enter the cell.
func (c Cell) Walkable() bool {
	return c == Path || c == Solution
}

// Valid reports whether c is one of the known cell states.
func (c Cell) Valid() bool {
	return c <= Solution
}

// MarshalText encodes the cell as its name so JSON payloads stay readable.
func (c Cell) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown cell %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a cell name produced by MarshalText.
func (c *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "wall":
		*c = Wall
	case "path":
		*c = Path
	case "solution":
		*c = Solution
	default:
		return fmt.Errorf("unknown cell %q", text)
	}
	return nil
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offset returns the position one step away in direction.
func (p Position) Offset(direction string) (Position, error) {
	switch direction {
	case Up:
		return Position{X: p.X, Y: p.Y - 1}, nil
	case Down:
		return Position{X: p.X, Y: p.Y + 1}, nil
	case Left:
		return Position{X: p.X - 1, Y: p.Y}, nil
	case Right:
		return Position{X: p.X + 1, Y: p.Y}, nil
	}
	return p, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
}

// GameState is a JSON snapshot of a maze session.
type GameState struct {
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Rows           []string           `json:"rows"`
	Entrance       Position           `json:"entrance"`
	Exit           Position           `json:"exit"`
	PlayerPos      Position           `json:"player_pos"`
	VisitedCount   int                `json:"visited_count"`
	Seed           uint64             `json:"seed"`
	Solved         bool               `json:"solved"`
	SolutionLength int                `json:"solution_length,omitempty"`
	Victory        bool               `json:"victory"`
	Message        string             `json:"message"`
	MoveHistory    []MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                `json:"total_moves"`

	// CurrentMovesCount only counts moves since the last reset; MoveHistory
	// stays cumulative.
	CurrentMovesCount int      `json:"current_moves_count"`
	PossibleMoves     []string `json:"possible_moves"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}

// PlayerState is the serialisable part of a MazeEngine that is not the grid.
type PlayerState struct {
	Position          Position           `json:"position"`
	Visited           []Position         `json:"visited"`
	MoveHistory       []MoveHistoryEntry `json:"move_history"`
	TotalMoves        int                `json:"total_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
	Victory           bool               `json:"victory"`
	Message           string             `json:"message"`
}
