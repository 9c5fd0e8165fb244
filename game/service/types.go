package service

import (
	"time"

	"github.com/wricardo/maze-runner/game/engine"
)

// CreateOptions describes a new maze session. A nil Seed picks one at random.
type CreateOptions struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a maze session
type SessionInfo struct {
	ID             string            `json:"id"`
	MapName        string            `json:"map_name,omitempty"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Seed           uint64            `json:"seed"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_boundary|invalid_direction|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`
	Steps    []StepInfo      `json:"steps,omitempty"`

	AttemptedTo   *AttemptInfo `json:"attempted_to,omitempty"`
	Victory       bool         `json:"victory"`
	Message       string       `json:"message,omitempty"`
	PossibleMoves []string     `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	Cell     engine.Cell     `json:"cell"`
	Success  bool            `json:"success"`
	NewVisit bool            `json:"new_visit,omitempty"`
	Victory  bool            `json:"victory,omitempty"`
}

// AttemptInfo details the first failed target cell attempted
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	CellType string `json:"cell_type"` // wall|path|solution|boundary
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string          `json:"type"` // "move", "visit", "victory", "reset", "solved", "generated"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// SolveResult reports the outcome of solving a session's maze
type SolveResult struct {
	Solved    bool              `json:"solved"`
	Length    int               `json:"length"`
	Path      []engine.Position `json:"path"`
	GameState *engine.GameState `json:"game_state"`
}

// CellInfo describes one grid cell
type CellInfo struct {
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Cell     engine.Cell `json:"cell"`
	Walkable bool        `json:"walkable"`
	Visited  bool        `json:"visited"`
	Player   bool        `json:"player"`
	Entrance bool        `json:"entrance"`
	Exit     bool        `json:"exit"`
}

// HintResult suggests the next step toward the exit
type HintResult struct {
	Direction      string          `json:"direction,omitempty"`
	From           engine.Position `json:"from"`
	StepsToExit    int             `json:"steps_to_exit"`
	DistanceToExit int             `json:"distance_to_exit"` // Manhattan
	Message        string          `json:"message"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// MapInfo provides information about a saved maze
type MapInfo struct {
	Name       string    `json:"name"`
	Filename   string    `json:"filename"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Solved     bool      `json:"solved"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}
